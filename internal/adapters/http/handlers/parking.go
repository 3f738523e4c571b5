package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/garage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/garage-service/internal/app"
	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/config"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

// plateSortKey tags car list cursors.
const plateSortKey = "licensePlate"

// GarageAdminRole is required to register garages when auth is enabled.
const GarageAdminRole = "garage-admin"

// ParkingHandler handles car and garage endpoints.
type ParkingHandler struct {
	service *app.ParkingService
	flags   ports.FeatureFlags
}

// NewParkingHandler creates a new parking handler. flags may be nil.
func NewParkingHandler(service *app.ParkingService, flags ports.FeatureFlags) *ParkingHandler {
	return &ParkingHandler{
		service: service,
		flags:   flags,
	}
}

// bind decodes and validates the JSON body, writing the error response on failure.
func bind(c *gin.Context, v any) bool {
	err := dto.BindAndValidate(c, v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError

	switch {
	case dto.IsValidationError(err):
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
	case errors.As(err, &tooLarge):
		dto.RespondWithCode(c, dto.ErrorCodePayloadTooLarge, "request body too large")
	default:
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "request body must be valid JSON")
	}

	return false
}

// RegisterCar handles POST /api/v1/cars.
func (h *ParkingHandler) RegisterCar(c *gin.Context) {
	var req dto.RegisterCarRequest
	if !bind(c, &req) {
		return
	}

	car, err := h.service.RegisterCar(c.Request.Context(), req.LicensePlate)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/cars/"+car.LicensePlate())
	c.JSON(http.StatusCreated, dto.NewCarResponse(car))
}

// ListCars handles GET /api/v1/cars with cursor pagination on the license plate.
func (h *ParkingHandler) ListCars(c *gin.Context) {
	var page dto.PageQuery
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	after, err := page.After(plateSortKey)
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	limit := page.Size()

	cars, err := h.service.ListCars(c.Request.Context(), after, limit+1)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	items := make([]dto.CarResponse, 0, len(cars))
	for _, car := range cars {
		items = append(items, dto.NewCarResponse(car))
	}

	c.JSON(http.StatusOK, dto.NewPage(items, limit, plateSortKey, func(car dto.CarResponse) string {
		return car.LicensePlate
	}))
}

// GetCar handles GET /api/v1/cars/:plate.
func (h *ParkingHandler) GetCar(c *gin.Context) {
	car, err := h.service.GetCar(c.Request.Context(), c.Param("plate"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCarResponse(car))
}

// EnterGarage handles POST /api/v1/cars/:plate/enter.
// Responds 409 INVALID_STATE when the car is already parked.
func (h *ParkingHandler) EnterGarage(c *gin.Context) {
	var req dto.EnterGarageRequest
	if !bind(c, &req) {
		return
	}

	record, err := h.service.EnterGarage(c.Request.Context(), c.Param("plate"), req.GarageID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewParkingRecordResponse(record))
}

// LeaveGarage handles POST /api/v1/cars/:plate/leave.
// Responds 409 INVALID_STATE when the car is not parked.
func (h *ParkingHandler) LeaveGarage(c *gin.Context) {
	record, err := h.service.LeaveGarage(c.Request.Context(), c.Param("plate"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewParkingRecordResponse(record))
}

// VisitedGarages handles GET /api/v1/cars/:plate/garages.
func (h *ParkingHandler) VisitedGarages(c *gin.Context) {
	visited, err := h.service.VisitedGarages(c.Request.Context(), c.Param("plate"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[dto.GarageResponse]{
		Items: dto.NewGarageResponses(visited.Garages()),
	})
}

// History handles GET /api/v1/cars/:plate/history.
// ?format=text returns the plain-text listing, one garage or record per line.
func (h *ParkingHandler) History(c *gin.Context) {
	var query dto.HistoryQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	if query.Format == "text" {
		h.textHistory(c)
		return
	}

	plate := c.Param("plate")

	history, err := h.service.ParkingHistory(c.Request.Context(), plate)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCarHistoryResponse(plate, history))
}

func (h *ParkingHandler) textHistory(c *gin.Context) {
	ctx := c.Request.Context()

	if h.flags != nil && !h.flags.IsEnabled(ctx, ports.FlagHistoryTextFormat, true) {
		dto.HandleError(c, domain.NewForbiddenError("text history", "format is disabled"))
		return
	}

	// Buffered so a failure leaves no partial body.
	var buf bytes.Buffer
	if err := h.service.PrintParkingHistory(ctx, c.Param("plate"), &buf); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// RegisterGarage handles POST /api/v1/garages.
func (h *ParkingHandler) RegisterGarage(c *gin.Context) {
	var req dto.RegisterGarageRequest
	if !bind(c, &req) {
		return
	}

	garage, err := h.service.RegisterGarage(c.Request.Context(), req.Name, req.Address)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/garages/"+garage.ID)
	c.JSON(http.StatusCreated, dto.NewGarageResponse(garage))
}

// ListGarages handles GET /api/v1/garages.
func (h *ParkingHandler) ListGarages(c *gin.Context) {
	garages, err := h.service.ListGarages(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[dto.GarageResponse]{Items: dto.NewGarageResponses(garages)})
}

// GetGarage handles GET /api/v1/garages/:id.
func (h *ParkingHandler) GetGarage(c *gin.Context) {
	garage, err := h.service.GetGarage(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGarageResponse(garage))
}

// RegisterParkingRoutes registers car and garage routes on rg. When auth is
// enabled, writes require an authenticated subject and registering a garage
// also requires GarageAdminRole.
func (h *ParkingHandler) RegisterParkingRoutes(rg *gin.RouterGroup, authCfg *config.AuthConfig) {
	var writeAuth, adminAuth []gin.HandlerFunc
	if authCfg != nil && authCfg.Enabled {
		writeAuth = []gin.HandlerFunc{middleware.RequireAuth(authCfg)}
		adminAuth = []gin.HandlerFunc{middleware.RequireAuth(authCfg), middleware.RequireRole(authCfg, GarageAdminRole)}
	}

	cars := rg.Group("/cars")
	cars.GET("", h.ListCars)
	cars.POST("", chain(writeAuth, h.RegisterCar)...)
	cars.GET("/:plate", h.GetCar)
	cars.POST("/:plate/enter", chain(writeAuth, h.EnterGarage)...)
	cars.POST("/:plate/leave", chain(writeAuth, h.LeaveGarage)...)
	cars.GET("/:plate/garages", h.VisitedGarages)
	cars.GET("/:plate/history", h.History)

	garages := rg.Group("/garages")
	garages.GET("", h.ListGarages)
	garages.POST("", chain(adminAuth, h.RegisterGarage)...)
	garages.GET("/:id", h.GetGarage)
}

func chain(mw []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)

	return append(append(out, mw...), handler)
}
