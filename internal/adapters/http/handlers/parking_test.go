package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/garage-service/internal/adapters/flags"
	"github.com/jsamuelsen/garage-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/garage-service/internal/adapters/memory"
	"github.com/jsamuelsen/garage-service/internal/app"
	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/config"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

type parkingFixture struct {
	engine *gin.Engine
	flags  *flags.Static
}

func newParkingFixture(t *testing.T, authCfg *config.AuthConfig) *parkingFixture {
	t.Helper()

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ids := 0

	service := app.NewParkingService(app.ParkingServiceDeps{
		Cars: memory.NewCarRepository(),
		Garages: memory.NewGarageRepository(
			domain.Garage{ID: "g-capitole", Name: "Capitole", Address: "1 place du Capitole"},
			domain.Garage{ID: "g-matabiau", Name: "Matabiau"},
		),
	}, &app.ServiceConfig{
		Clock: func() time.Time {
			now = now.Add(time.Minute)
			return now
		},
		IDGenerator: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})

	ff := flags.NewStatic(map[string]any{ports.FlagHistoryTextFormat: true})

	engine := gin.New()
	NewParkingHandler(service, ff).RegisterParkingRoutes(engine.Group("/api/v1"), authCfg)

	return &parkingFixture{engine: engine, flags: ff}
}

func (f *parkingFixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func (f *parkingFixture) registerCar(t *testing.T, plate string) {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/v1/cars", `{"licensePlate":"`+plate+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestParkingHandler_RegisterCar(t *testing.T) {
	f := newParkingFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/v1/cars", `{"licensePlate":"AB-123-CD"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/cars/AB-123-CD", w.Header().Get("Location"))
	assert.JSONEq(t, `{"licensePlate":"AB-123-CD","parked":false}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/cars", `{"licensePlate":"AB-123-CD"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeConflict, decode[dto.ErrorResponse](t, w).Error.Code)
}

func TestParkingHandler_RegisterCar_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed", `{"licensePlate":`, http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"missing plate", `{}`, http.StatusBadRequest, dto.ErrorCodeValidation},
		{"blank plate", `{"licensePlate":"   "}`, http.StatusBadRequest, dto.ErrorCodeValidation},
		{"plate longer than configured", `{"licensePlate":"ABCDEFGHIJKLMNOPQRSTU"}`, http.StatusBadRequest, dto.ErrorCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newParkingFixture(t, nil)

			w := f.do(t, http.MethodPost, "/api/v1/cars", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode[dto.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestParkingHandler_EnterAndLeave(t *testing.T) {
	f := newParkingFixture(t, nil)
	f.registerCar(t, "AB-123-CD")

	w := f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"g-capitole"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	entered := decode[dto.ParkingRecordResponse](t, w)
	assert.True(t, entered.InProgress)
	assert.Equal(t, "g-capitole", entered.Garage.ID)
	assert.Nil(t, entered.End)

	w = f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD", "")
	assert.JSONEq(t, `{"licensePlate":"AB-123-CD","parked":true,"currentGarageId":"g-capitole"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/leave", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	left := decode[dto.ParkingRecordResponse](t, w)
	assert.Equal(t, entered.ID, left.ID)
	assert.False(t, left.InProgress)
	require.NotNil(t, left.DurationSeconds)
	assert.Positive(t, *left.DurationSeconds)
}

func TestParkingHandler_InvalidState(t *testing.T) {
	f := newParkingFixture(t, nil)
	f.registerCar(t, "AB-123-CD")

	w := f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/leave", "")
	require.Equal(t, http.StatusConflict, w.Code)

	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, dto.ErrorCodeInvalidState, resp.Error.Code)
	assert.Equal(t, "car is not in a garage", resp.Error.Message)

	require.Equal(t, http.StatusCreated,
		f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"g-capitole"}`).Code)

	w = f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"g-matabiau"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	resp = decode[dto.ErrorResponse](t, w)
	assert.Equal(t, dto.ErrorCodeInvalidState, resp.Error.Code)
	assert.Equal(t, "car is already in a garage", resp.Error.Message)

	w = f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/garages", "")
	assert.JSONEq(t, `{"items":[{"id":"g-capitole","name":"Capitole","address":"1 place du Capitole"}]}`, w.Body.String(),
		"the rejected entry must not be recorded")
}

func TestParkingHandler_NotFound(t *testing.T) {
	f := newParkingFixture(t, nil)
	f.registerCar(t, "AB-123-CD")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"unknown car", http.MethodGet, "/api/v1/cars/ZZ-999-ZZ", ""},
		{"unknown car enters", http.MethodPost, "/api/v1/cars/ZZ-999-ZZ/enter", `{"garageId":"g-capitole"}`},
		{"unknown garage", http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"g-nowhere"}`},
		{"history of unknown car", http.MethodGet, "/api/v1/cars/ZZ-999-ZZ/history", ""},
		{"garage lookup", http.MethodGet, "/api/v1/garages/g-nowhere", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
			assert.Equal(t, dto.ErrorCodeNotFound, decode[dto.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestParkingHandler_VisitedGaragesAndHistory(t *testing.T) {
	f := newParkingFixture(t, nil)
	f.registerCar(t, "AB-123-CD")

	for _, garage := range []string{"g-capitole", "g-matabiau", "g-capitole"} {
		require.Equal(t, http.StatusCreated,
			f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"`+garage+`"}`).Code)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/leave", "").Code)
	}

	w := f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/garages", "")
	require.Equal(t, http.StatusOK, w.Code)

	visited := decode[dto.ListResponse[dto.GarageResponse]](t, w)
	ids := make([]string, 0, len(visited.Items))
	for _, g := range visited.Items {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []string{"g-capitole", "g-matabiau"}, ids)

	w = f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	history := decode[dto.CarHistoryResponse](t, w)
	records := map[string]int{}
	for _, g := range history.Garages {
		records[g.Garage.ID] = len(g.Records)
	}
	assert.Equal(t, map[string]int{"g-capitole": 2, "g-matabiau": 1}, records)
}

func TestParkingHandler_TextHistory(t *testing.T) {
	f := newParkingFixture(t, nil)
	f.registerCar(t, "AB-123-CD")
	require.Equal(t, http.StatusCreated,
		f.do(t, http.MethodPost, "/api/v1/cars/AB-123-CD/enter", `{"garageId":"g-matabiau"}`).Code)

	w := f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/history?format=text", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Garage(name=Matabiau, address=)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ParkingRecord(start="))
	assert.True(t, strings.HasSuffix(lines[1], "end=in progress)"))

	t.Run("disabled", func(t *testing.T) {
		f.flags.Set(ports.FlagHistoryTextFormat, false)
		t.Cleanup(func() { f.flags.Set(ports.FlagHistoryTextFormat, true) })

		w := f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/history?format=text", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrorCodeForbidden, decode[dto.ErrorResponse](t, w).Error.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cars/AB-123-CD/history?format=xml", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[dto.ErrorResponse](t, w).Error.Details, "format")
	})
}

func TestParkingHandler_ListCarsPagination(t *testing.T) {
	f := newParkingFixture(t, nil)
	for _, plate := range []string{"CC-003-CC", "AA-001-AA", "BB-002-BB"} {
		f.registerCar(t, plate)
	}

	w := f.do(t, http.MethodGet, "/api/v1/cars?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	first := decode[dto.Page[dto.CarResponse]](t, w)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "AA-001-AA", first.Items[0].LicensePlate)
	assert.Equal(t, "BB-002-BB", first.Items[1].LicensePlate)
	require.True(t, first.HasMore)

	w = f.do(t, http.MethodGet, "/api/v1/cars?limit=2&cursor="+first.NextCursor, "")
	require.Equal(t, http.StatusOK, w.Code)

	second := decode[dto.Page[dto.CarResponse]](t, w)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "CC-003-CC", second.Items[0].LicensePlate)
	assert.False(t, second.HasMore)

	t.Run("bad cursor", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cars?cursor=not-a-cursor", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeBadRequest, decode[dto.ErrorResponse](t, w).Error.Code)
	})

	t.Run("cursor for another field", func(t *testing.T) {
		cursor := dto.EncodeCursor("name", "x")
		w := f.do(t, http.MethodGet, "/api/v1/cars?cursor="+cursor, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("limit out of range", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/cars?limit=0", "")
		assert.Equal(t, http.StatusOK, w.Code, "zero falls back to the default")

		w = f.do(t, http.MethodGet, "/api/v1/cars?limit=101", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestParkingHandler_Garages(t *testing.T) {
	f := newParkingFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/v1/garages", `{"name":"Jean Jaures","address":"Allees Jean Jaures"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[dto.GarageResponse](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v1/garages/"+created.ID, w.Header().Get("Location"))

	w = f.do(t, http.MethodGet, "/api/v1/garages/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[dto.GarageResponse](t, w))

	w = f.do(t, http.MethodGet, "/api/v1/garages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.ListResponse[dto.GarageResponse]](t, w).Items, 3)

	w = f.do(t, http.MethodPost, "/api/v1/garages", `{"address":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[dto.ErrorResponse](t, w).Error.Details, "name")
}

func TestParkingHandler_Auth(t *testing.T) {
	f := newParkingFixture(t, &config.AuthConfig{Enabled: true})

	t.Run("reads stay open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/garages", "").Code)
	})

	t.Run("write without subject", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/cars", `{"licensePlate":"AB-123-CD"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decode[dto.ErrorResponse](t, w).Error.Code)
	})

	t.Run("write with subject", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/cars", `{"licensePlate":"AB-123-CD"}`, "X-User-ID", "driver-1")

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("garage registration needs admin role", func(t *testing.T) {
		body := `{"name":"Esquirol"}`

		w := f.do(t, http.MethodPost, "/api/v1/garages", body, "X-User-ID", "driver-1", "X-User-Roles", "driver")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/garages", body, "X-User-ID", "ops-1", "X-User-Roles", "driver, "+GarageAdminRole)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
