package dto

import (
	"time"

	"github.com/jsamuelsen/garage-service/internal/domain"
)

// RegisterCarRequest is the body of POST /api/v1/cars.
type RegisterCarRequest struct {
	LicensePlate string `json:"licensePlate" validate:"required,plate,max=64"`
}

// EnterGarageRequest is the body of POST /api/v1/cars/:plate/enter.
type EnterGarageRequest struct {
	GarageID string `json:"garageId" validate:"required,notblank,max=64"`
}

// RegisterGarageRequest is the body of POST /api/v1/garages.
type RegisterGarageRequest struct {
	Name    string `json:"name"    validate:"required,notblank,max=128"`
	Address string `json:"address" validate:"max=256"`
}

// HistoryQuery holds the query parameters of GET /api/v1/cars/:plate/history.
type HistoryQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=json text"`
}

// GarageResponse is the JSON representation of a garage.
type GarageResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// CarResponse is the JSON representation of a car without its records.
type CarResponse struct {
	LicensePlate    string `json:"licensePlate"`
	Parked          bool   `json:"parked"`
	CurrentGarageID string `json:"currentGarageId,omitempty"`
}

// ParkingRecordResponse is the JSON representation of a parking record.
type ParkingRecordResponse struct {
	ID              string         `json:"id"`
	LicensePlate    string         `json:"licensePlate"`
	Garage          GarageResponse `json:"garage"`
	Start           time.Time      `json:"start"`
	End             *time.Time     `json:"end,omitempty"`
	InProgress      bool           `json:"inProgress"`
	DurationSeconds *int64         `json:"durationSeconds,omitempty"`
}

// GarageHistoryResponse groups the records of a car in one garage.
type GarageHistoryResponse struct {
	Garage  GarageResponse          `json:"garage"`
	Records []ParkingRecordResponse `json:"records"`
}

// CarHistoryResponse is the body of GET /api/v1/cars/:plate/history.
type CarHistoryResponse struct {
	LicensePlate string                  `json:"licensePlate"`
	Garages      []GarageHistoryResponse `json:"garages"`
}

// ListResponse wraps an unpaginated collection.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// NewGarageResponse converts a domain garage.
func NewGarageResponse(g domain.Garage) GarageResponse {
	return GarageResponse{ID: g.ID, Name: g.Name, Address: g.Address}
}

// NewGarageResponses converts a slice of domain garages.
func NewGarageResponses(garages []domain.Garage) []GarageResponse {
	out := make([]GarageResponse, 0, len(garages))
	for _, g := range garages {
		out = append(out, NewGarageResponse(g))
	}

	return out
}

// NewCarResponse converts a domain car.
func NewCarResponse(c *domain.Car) CarResponse {
	resp := CarResponse{
		LicensePlate: c.LicensePlate(),
		Parked:       c.IsParked(),
	}

	if current := c.CurrentRecord(); current != nil {
		resp.CurrentGarageID = current.Garage.ID
	}

	return resp
}

// NewParkingRecordResponse converts a domain record. Duration is only set for
// finished stays.
func NewParkingRecordResponse(r *domain.ParkingRecord) ParkingRecordResponse {
	resp := ParkingRecordResponse{
		ID:           r.ID,
		LicensePlate: r.LicensePlate,
		Garage:       NewGarageResponse(r.Garage),
		Start:        r.Start,
		End:          r.End,
		InProgress:   r.InProgress(),
	}

	if !r.InProgress() {
		seconds := int64(r.Duration(time.Time{}).Seconds())
		resp.DurationSeconds = &seconds
	}

	return resp
}

// NewCarHistoryResponse converts grouped history.
func NewCarHistoryResponse(plate string, history []domain.GarageHistory) CarHistoryResponse {
	resp := CarHistoryResponse{
		LicensePlate: plate,
		Garages:      make([]GarageHistoryResponse, 0, len(history)),
	}

	for _, h := range history {
		group := GarageHistoryResponse{
			Garage:  NewGarageResponse(h.Garage),
			Records: make([]ParkingRecordResponse, 0, len(h.Records)),
		}

		for _, r := range h.Records {
			group.Records = append(group.Records, NewParkingRecordResponse(r))
		}

		resp.Garages = append(resp.Garages, group)
	}

	return resp
}
