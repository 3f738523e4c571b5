// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, so the application layer
// depends on abstractions rather than on a particular store or transport.
//
// Port conventions:
//   - Context is always the first parameter
//   - Methods return domain types, never storage or wire types
//   - Errors use the domain sentinels (ErrNotFound, ErrConflict, ...)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/garage-service/internal/domain"
)

// CarRepository stores cars together with their parking records.
// Implementations must not share Car values with callers: Get returns a copy and
// Create/Save store a copy.
type CarRepository interface {
	// Get retrieves a car by license plate.
	// Returns domain.ErrNotFound if the car does not exist.
	Get(ctx context.Context, licensePlate string) (*domain.Car, error)

	// Create stores a new car.
	// Returns domain.ErrConflict if a car with the same plate exists.
	Create(ctx context.Context, car *domain.Car) error

	// Save replaces a stored car.
	// Returns domain.ErrNotFound if the car does not exist.
	Save(ctx context.Context, car *domain.Car) error

	// List returns all cars ordered by license plate.
	List(ctx context.Context) ([]*domain.Car, error)
}

// GarageRepository stores garages.
type GarageRepository interface {
	// Get retrieves a garage by identifier.
	// Returns domain.ErrNotFound if the garage does not exist.
	Get(ctx context.Context, id string) (domain.Garage, error)

	// Create stores a new garage.
	// Returns domain.ErrConflict if a garage with the same identifier exists.
	Create(ctx context.Context, garage domain.Garage) error

	// List returns all garages ordered by name, then identifier.
	List(ctx context.Context) ([]domain.Garage, error)
}

// EventPublisher defines the contract for publishing domain events.
type EventPublisher interface {
	// Publish sends an event to the configured destination.
	// Returns domain.ErrUnavailable if the destination is unreachable.
	Publish(ctx context.Context, event Event) error
}

// Event represents a domain event that can be published.
type Event interface {
	// EventType returns the type identifier for routing.
	EventType() string

	// Payload returns the event data for serialization.
	Payload() any
}

// Parking event types.
const (
	EventCarEntered = "car.entered"
	EventCarLeft    = "car.left"
)

// ParkingEvent is published when a car enters or leaves a garage.
type ParkingEvent struct {
	Type         string         `json:"type"`
	LicensePlate string         `json:"licensePlate"`
	GarageID     string         `json:"garageId"`
	RecordID     string         `json:"recordId"`
	OccurredAt   time.Time      `json:"occurredAt"`
	Duration     *time.Duration `json:"duration,omitempty"`
}

// EventType implements Event.
func (e ParkingEvent) EventType() string {
	return e.Type
}

// Payload implements Event.
func (e ParkingEvent) Payload() any {
	return e
}

// ParkingMetrics records parking activity.
type ParkingMetrics interface {
	// RecordEntry counts a car entering a garage.
	RecordEntry(garage domain.Garage)

	// RecordExit counts a car leaving a garage after the given stay.
	RecordExit(garage domain.Garage, stay time.Duration)

	// RecordRejected counts an enter or leave rejected by the car's state.
	RecordRejected(operation string)
}
