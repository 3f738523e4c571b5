// Package app contains application services that orchestrate use cases.
// It coordinates domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate parking use cases
//   - Serialize access to each car
//   - Handle cross-cutting concerns (logging, tracing, metrics, events)
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Storage details (that's repository adapters)
//   - Parking rules (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

const tracerName = "github.com/jsamuelsen/garage-service/internal/app"

// DefaultMaxPlateLength is used when ServiceConfig.MaxPlateLength is unset.
const DefaultMaxPlateLength = 16

// ParkingService orchestrates car and garage use cases.
// It depends on port interfaces, not concrete implementations.
//
// Example usage:
//
//	svc := app.NewParkingService(app.ParkingServiceDeps{
//	    Cars:    memory.NewCarRepository(),
//	    Garages: memory.NewGarageRepository(),
//	}, &app.ServiceConfig{Logger: logger})
//
//	record, err := svc.EnterGarage(ctx, "AB-123-CD", garageID)
type ParkingService struct {
	cars      ports.CarRepository
	garages   ports.GarageRepository
	publisher ports.EventPublisher
	metrics   ports.ParkingMetrics
	flags     ports.FeatureFlags

	exec   *Executor
	locks  *KeyedMutex
	tracer trace.Tracer
	logger *slog.Logger

	now            func() time.Time
	newID          func() string
	maxPlateLength int
}

// ParkingServiceDeps holds the ports the service depends on.
// Cars and Garages are required; the others may be nil.
type ParkingServiceDeps struct {
	Cars      ports.CarRepository
	Garages   ports.GarageRepository
	Publisher ports.EventPublisher
	Metrics   ports.ParkingMetrics
	Flags     ports.FeatureFlags
}

// ServiceConfig holds optional configuration for the service.
type ServiceConfig struct {
	Logger *slog.Logger

	// Clock stamps parking records. Defaults to time.Now.
	Clock func() time.Time

	// IDGenerator produces garage and record ids. Defaults to uuid.NewString.
	IDGenerator func() string

	// MaxPlateLength bounds license plates in runes.
	MaxPlateLength int
}

// NewParkingService creates a new parking service with the given dependencies.
func NewParkingService(deps ParkingServiceDeps, cfg *ServiceConfig) *ParkingService {
	s := &ParkingService{
		cars:           deps.Cars,
		garages:        deps.Garages,
		publisher:      deps.Publisher,
		metrics:        deps.Metrics,
		flags:          deps.Flags,
		locks:          NewKeyedMutex(),
		tracer:         otel.Tracer(tracerName),
		logger:         slog.Default(),
		now:            time.Now,
		newID:          uuid.NewString,
		maxPlateLength: DefaultMaxPlateLength,
	}

	if cfg != nil {
		if cfg.Logger != nil {
			s.logger = cfg.Logger
		}

		if cfg.Clock != nil {
			s.now = cfg.Clock
		}

		if cfg.IDGenerator != nil {
			s.newID = cfg.IDGenerator
		}

		if cfg.MaxPlateLength > 0 {
			s.maxPlateLength = cfg.MaxPlateLength
		}
	}

	s.logger = s.logger.With(slog.String("component", "app.ParkingService"))
	s.exec = NewExecutor(s.logger)

	return s
}

func (s *ParkingService) loggerFrom(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

func (s *ParkingService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ParkingService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// normalizePlate trims the plate and enforces the configured bounds.
func (s *ParkingService) normalizePlate(plate string) (string, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return "", domain.NewValidationError("licensePlate", "cannot be empty")
	}

	if utf8.RuneCountInString(plate) > s.maxPlateLength {
		return "", domain.NewValidationErrorWithValue("licensePlate",
			fmt.Sprintf("must be at most %d characters", s.maxPlateLength), plate)
	}

	return plate, nil
}

// RegisterCar creates a car that has never parked.
// Returns domain.ErrConflict if the plate is already registered.
func (s *ParkingService) RegisterCar(ctx context.Context, plate string) (_ *domain.Car, err error) {
	ctx, span := s.startSpan(ctx, "RegisterCar", attribute.String("car.license_plate", plate))
	defer func() { endSpan(span, err) }()

	plate, err = s.normalizePlate(plate)
	if err != nil {
		return nil, err
	}

	car, err := domain.NewCar(plate, domain.WithClock(s.now), domain.WithIDGenerator(s.newID))
	if err != nil {
		return nil, err
	}

	if err := s.cars.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("creating car: %w", err)
	}

	s.loggerFrom(ctx).InfoContext(ctx, "car registered", slog.String("license_plate", plate))

	return car, nil
}

// GetCar retrieves a car by license plate.
func (s *ParkingService) GetCar(ctx context.Context, plate string) (*domain.Car, error) {
	car, err := s.cars.Get(ctx, strings.TrimSpace(plate))
	if err != nil {
		return nil, fmt.Errorf("getting car: %w", err)
	}

	return car, nil
}

// ListCars returns up to limit cars whose plate sorts after the given plate.
// An empty after starts from the first car; a limit <= 0 returns all of them.
func (s *ParkingService) ListCars(ctx context.Context, after string, limit int) ([]*domain.Car, error) {
	cars, err := s.cars.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cars: %w", err)
	}

	start := 0
	if after != "" {
		for start < len(cars) && cars[start].LicensePlate() <= after {
			start++
		}
	}

	cars = cars[start:]
	if limit > 0 && len(cars) > limit {
		cars = cars[:limit]
	}

	return cars, nil
}

// RegisterGarage creates a garage with a generated identifier.
func (s *ParkingService) RegisterGarage(ctx context.Context, name, address string) (_ domain.Garage, err error) {
	ctx, span := s.startSpan(ctx, "RegisterGarage", attribute.String("garage.name", name))
	defer func() { endSpan(span, err) }()

	garage, err := domain.NewGarage(s.newID(), name, address)
	if err != nil {
		return domain.Garage{}, err
	}

	if err := s.garages.Create(ctx, garage); err != nil {
		return domain.Garage{}, fmt.Errorf("creating garage: %w", err)
	}

	s.loggerFrom(ctx).InfoContext(ctx, "garage registered",
		slog.String("garage_id", garage.ID),
		slog.String("garage_name", garage.Name),
	)

	return garage, nil
}

// GetGarage retrieves a garage by identifier.
func (s *ParkingService) GetGarage(ctx context.Context, id string) (domain.Garage, error) {
	garage, err := s.garages.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Garage{}, fmt.Errorf("getting garage: %w", err)
	}

	return garage, nil
}

// ListGarages returns all garages ordered by name.
func (s *ParkingService) ListGarages(ctx context.Context) ([]domain.Garage, error) {
	garages, err := s.garages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing garages: %w", err)
	}

	return garages, nil
}
