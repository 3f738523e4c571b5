package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

// Operation names used for logs and the rejected metric.
const (
	OperationEnter = "enter"
	OperationLeave = "leave"
)

// errUnexpectedState is returned by the verify step when a transition that
// reported success left the car in the wrong state.
var errUnexpectedState = errors.New("car state does not match the transition")

type enterInput struct {
	plate    string
	garageID string
}

// transition is a car after a successful state change, with the record it touched.
type transition struct {
	car    *domain.Car
	record *domain.ParkingRecord
}

// EnterGarage parks the car in the garage and returns the opened record.
// Returns a domain.InvalidStateError if the car is already parked.
func (s *ParkingService) EnterGarage(ctx context.Context, plate, garageID string) (_ *domain.ParkingRecord, err error) {
	plate = strings.TrimSpace(plate)

	ctx, span := s.startSpan(ctx, "EnterGarage",
		attribute.String("car.license_plate", plate),
		attribute.String("garage.id", garageID),
	)
	defer func() { endSpan(span, err) }()

	ctx = logging.WithLicensePlate(ctx, plate)

	unlock, err := s.locks.Lock(ctx, plate)
	if err != nil {
		s.loggerFrom(ctx).WarnContext(ctx, "gave up waiting for car lock", slog.Any("error", err))
		return nil, err
	}
	defer unlock()

	record, err := Execute(ctx, s.exec, s.enterOperation(), enterInput{plate: plate, garageID: strings.TrimSpace(garageID)})
	if err != nil {
		s.recordRejection(OperationEnter, err)
		return nil, err
	}

	return record, nil
}

func (s *ParkingService) enterOperation() Operation[enterInput, transition, transition, *domain.ParkingRecord] {
	return Operation[enterInput, transition, transition, *domain.ParkingRecord]{
		Name: "EnterGarage",
		Validate: func(_ context.Context, in enterInput) error {
			if in.plate == "" {
				return domain.NewValidationError("licensePlate", "cannot be empty")
			}

			if in.garageID == "" {
				return domain.NewValidationError("garageId", "cannot be empty")
			}

			return nil
		},
		Perform: func(ctx context.Context, in enterInput) (transition, error) {
			car, garage, err := Parallel2(ctx,
				func(ctx context.Context) (*domain.Car, error) { return s.cars.Get(ctx, in.plate) },
				func(ctx context.Context) (domain.Garage, error) { return s.garages.Get(ctx, in.garageID) },
			)
			if err != nil {
				return transition{}, err
			}

			if err := car.EnterGarage(garage); err != nil {
				return transition{}, err
			}

			return transition{car: car, record: car.CurrentRecord()}, nil
		},
		Verify: func(_ context.Context, in enterInput, t transition) (transition, error) {
			if !t.car.IsParked() || t.record == nil || t.record.Garage.ID != in.garageID {
				return transition{}, errUnexpectedState
			}

			return t, nil
		},
		Archive: func(ctx context.Context, _ enterInput, t transition) error {
			return s.cars.Save(ctx, t.car)
		},
		Respond: func(ctx context.Context, _ enterInput, t transition) (*domain.ParkingRecord, error) {
			if s.metrics != nil {
				s.metrics.RecordEntry(t.record.Garage)
			}

			s.publish(ctx, ports.ParkingEvent{
				Type:         ports.EventCarEntered,
				LicensePlate: t.record.LicensePlate,
				GarageID:     t.record.Garage.ID,
				RecordID:     t.record.ID,
				OccurredAt:   t.record.Start,
			})

			return t.record, nil
		},
	}
}

// LeaveGarage ends the car's current stay and returns the closed record.
// Returns a domain.InvalidStateError if the car is not parked.
func (s *ParkingService) LeaveGarage(ctx context.Context, plate string) (_ *domain.ParkingRecord, err error) {
	plate = strings.TrimSpace(plate)

	ctx, span := s.startSpan(ctx, "LeaveGarage", attribute.String("car.license_plate", plate))
	defer func() { endSpan(span, err) }()

	ctx = logging.WithLicensePlate(ctx, plate)

	unlock, err := s.locks.Lock(ctx, plate)
	if err != nil {
		s.loggerFrom(ctx).WarnContext(ctx, "gave up waiting for car lock", slog.Any("error", err))
		return nil, err
	}
	defer unlock()

	record, err := Execute(ctx, s.exec, s.leaveOperation(), plate)
	if err != nil {
		s.recordRejection(OperationLeave, err)
		return nil, err
	}

	return record, nil
}

func (s *ParkingService) leaveOperation() Operation[string, transition, transition, *domain.ParkingRecord] {
	return Operation[string, transition, transition, *domain.ParkingRecord]{
		Name: "LeaveGarage",
		Validate: func(_ context.Context, plate string) error {
			if plate == "" {
				return domain.NewValidationError("licensePlate", "cannot be empty")
			}

			return nil
		},
		Perform: func(ctx context.Context, plate string) (transition, error) {
			car, err := s.cars.Get(ctx, plate)
			if err != nil {
				return transition{}, err
			}

			if err := car.LeaveGarage(); err != nil {
				return transition{}, err
			}

			return transition{car: car, record: car.LastRecord()}, nil
		},
		Verify: func(_ context.Context, _ string, t transition) (transition, error) {
			if t.car.IsParked() || t.record == nil || t.record.InProgress() {
				return transition{}, errUnexpectedState
			}

			return t, nil
		},
		Archive: func(ctx context.Context, _ string, t transition) error {
			return s.cars.Save(ctx, t.car)
		},
		Respond: func(ctx context.Context, _ string, t transition) (*domain.ParkingRecord, error) {
			stay := t.record.Duration(s.now())

			if s.metrics != nil {
				s.metrics.RecordExit(t.record.Garage, stay)
			}

			s.publish(ctx, ports.ParkingEvent{
				Type:         ports.EventCarLeft,
				LicensePlate: t.record.LicensePlate,
				GarageID:     t.record.Garage.ID,
				RecordID:     t.record.ID,
				OccurredAt:   *t.record.End,
				Duration:     &stay,
			})

			return t.record, nil
		},
	}
}

// publish sends the event when parking events are enabled. The car is already
// saved at this point, so a failed publish is logged and not returned.
func (s *ParkingService) publish(ctx context.Context, event ports.ParkingEvent) {
	if s.publisher == nil {
		return
	}

	if s.flags != nil && !s.flags.IsEnabled(ctx, ports.FlagParkingEvents, true) {
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.loggerFrom(ctx).WarnContext(ctx, "failed to publish parking event",
			slog.String("event_type", event.Type),
			slog.String("license_plate", event.LicensePlate),
			slog.Any("error", err),
		)
	}
}

func (s *ParkingService) recordRejection(operation string, err error) {
	if s.metrics != nil && domain.IsInvalidState(err) {
		s.metrics.RecordRejected(operation)
	}
}

// IsParked reports whether the car is currently in a garage.
func (s *ParkingService) IsParked(ctx context.Context, plate string) (bool, error) {
	car, err := s.GetCar(ctx, plate)
	if err != nil {
		return false, err
	}

	return car.IsParked(), nil
}

// VisitedGarages returns every garage the car has been in.
func (s *ParkingService) VisitedGarages(ctx context.Context, plate string) (*domain.GarageSet, error) {
	car, err := s.GetCar(ctx, plate)
	if err != nil {
		return nil, err
	}

	return car.VisitedGarages(), nil
}

// ParkingHistory returns the car's records grouped by garage.
func (s *ParkingService) ParkingHistory(ctx context.Context, plate string) ([]domain.GarageHistory, error) {
	car, err := s.GetCar(ctx, plate)
	if err != nil {
		return nil, err
	}

	return car.History(), nil
}

// PrintParkingHistory writes the car's history to w, one garage or record per line.
func (s *ParkingService) PrintParkingHistory(ctx context.Context, plate string, w io.Writer) error {
	car, err := s.GetCar(ctx, plate)
	if err != nil {
		return err
	}

	if err := car.PrintParkingHistory(w); err != nil {
		return fmt.Errorf("printing parking history: %w", err)
	}

	return nil
}
