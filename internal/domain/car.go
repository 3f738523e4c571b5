package domain

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	msgAlreadyParked = "car is already in a garage"
	msgNotParked     = "car is not in a garage"
)

// Car is a vehicle identified by its license plate, with the history of its
// stays in garages.
//
// The parked state is derived from the last record: the car is parked iff its
// last record is in progress. Only the last record can be in progress.
//
// A Car is not safe for concurrent use. Callers serialize access per car.
type Car struct {
	licensePlate string
	records      []*ParkingRecord
	now          func() time.Time
	newID        func() string
}

// CarOption configures a Car.
type CarOption func(*Car)

// WithClock sets the time source used to stamp parking records.
func WithClock(now func() time.Time) CarOption {
	return func(c *Car) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the generator for parking record identifiers.
func WithIDGenerator(newID func() string) CarOption {
	return func(c *Car) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// NewCar creates a car that has never parked.
func NewCar(licensePlate string, opts ...CarOption) (*Car, error) {
	licensePlate = strings.TrimSpace(licensePlate)
	if licensePlate == "" {
		return nil, NewValidationError("licensePlate", "cannot be empty")
	}

	c := &Car{
		licensePlate: licensePlate,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// LicensePlate returns the car's identifier.
func (c *Car) LicensePlate() string {
	return c.licensePlate
}

// EnterGarage parks the car in g.
// Returns an InvalidStateError if the car is already parked.
func (c *Car) EnterGarage(g Garage) error {
	if c.IsParked() {
		return NewInvalidStateError("car", msgAlreadyParked)
	}

	c.records = append(c.records, NewParkingRecord(c.newID(), c.licensePlate, g, c.now()))

	return nil
}

// LeaveGarage closes the current stay.
// Returns an InvalidStateError if the car is not parked.
func (c *Car) LeaveGarage() error {
	if !c.IsParked() {
		return NewInvalidStateError("car", msgNotParked)
	}

	c.records[len(c.records)-1].Terminate(c.now())

	return nil
}

// IsParked reports whether the car is currently in a garage.
func (c *Car) IsParked() bool {
	return len(c.records) > 0 && c.records[len(c.records)-1].InProgress()
}

// CurrentRecord returns a copy of the in-progress record, or nil when not parked.
func (c *Car) CurrentRecord() *ParkingRecord {
	if !c.IsParked() {
		return nil
	}

	return c.records[len(c.records)-1].clone()
}

// LastRecord returns a copy of the most recent record, or nil if the car never parked.
func (c *Car) LastRecord() *ParkingRecord {
	if len(c.records) == 0 {
		return nil
	}

	return c.records[len(c.records)-1].clone()
}

// Records returns copies of all records in chronological order.
func (c *Car) Records() []*ParkingRecord {
	out := make([]*ParkingRecord, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}

	return out
}

// VisitedGarages returns every garage the car has been in, finished stays included.
func (c *Car) VisitedGarages() *GarageSet {
	set := NewGarageSet()
	for _, r := range c.records {
		set.Add(r.Garage)
	}

	return set
}

// GarageHistory groups the records of one car in one garage.
type GarageHistory struct {
	Garage  Garage
	Records []*ParkingRecord
}

// History groups the records by visited garage.
// Garage order is unspecified; records keep their chronological order.
func (c *Car) History() []GarageHistory {
	garages := c.VisitedGarages().Garages()
	history := make([]GarageHistory, 0, len(garages))

	for _, g := range garages {
		entry := GarageHistory{Garage: g}
		for _, r := range c.records {
			if r.Garage.Equal(g) {
				entry.Records = append(entry.Records, r.clone())
			}
		}

		history = append(history, entry)
	}

	return history
}

// PrintParkingHistory writes each visited garage followed by its records,
// one per line.
func (c *Car) PrintParkingHistory(w io.Writer) error {
	for _, entry := range c.History() {
		if _, err := fmt.Fprintln(w, entry.Garage); err != nil {
			return err
		}

		for _, r := range entry.Records {
			if _, err := fmt.Fprintln(w, r); err != nil {
				return err
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the car sharing its clock and id generator.
func (c *Car) Clone() *Car {
	clone := &Car{
		licensePlate: c.licensePlate,
		records:      make([]*ParkingRecord, len(c.records)),
		now:          c.now,
		newID:        c.newID,
	}
	for i, r := range c.records {
		clone.records[i] = r.clone()
	}

	return clone
}

// String implements fmt.Stringer. Records are not included.
func (c *Car) String() string {
	return fmt.Sprintf("Car(licensePlate=%s)", c.licensePlate)
}
