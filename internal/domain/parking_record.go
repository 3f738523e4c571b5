package domain

import (
	"fmt"
	"time"
)

// ParkingRecord is a single stay of one car in one garage.
// A record with no end time is in progress.
type ParkingRecord struct {
	// ID is the unique identifier for this record.
	ID string

	// LicensePlate identifies the car that parked.
	LicensePlate string

	// Garage is where the car parked.
	Garage Garage

	// Start is when the car entered the garage.
	Start time.Time

	// End is when the car left, nil while the stay is in progress.
	End *time.Time
}

// NewParkingRecord opens a record for the car in the garage at the given time.
func NewParkingRecord(id, licensePlate string, garage Garage, start time.Time) *ParkingRecord {
	return &ParkingRecord{
		ID:           id,
		LicensePlate: licensePlate,
		Garage:       garage,
		Start:        start,
	}
}

// InProgress reports whether the car is still in the garage.
func (r *ParkingRecord) InProgress() bool {
	return r.End == nil
}

// Terminate closes the record at the given time.
// Terminating an already closed record keeps the original end time.
// An end time before Start is clamped to Start.
func (r *ParkingRecord) Terminate(at time.Time) {
	if r.End != nil {
		return
	}

	if at.Before(r.Start) {
		at = r.Start
	}

	r.End = &at
}

// Duration returns the length of the stay, measured up to now while in
// progress. It is never negative.
func (r *ParkingRecord) Duration(now time.Time) time.Duration {
	if r.End != nil {
		now = *r.End
	}

	return max(now.Sub(r.Start), 0)
}

// String implements fmt.Stringer.
func (r *ParkingRecord) String() string {
	end := "in progress"
	if r.End != nil {
		end = r.End.Format(time.RFC3339)
	}

	return fmt.Sprintf("ParkingRecord(start=%s, end=%s)", r.Start.Format(time.RFC3339), end)
}

func (r *ParkingRecord) clone() *ParkingRecord {
	c := *r
	if r.End != nil {
		end := *r.End
		c.End = &end
	}

	return &c
}
