package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var (
	_ ports.CarRepository = (*CarRepository)(nil)
	_ ports.HealthChecker = (*CarRepository)(nil)
)

// CarRepository stores cars keyed by license plate.
type CarRepository struct {
	mu   sync.RWMutex
	cars map[string]*domain.Car
}

// NewCarRepository creates an empty car repository.
func NewCarRepository() *CarRepository {
	return &CarRepository{cars: make(map[string]*domain.Car)}
}

// Get implements ports.CarRepository.
func (r *CarRepository) Get(ctx context.Context, licensePlate string) (*domain.Car, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	car, ok := r.cars[licensePlate]
	if !ok {
		return nil, domain.NewNotFoundError("car", licensePlate)
	}

	return car.Clone(), nil
}

// Create implements ports.CarRepository.
func (r *CarRepository) Create(ctx context.Context, car *domain.Car) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[car.LicensePlate()]; ok {
		return domain.NewConflictError("car", "license plate "+car.LicensePlate()+" is already registered")
	}

	r.cars[car.LicensePlate()] = car.Clone()

	return nil
}

// Save implements ports.CarRepository.
func (r *CarRepository) Save(ctx context.Context, car *domain.Car) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cars[car.LicensePlate()]; !ok {
		return domain.NewNotFoundError("car", car.LicensePlate())
	}

	r.cars[car.LicensePlate()] = car.Clone()

	return nil
}

// List implements ports.CarRepository.
func (r *CarRepository) List(ctx context.Context) ([]*domain.Car, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	cars := make([]*domain.Car, 0, len(r.cars))
	for _, car := range r.cars {
		cars = append(cars, car.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(cars, func(i, j int) bool {
		return cars[i].LicensePlate() < cars[j].LicensePlate()
	})

	return cars, nil
}

// Parked returns the number of stored cars currently in a garage.
func (r *CarRepository) Parked() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, car := range r.cars {
		if car.IsParked() {
			n++
		}
	}

	return n
}

// Name implements ports.HealthChecker.
func (r *CarRepository) Name() string {
	return "car-store"
}

// Check implements ports.HealthChecker. The store is healthy while its lock
// can be taken before ctx expires.
func (r *CarRepository) Check(ctx context.Context) error {
	return checkLock(ctx, &r.mu)
}
