package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var (
	_ ports.GarageRepository = (*GarageRepository)(nil)
	_ ports.HealthChecker    = (*GarageRepository)(nil)
)

// GarageRepository stores garages keyed by identifier.
type GarageRepository struct {
	mu      sync.RWMutex
	garages map[string]domain.Garage
}

// NewGarageRepository creates a repository holding the given garages.
func NewGarageRepository(seed ...domain.Garage) *GarageRepository {
	r := &GarageRepository{garages: make(map[string]domain.Garage, len(seed))}
	for _, g := range seed {
		r.garages[g.ID] = g
	}

	return r
}

// Get implements ports.GarageRepository.
func (r *GarageRepository) Get(ctx context.Context, id string) (domain.Garage, error) {
	if err := ctx.Err(); err != nil {
		return domain.Garage{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.garages[id]
	if !ok {
		return domain.Garage{}, domain.NewNotFoundError("garage", id)
	}

	return g, nil
}

// Create implements ports.GarageRepository.
func (r *GarageRepository) Create(ctx context.Context, garage domain.Garage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.garages[garage.ID]; ok {
		return domain.NewConflictError("garage", "id "+garage.ID+" is already registered")
	}

	r.garages[garage.ID] = garage

	return nil
}

// List implements ports.GarageRepository.
func (r *GarageRepository) List(ctx context.Context) ([]domain.Garage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	garages := make([]domain.Garage, 0, len(r.garages))
	for _, g := range r.garages {
		garages = append(garages, g)
	}
	r.mu.RUnlock()

	sort.Slice(garages, func(i, j int) bool {
		if garages[i].Name != garages[j].Name {
			return garages[i].Name < garages[j].Name
		}

		return garages[i].ID < garages[j].ID
	})

	return garages, nil
}

// Name implements ports.HealthChecker.
func (r *GarageRepository) Name() string {
	return "garage-store"
}

// Check implements ports.HealthChecker.
func (r *GarageRepository) Check(ctx context.Context) error {
	return checkLock(ctx, &r.mu)
}
