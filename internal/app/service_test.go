package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock that advances one minute per call from 2024-03-01 08:00 UTC.
func fixedClock() func() time.Time {
	next := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	return func() time.Time {
		t := next
		next = next.Add(time.Minute)

		return t
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0

	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func testConfig() *ServiceConfig {
	return &ServiceConfig{
		Logger:      discardLogger(),
		Clock:       fixedClock(),
		IDGenerator: sequentialIDs("id"),
	}
}

func TestNewParkingService(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ServiceConfig
	}{
		{name: "with config", cfg: testConfig()},
		{name: "with nil config uses defaults", cfg: nil},
		{name: "with custom plate length", cfg: &ServiceConfig{MaxPlateLength: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewParkingService(ParkingServiceDeps{
				Cars:    mocks.NewMockCarRepository(t),
				Garages: mocks.NewMockGarageRepository(t),
			}, tt.cfg)

			require.NotNil(t, svc)
			assert.NotNil(t, svc.exec)
			assert.NotNil(t, svc.locks)
		})
	}
}

func TestParkingService_RegisterCar(t *testing.T) {
	tests := []struct {
		name      string
		plate     string
		setupMock func(*mocks.MockCarRepository)
		wantPlate string
		errCheck  func(error) bool
	}{
		{
			name:  "success",
			plate: "AB-123-CD",
			setupMock: func(cars *mocks.MockCarRepository) {
				cars.EXPECT().Create(mock.Anything, mock.MatchedBy(func(c *domain.Car) bool {
					return c.LicensePlate() == "AB-123-CD" && !c.IsParked()
				})).Return(nil)
			},
			wantPlate: "AB-123-CD",
		},
		{
			name:  "plate is trimmed",
			plate: "  AB-123-CD  ",
			setupMock: func(cars *mocks.MockCarRepository) {
				cars.EXPECT().Create(mock.Anything, mock.Anything).Return(nil)
			},
			wantPlate: "AB-123-CD",
		},
		{
			name:      "empty plate",
			plate:     "   ",
			setupMock: func(*mocks.MockCarRepository) {},
			errCheck:  domain.IsValidation,
		},
		{
			name:      "plate too long",
			plate:     strings.Repeat("A", DefaultMaxPlateLength+1),
			setupMock: func(*mocks.MockCarRepository) {},
			errCheck:  domain.IsValidation,
		},
		{
			name:  "duplicate plate",
			plate: "AB-123-CD",
			setupMock: func(cars *mocks.MockCarRepository) {
				cars.EXPECT().Create(mock.Anything, mock.Anything).
					Return(domain.NewConflictError("car", "already registered"))
			},
			errCheck: domain.IsConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cars := mocks.NewMockCarRepository(t)
			tt.setupMock(cars)

			svc := NewParkingService(ParkingServiceDeps{Cars: cars, Garages: mocks.NewMockGarageRepository(t)}, testConfig())

			car, err := svc.RegisterCar(context.Background(), tt.plate)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))
				assert.Nil(t, car)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPlate, car.LicensePlate())
		})
	}
}

func TestParkingService_RegisterGarage(t *testing.T) {
	t.Run("assigns generated id", func(t *testing.T) {
		garages := mocks.NewMockGarageRepository(t)
		garages.EXPECT().Create(mock.Anything, domain.Garage{
			ID:      "id-1",
			Name:    "Centre",
			Address: "1 place du Capitole",
		}).Return(nil)

		svc := NewParkingService(ParkingServiceDeps{Cars: mocks.NewMockCarRepository(t), Garages: garages}, testConfig())

		g, err := svc.RegisterGarage(context.Background(), " Centre ", "1 place du Capitole")

		require.NoError(t, err)
		assert.Equal(t, "id-1", g.ID)
		assert.Equal(t, "Centre", g.Name)
	})

	t.Run("empty name", func(t *testing.T) {
		svc := NewParkingService(ParkingServiceDeps{
			Cars:    mocks.NewMockCarRepository(t),
			Garages: mocks.NewMockGarageRepository(t),
		}, testConfig())

		_, err := svc.RegisterGarage(context.Background(), "", "somewhere")

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		garages := mocks.NewMockGarageRepository(t)
		garages.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("boom"))

		svc := NewParkingService(ParkingServiceDeps{Cars: mocks.NewMockCarRepository(t), Garages: garages}, testConfig())

		_, err := svc.RegisterGarage(context.Background(), "Centre", "")

		require.EqualError(t, err, "creating garage: boom")
	})
}

func TestParkingService_GetCar(t *testing.T) {
	cars := mocks.NewMockCarRepository(t)
	cars.EXPECT().Get(mock.Anything, "ZZ-999-ZZ").Return(nil, domain.NewNotFoundError("car", "ZZ-999-ZZ"))

	svc := NewParkingService(ParkingServiceDeps{Cars: cars, Garages: mocks.NewMockGarageRepository(t)}, testConfig())

	_, err := svc.GetCar(context.Background(), " ZZ-999-ZZ ")

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Contains(t, err.Error(), "getting car")
}

func TestParkingService_ListCars(t *testing.T) {
	var all []*domain.Car
	for _, plate := range []string{"AA-111-AA", "BB-222-BB", "CC-333-CC", "DD-444-DD"} {
		car, err := domain.NewCar(plate)
		require.NoError(t, err)

		all = append(all, car)
	}

	tests := []struct {
		name  string
		after string
		limit int
		want  []string
	}{
		{name: "all", want: []string{"AA-111-AA", "BB-222-BB", "CC-333-CC", "DD-444-DD"}},
		{name: "first page", limit: 2, want: []string{"AA-111-AA", "BB-222-BB"}},
		{name: "after cursor", after: "BB-222-BB", limit: 2, want: []string{"CC-333-CC", "DD-444-DD"}},
		{name: "cursor between plates", after: "BB-999", want: []string{"CC-333-CC", "DD-444-DD"}},
		{name: "past the end", after: "ZZ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cars := mocks.NewMockCarRepository(t)
			cars.EXPECT().List(mock.Anything).Return(all, nil)

			svc := NewParkingService(ParkingServiceDeps{Cars: cars, Garages: mocks.NewMockGarageRepository(t)}, testConfig())

			got, err := svc.ListCars(context.Background(), tt.after, tt.limit)
			require.NoError(t, err)

			plates := make([]string, 0, len(got))
			for _, c := range got {
				plates = append(plates, c.LicensePlate())
			}

			assert.Equal(t, tt.want, plates)
		})
	}
}

func TestParkingService_ListGarages(t *testing.T) {
	garages := mocks.NewMockGarageRepository(t)
	garages.EXPECT().List(mock.Anything).Return(nil, domain.NewUnavailableError("garage store", "down"))

	svc := NewParkingService(ParkingServiceDeps{Cars: mocks.NewMockCarRepository(t), Garages: garages}, testConfig())

	_, err := svc.ListGarages(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}
