package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/garage-service/internal/adapters/events"
	"github.com/jsamuelsen/garage-service/internal/adapters/memory"
	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/mocks"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

var (
	centre = domain.Garage{ID: "g-1", Name: "Centre", Address: "1 place du Capitole"}
	gare   = domain.Garage{ID: "g-2", Name: "Gare", Address: "64 boulevard Pierre Semard"}
)

type fixture struct {
	svc       *ParkingService
	cars      *memory.CarRepository
	publisher *events.Recorder
	metrics   *mocks.MockParkingMetrics
}

// newFixture wires the service to in-memory stores holding one registered car
// and two garages.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cars:      memory.NewCarRepository(),
		publisher: events.NewRecorder(),
		metrics:   mocks.NewMockParkingMetrics(t),
	}

	f.svc = NewParkingService(ParkingServiceDeps{
		Cars:      f.cars,
		Garages:   memory.NewGarageRepository(centre, gare),
		Publisher: f.publisher,
		Metrics:   f.metrics,
	}, testConfig())

	_, err := f.svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	return f
}

func TestParkingService_EnterGarage(t *testing.T) {
	f := newFixture(t)
	f.metrics.EXPECT().RecordEntry(centre).Return().Once()

	record, err := f.svc.EnterGarage(context.Background(), "AB-123-CD", "g-1")

	require.NoError(t, err)
	assert.True(t, record.InProgress())
	assert.Equal(t, centre, record.Garage)
	assert.Equal(t, "AB-123-CD", record.LicensePlate)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), record.Start)

	parked, err := f.svc.IsParked(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.True(t, parked)

	published := f.publisher.Events()
	require.Len(t, published, 1)

	event, ok := published[0].(ports.ParkingEvent)
	require.True(t, ok)
	assert.Equal(t, ports.EventCarEntered, event.Type)
	assert.Equal(t, "g-1", event.GarageID)
	assert.Equal(t, record.ID, event.RecordID)
	assert.Nil(t, event.Duration)
}

func TestParkingService_EnterGarage_AlreadyParked(t *testing.T) {
	f := newFixture(t)
	f.metrics.EXPECT().RecordEntry(centre).Return().Once()
	f.metrics.EXPECT().RecordRejected(OperationEnter).Return().Once()

	_, err := f.svc.EnterGarage(context.Background(), "AB-123-CD", "g-1")
	require.NoError(t, err)

	_, err = f.svc.EnterGarage(context.Background(), "AB-123-CD", "g-2")

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "car is already in a garage", stateErr.Reason)

	step, ok := GetExecutionStep(err)
	require.True(t, ok)
	assert.Equal(t, StepPerform, step)

	car, err := f.svc.GetCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.Len(t, car.Records(), 1, "rejected enter must not add a record")
	assert.Equal(t, centre, car.CurrentRecord().Garage)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestParkingService_EnterGarage_Errors(t *testing.T) {
	tests := []struct {
		name     string
		plate    string
		garageID string
		step     ExecutionStep
		errCheck func(error) bool
	}{
		{name: "empty plate", plate: " ", garageID: "g-1", step: StepValidate, errCheck: domain.IsValidation},
		{name: "empty garage id", plate: "AB-123-CD", garageID: "", step: StepValidate, errCheck: domain.IsValidation},
		{name: "unknown car", plate: "ZZ-999-ZZ", garageID: "g-1", step: StepPerform, errCheck: domain.IsNotFound},
		{name: "unknown garage", plate: "AB-123-CD", garageID: "g-9", step: StepPerform, errCheck: domain.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.EnterGarage(context.Background(), tt.plate, tt.garageID)

			require.Error(t, err)
			assert.True(t, tt.errCheck(err))

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestParkingService_LeaveGarage(t *testing.T) {
	f := newFixture(t)
	f.metrics.EXPECT().RecordEntry(centre).Return().Once()
	f.metrics.EXPECT().RecordExit(centre, mock.AnythingOfType("time.Duration")).Return().Once()

	entered, err := f.svc.EnterGarage(context.Background(), "AB-123-CD", "g-1")
	require.NoError(t, err)

	record, err := f.svc.LeaveGarage(context.Background(), "AB-123-CD")

	require.NoError(t, err)
	assert.Equal(t, entered.ID, record.ID)
	assert.False(t, record.InProgress())
	assert.True(t, record.End.After(record.Start))

	parked, err := f.svc.IsParked(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.False(t, parked)

	published := f.publisher.Events()
	require.Len(t, published, 2)

	left, ok := published[1].(ports.ParkingEvent)
	require.True(t, ok)
	assert.Equal(t, ports.EventCarLeft, left.Type)
	require.NotNil(t, left.Duration)
	assert.Equal(t, *record.End, left.OccurredAt)
}

func TestParkingService_LeaveGarage_NotParked(t *testing.T) {
	f := newFixture(t)
	f.metrics.EXPECT().RecordRejected(OperationLeave).Return().Once()

	_, err := f.svc.LeaveGarage(context.Background(), "AB-123-CD")

	require.ErrorIs(t, err, domain.ErrInvalidState)

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "car is not in a garage", stateErr.Reason)

	car, err := f.svc.GetCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.Empty(t, car.Records())
}

func TestParkingService_Walkthrough(t *testing.T) {
	f := newFixture(t)
	f.metrics.EXPECT().RecordEntry(mock.Anything).Return().Times(2)
	f.metrics.EXPECT().RecordExit(mock.Anything, mock.Anything).Return().Times(2)
	f.metrics.EXPECT().RecordRejected(OperationEnter).Return().Once()

	ctx := context.Background()
	plate := "AB-123-CD"

	parked, err := f.svc.IsParked(ctx, plate)
	require.NoError(t, err)
	assert.False(t, parked)

	_, err = f.svc.EnterGarage(ctx, plate, centre.ID)
	require.NoError(t, err)

	_, err = f.svc.EnterGarage(ctx, plate, gare.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.LeaveGarage(ctx, plate)
	require.NoError(t, err)

	_, err = f.svc.EnterGarage(ctx, plate, gare.ID)
	require.NoError(t, err)

	_, err = f.svc.LeaveGarage(ctx, plate)
	require.NoError(t, err)

	visited, err := f.svc.VisitedGarages(ctx, plate)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Garage{centre, gare}, visited.Garages())

	history, err := f.svc.ParkingHistory(ctx, plate)
	require.NoError(t, err)
	require.Len(t, history, 2)

	for _, h := range history {
		require.Len(t, h.Records, 1)
		assert.False(t, h.Records[0].InProgress())
	}

	var buf bytes.Buffer
	require.NoError(t, f.svc.PrintParkingHistory(ctx, plate, &buf))

	out := buf.String()
	assert.Contains(t, out, centre.String()+"\n")
	assert.Contains(t, out, gare.String()+"\n")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestParkingService_QueriesUnknownCar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.IsParked(ctx, "ZZ-999-ZZ")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.VisitedGarages(ctx, "ZZ-999-ZZ")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.ParkingHistory(ctx, "ZZ-999-ZZ")
	assert.True(t, domain.IsNotFound(err))

	err = f.svc.PrintParkingHistory(ctx, "ZZ-999-ZZ", &bytes.Buffer{})
	assert.True(t, domain.IsNotFound(err))
}

func TestParkingService_EventsFlag(t *testing.T) {
	flags := mocks.NewMockFeatureFlags(t)
	flags.EXPECT().IsEnabled(mock.Anything, ports.FlagParkingEvents, true).Return(false)

	publisher := mocks.NewMockEventPublisher(t)

	svc := NewParkingService(ParkingServiceDeps{
		Cars:      memory.NewCarRepository(),
		Garages:   memory.NewGarageRepository(centre),
		Publisher: publisher,
		Flags:     flags,
	}, testConfig())

	_, err := svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	_, err = svc.EnterGarage(context.Background(), "AB-123-CD", centre.ID)

	require.NoError(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestParkingService_PublishFailureDoesNotFailOperation(t *testing.T) {
	publisher := mocks.NewMockEventPublisher(t)
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Return(domain.NewUnavailableError("broker", "down")).Once()

	cars := memory.NewCarRepository()
	svc := NewParkingService(ParkingServiceDeps{
		Cars:      cars,
		Garages:   memory.NewGarageRepository(centre),
		Publisher: publisher,
	}, testConfig())

	_, err := svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	_, err = svc.EnterGarage(context.Background(), "AB-123-CD", centre.ID)
	require.NoError(t, err)

	parked, err := svc.IsParked(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.True(t, parked)
}

func TestParkingService_ArchiveFailure(t *testing.T) {
	car, err := domain.NewCar("AB-123-CD")
	require.NoError(t, err)

	cars := mocks.NewMockCarRepository(t)
	cars.EXPECT().Get(mock.Anything, "AB-123-CD").Return(car, nil)
	cars.EXPECT().Save(mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewParkingService(ParkingServiceDeps{
		Cars:    cars,
		Garages: memory.NewGarageRepository(centre),
	}, testConfig())

	_, err = svc.EnterGarage(context.Background(), "AB-123-CD", centre.ID)

	require.Error(t, err)

	step, ok := GetExecutionStep(err)
	require.True(t, ok)
	assert.Equal(t, StepArchive, step)
}

// cancelOnSave cancels the request right after the car is saved.
type cancelOnSave struct {
	*memory.CarRepository
	cancel context.CancelFunc
}

func (r cancelOnSave) Save(ctx context.Context, car *domain.Car) error {
	err := r.CarRepository.Save(ctx, car)
	r.cancel()

	return err
}

func TestParkingService_EnterGarage_RequestEndsAfterSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := events.NewRecorder()
	metrics := mocks.NewMockParkingMetrics(t)
	metrics.EXPECT().RecordEntry(centre).Return().Once()

	cars := memory.NewCarRepository()
	svc := NewParkingService(ParkingServiceDeps{
		Cars:      cancelOnSave{CarRepository: cars, cancel: cancel},
		Garages:   memory.NewGarageRepository(centre),
		Publisher: recorder,
		Metrics:   metrics,
	}, testConfig())

	_, err := svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	record, err := svc.EnterGarage(ctx, "AB-123-CD", centre.ID)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.InProgress())
	require.ErrorIs(t, ctx.Err(), context.Canceled)

	published := recorder.Events()
	require.Len(t, published, 1, "the saved change is still announced")

	event, ok := published[0].(ports.ParkingEvent)
	require.True(t, ok)
	assert.Equal(t, ports.EventCarEntered, event.Type)
	assert.Equal(t, record.ID, event.RecordID)

	parked, err := svc.IsParked(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.True(t, parked)
}

func TestParkingService_LockWaitHonoursDeadline(t *testing.T) {
	svc := NewParkingService(ParkingServiceDeps{
		Cars:    memory.NewCarRepository(),
		Garages: memory.NewGarageRepository(centre),
	}, testConfig())

	_, err := svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	unlock, err := svc.locks.Lock(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.EnterGarage(ctx, "AB-123-CD", centre.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = svc.LeaveGarage(ctx, "AB-123-CD")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	parked, err := svc.IsParked(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.False(t, parked)
}

func TestParkingService_ConcurrentEnter(t *testing.T) {
	svc := NewParkingService(ParkingServiceDeps{
		Cars:    memory.NewCarRepository(),
		Garages: memory.NewGarageRepository(centre, gare),
	}, &ServiceConfig{Logger: discardLogger()})

	_, err := svc.RegisterCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)

	const workers = 32

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)

	for i := range workers {
		garageID := centre.ID
		if i%2 == 1 {
			garageID = gare.ID
		}

		wg.Go(func() {
			_, err := svc.EnterGarage(context.Background(), "AB-123-CD", garageID)

			switch {
			case err == nil:
				succeeded.Add(1)
			case domain.IsInvalidState(err):
				rejected.Add(1)
			}
		})
	}

	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())

	car, err := svc.GetCar(context.Background(), "AB-123-CD")
	require.NoError(t, err)
	assert.Len(t, car.Records(), 1)
	assert.Zero(t, svc.locks.Len())
}
