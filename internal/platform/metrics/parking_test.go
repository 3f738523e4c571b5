package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/garage-service/internal/domain"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	parked := 2
	c := NewCollector(reg, func() int { return parked })

	centre := domain.Garage{ID: "g-1", Name: "Centre"}
	gare := domain.Garage{ID: "g-2", Name: "Gare"}

	c.RecordEntry(centre)
	c.RecordEntry(centre)
	c.RecordEntry(gare)
	c.RecordExit(centre, 90*time.Minute)
	c.RecordRejected("enter")
	c.RecordRejected("enter")
	c.RecordRejected("leave")

	assert.InDelta(t, 2, testutil.ToFloat64(c.entries.WithLabelValues("g-1")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.entries.WithLabelValues("g-2")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.exits.WithLabelValues("g-1")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.rejected.WithLabelValues("enter")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.rejected.WithLabelValues("leave")), 0)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP garage_cars_parked Cars currently in a garage.
# TYPE garage_cars_parked gauge
garage_cars_parked 2
`), "garage_cars_parked")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "garage_parking_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_WithoutParkedGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, nil)
	c.RecordEntry(domain.Garage{ID: "g-1"})

	count, err := testutil.GatherAndCount(reg, "garage_cars_parked")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg, nil)

	assert.Panics(t, func() { NewCollector(reg, nil) })
}
