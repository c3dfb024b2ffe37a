package openagenda_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewPedanticRegistry()

	metrics, err := openagenda.NewMetrics(registry)
	require.NoError(t, err)

	metrics.ObserveRequest("GET", 200, 10*time.Millisecond)
	metrics.ObserveRequest("GET", 200, 20*time.Millisecond)
	metrics.ObserveRequest("POST", 0, time.Millisecond)
	metrics.TokenRequested(true)
	metrics.TokenRequested(false)
	metrics.CacheLookup(true)

	count, err := testutil.GatherAndCount(registry, "openagenda_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(registry, "openagenda_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(registry, "openagenda_token_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(registry, "openagenda_token_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Registering twice collides.
	_, err = openagenda.NewMetrics(registry)
	require.Error(t, err)
}

func TestMetrics_Unregistered(t *testing.T) {
	t.Parallel()

	metrics, err := openagenda.NewMetrics(nil)
	require.NoError(t, err)
	assert.Len(t, metrics.Collectors(), 4)

	var none *openagenda.Metrics

	assert.NotPanics(t, func() {
		none.ObserveRequest("GET", 200, time.Second)
		none.TokenRequested(true)
		none.CacheLookup(false)
	})
}
