package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricNames(t *testing.T) {
	ObserveQuery(ResultOK, 2, time.Millisecond)
	ObserveDefine(ResultOK)

	for _, name := range []string{
		"shapley_queries_total",
		"shapley_query_duration_seconds",
		"shapley_query_base_players",
		"shapley_games_defined_total",
		"shapley_rooms_active",
	} {
		n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, name)
		require.NoError(t, err, name)
		assert.Positive(t, n, name)
	}
}

func TestObserveQueryCountsByResult(t *testing.T) {
	before := testutil.ToFloat64(queriesTotal.WithLabelValues(ResultMissing))
	ObserveQuery(ResultMissing, 3, time.Millisecond)
	ObserveQuery(ResultMissing, 3, time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(queriesTotal.WithLabelValues(ResultMissing)))
}

func TestObserveDefine(t *testing.T) {
	before := testutil.ToFloat64(gamesDefined.WithLabelValues(ResultOK))
	ObserveDefine(ResultOK)
	assert.Equal(t, before+1, testutil.ToFloat64(gamesDefined.WithLabelValues(ResultOK)))
}

func TestRoomGauge(t *testing.T) {
	before := testutil.ToFloat64(roomsActive)
	RoomOpened()
	RoomOpened()
	RoomClosed()
	assert.Equal(t, before+1, testutil.ToFloat64(roomsActive))
	RoomClosed()
}
