package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeriesKey(t *testing.T) {
	assert.Equal(t, "timeseries:0:iron-ingot", timeSeriesKey(0, "iron-ingot"))
	assert.Equal(t, "timeseries:3:circuit-board", timeSeriesKey(3, "circuit-board"))
}

func TestParseRateSample(t *testing.T) {
	t.Run("should decode an epoch and rate member", func(t *testing.T) {
		sample, ok := parseRateSample("1700000000:30.5")
		require.True(t, ok)
		assert.Equal(t, int64(1700000000), sample.Timestamp)
		assert.InDelta(t, 30.5, sample.NetRate, 1e-9)
	})

	t.Run("should decode negative rates", func(t *testing.T) {
		sample, ok := parseRateSample("1700000000:-2")
		require.True(t, ok)
		assert.InDelta(t, -2.0, sample.NetRate, 1e-9)
	})

	t.Run("should reject malformed members", func(t *testing.T) {
		for _, member := range []string{"", "1700000000", "abc:1.5", "1700000000:x"} {
			_, ok := parseRateSample(member)
			assert.False(t, ok, "member %q", member)
		}
	})
}
