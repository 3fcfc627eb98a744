package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLapTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0:00.000"},
		{"minute and a half second", 65.5, "1:05.500"},
		{"typical lap", 90.123, "1:30.123"},
		{"sub minute", 59.9, "0:59.900"},
		{"tiny fraction", 0.0004, "0:00.000"},
		{"rounds up to next minute", 59.9996, "1:00.000"},
		{"multiple minutes", 605.007, "10:05.007"},
		{"exactly one minute", 60, "1:00.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LapTime(tt.seconds))
		})
	}
}

func TestLapTime_InvalidInput(t *testing.T) {
	t.Parallel()
	for _, v := range []float64{-1, -0.001, math.NaN(), math.Inf(1), math.Inf(-1), 1e300} {
		assert.Equal(t, Placeholder, LapTime(v), "input %v", v)
	}
}

func TestParseLapTime(t *testing.T) {
	t.Parallel()

	got, err := ParseLapTime("1:30.123")
	require.NoError(t, err)
	assert.InDelta(t, 90.123, got, 1e-9)

	got, err = ParseLapTime("59.001")
	require.NoError(t, err)
	assert.InDelta(t, 59.001, got, 1e-9)

	got, err = ParseLapTime(" 10:05.007 ")
	require.NoError(t, err)
	assert.InDelta(t, 605.007, got, 1e-9)
}

func TestParseLapTime_Invalid(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "--", "abc", "1:xx.000", "-1:10.000", "1:75.000", "x:10.0"} {
		_, err := ParseLapTime(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseLapTime_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"1:30.123", "0:59.900", "2:01.000"} {
		v, err := ParseLapTime(s)
		require.NoError(t, err)
		assert.Equal(t, s, LapTime(v))
	}
}

func TestWeatherFormatting(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "41.3°C", Temperature(41.26))
	assert.Equal(t, "-2.0°C", Temperature(-2))
	assert.Equal(t, Placeholder, Temperature(math.NaN()))
	assert.Equal(t, "55.0%", Percent(55))
	assert.Equal(t, Placeholder, Percent(-1))
}

func TestLaps(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "57 Laps", Laps(57))
	assert.Equal(t, Placeholder, Laps(0))
}
