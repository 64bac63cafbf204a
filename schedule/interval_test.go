package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/cadence/errors"
)

func TestParseInterval(t *testing.T) {
	t.Run("accepts valid intervals", func(t *testing.T) {
		tests := []struct {
			input     string
			duration  time.Duration
			canonical string
		}{
			{"6h", 6 * time.Hour, "6h"},
			{"1h", time.Hour, "1h"},
			{"30m", 30 * time.Minute, "30m"},
			{"45s", 45 * time.Second, "45s"},
			{"90s", 90 * time.Second, "90s"},
			{"06h", 6 * time.Hour, "6h"}, // leading zeros normalized
			{"120m", 2 * time.Hour, "120m"},
		}

		for _, tt := range tests {
			iv, err := ParseInterval(tt.input)
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.duration, iv.Duration(), "input %q", tt.input)
			assert.Equal(t, tt.canonical, iv.String(), "input %q", tt.input)
		}
	})

	t.Run("rejects invalid intervals", func(t *testing.T) {
		invalid := []string{
			"",
			"h",
			"6",
			"6d",     // unknown unit
			"6H",     // uppercase
			"1h30m",  // compound
			"1.5h",   // fractional
			"-1h",    // negative
			"0h",     // zero
			"0s",     // zero
			"6h ",    // trailing space
			" 6h",    // leading space
			"6h6h",   // repeated
			"6hours", // trailing text
		}

		for _, input := range invalid {
			_, err := ParseInterval(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, errors.Is(err, errors.ErrInvalidIntervalFormat), "input %q", input)
		}
	})
}

func TestParseStartTime(t *testing.T) {
	t.Run("accepts valid times", func(t *testing.T) {
		tests := []struct {
			input     string
			canonical string
		}{
			{"00:00:00", "00:00:00"},
			{"02:30:00", "02:30:00"},
			{"23:59:59", "23:59:59"},
			{"24:00:00", "00:00:00"}, // normalized to midnight
		}

		for _, tt := range tests {
			clock, err := ParseStartTime(tt.input)
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.canonical, clock.String(), "input %q", tt.input)
		}
	})

	t.Run("rejects invalid times", func(t *testing.T) {
		invalid := []string{
			"",
			"24:00:01", // hour 24 only valid as exact midnight alias
			"25:00:00",
			"10:60:00",
			"10:00:60",
			"1:00:00", // must be two digits
			"10:00",
			"10:00:00:00",
			"aa:bb:cc",
			"10-00-00",
		}

		for _, input := range invalid {
			_, err := ParseStartTime(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, errors.Is(err, errors.ErrInvalidTimeFormat), "input %q", input)
		}
	})
}

func TestClockTimeOnDay(t *testing.T) {
	day := time.Date(2026, 3, 15, 18, 42, 7, 0, time.UTC)
	clock := ClockTime{Hour: 2, Minute: 30}

	at := clock.OnDay(day)
	assert.Equal(t, time.Date(2026, 3, 15, 2, 30, 0, 0, time.UTC), at)
}
