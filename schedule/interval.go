// Package schedule provides recurring script scheduling over a SQLite store.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/veldtlabs/cadence/errors"
)

// intervalPattern is the only accepted repeat interval shape: a positive
// integer immediately followed by a single unit letter. Anything else,
// including compound durations like "1h30m", is rejected.
var intervalPattern = regexp.MustCompile(`^(\d+)([hms])$`)

// Interval is a validated repeat interval
type Interval struct {
	Count int
	Unit  string // "h", "m" or "s"
}

// ParseInterval parses a repeat interval like "6h", "30m" or "45s".
func ParseInterval(s string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, errors.Wrapf(errors.ErrInvalidIntervalFormat, "%q (expected <number><h|m|s>, e.g. \"6h\")", s)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		// Digits that overflow int, e.g. "99999999999999999999h"
		return Interval{}, errors.Wrapf(errors.ErrInvalidIntervalFormat, "%q", s)
	}
	if count <= 0 {
		return Interval{}, errors.Wrapf(errors.ErrInvalidIntervalFormat, "%q (interval must be positive)", s)
	}

	return Interval{Count: count, Unit: m[2]}, nil
}

// Duration returns the interval as a time.Duration
func (i Interval) Duration() time.Duration {
	switch i.Unit {
	case "h":
		return time.Duration(i.Count) * time.Hour
	case "m":
		return time.Duration(i.Count) * time.Minute
	default:
		return time.Duration(i.Count) * time.Second
	}
}

// String returns the canonical form, normalizing leading zeros ("06h" -> "6h")
func (i Interval) String() string {
	return fmt.Sprintf("%d%s", i.Count, i.Unit)
}

// ClockTime is a validated time of day used as the phase anchor for a job
type ClockTime struct {
	Hour, Minute, Second int
}

var startTimePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// ParseStartTime parses an HH:MM:SS start time.
//
// "24:00:00" is accepted as an alias for midnight and normalized to
// "00:00:00"; any other use of hour 24 is invalid.
func ParseStartTime(s string) (ClockTime, error) {
	m := startTimePattern.FindStringSubmatch(s)
	if m == nil {
		return ClockTime{}, errors.Wrapf(errors.ErrInvalidTimeFormat, "%q (expected HH:MM:SS)", s)
	}

	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])

	if h == 24 && min == 0 && sec == 0 {
		return ClockTime{}, nil // midnight
	}

	if h > 23 || min > 59 || sec > 59 {
		return ClockTime{}, errors.Wrapf(errors.ErrInvalidTimeFormat, "%q", s)
	}

	return ClockTime{Hour: h, Minute: min, Second: sec}, nil
}

// String returns the canonical HH:MM:SS form
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// OnDay returns the instant at this clock time on the given day, in that
// day's location.
func (c ClockTime) OnDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, c.Second, 0, day.Location())
}
