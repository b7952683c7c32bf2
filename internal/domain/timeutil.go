package domain

import (
	"math"
	"time"

	"github.com/pausememo/pausememo/internal/errors"
)

// ISOLayout is the wire format for timestamps: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// maxWholeMinutes is the largest minute offset a time.Duration can hold.
const maxWholeMinutes = math.MaxInt64 / int64(time.Minute)

// maxAbsMinutes keeps minute offsets inside time.Duration's range.
const maxAbsMinutes = float64(maxWholeMinutes)

// AddMinutes adds minutes to an ISO-8601 timestamp and returns the result in
// ISOLayout. Fractional minutes are honored.
func AddMinutes(base string, minutes float64) (string, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "", errors.InvalidArgumentf("invalid minutes: %v", minutes)
	}
	if math.Abs(minutes) > maxAbsMinutes {
		return "", errors.InvalidArgumentf("minutes out of range: %v", minutes)
	}

	t, err := ParseTimestamp(base)
	if err != nil {
		return "", err
	}

	d := time.Duration(minutes * float64(time.Minute))
	return FormatTimestamp(t.Add(d)), nil
}

// AddMinutesTime adds whole minutes to t. minutes must be within
// ±maxWholeMinutes; NewInterruptionEvent enforces that.
func AddMinutesTime(t time.Time, minutes int) time.Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}

// ParseTimestamp parses an RFC 3339 timestamp (with or without fractional seconds).
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.InvalidArgumentf("invalid timestamp: %q", s).WithCause(err)
	}
	return t, nil
}

// FormatTimestamp renders t in ISOLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// normalizeTime strips the monotonic reading and location so persisted
// values compare equal after a JSON round trip.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Round(0)
}
