package dates

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseable is matched by every ParseError.
var ErrUnparseable = errors.New("dates: unparseable value")

// maxEpochMillis bounds numeric epochs to the range a calendar date can take
// (±100,000,000 days around 1970).
const maxEpochMillis = 8.64e15

const maxEpochSeconds = maxEpochMillis / 1000

// ISO-8601 layouts tried before the locale-agnostic fallback.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseError reports a value that could not be normalized. Raw is the value
// exactly as it was read.
type ParseError struct {
	Raw    any
	Kind   Kind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dates: cannot normalize %s value %#v: %s", e.Kind, e.Raw, e.Reason)
}

// Is makes errors.Is(err, ErrUnparseable) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrUnparseable
}

// Normalize converts v into a UTC instant. It never falls back to the current
// time: anything it cannot interpret is returned as a *ParseError.
func Normalize(v Value) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = time.Time{}, fail(v, fmt.Sprintf("conversion panicked: %v", r))
		}
	}()

	switch v.kind {
	case KindAbsent:
		return time.Time{}, fail(v, "value is absent")
	case KindTimestamp:
		return normalizeTimestamp(v)
	case KindNative:
		if v.native.IsZero() {
			return time.Time{}, fail(v, "zero time")
		}
		return v.native.UTC(), nil
	case KindString:
		return normalizeString(v)
	case KindNumeric:
		return normalizeMillis(v)
	case KindInvalid:
		return time.Time{}, fail(v, fmt.Sprintf("unsupported type %T", v.raw))
	default:
		return time.Time{}, fail(v, "unknown representation")
	}
}

func normalizeTimestamp(v Value) (time.Time, error) {
	if checker, ok := v.ts.(interface{ Valid() bool }); ok && !checker.Valid() {
		return time.Time{}, fail(v, "timestamp out of range")
	}
	t := v.ts.Time()
	if t.IsZero() {
		return time.Time{}, fail(v, "timestamp converted to zero time")
	}
	return t.UTC(), nil
}

func normalizeString(v Value) (time.Time, error) {
	s := strings.TrimSpace(v.str)
	if s == "" {
		return time.Time{}, fail(v, "empty string")
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return nonZero(v, parsed)
		}
	}
	if isDigits(s) {
		return time.Time{}, fail(v, "bare digits are not a calendar date")
	}
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fail(v, err.Error())
	}
	return nonZero(v, parsed)
}

// nonZero rejects the zero instant, which stores write for an unset date.
func nonZero(v Value, t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fail(v, "zero time")
	}
	return t.UTC(), nil
}

func normalizeMillis(v Value) (time.Time, error) {
	ms := v.num
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fail(v, "not a finite number")
	}
	if math.Abs(ms) > maxEpochMillis {
		return time.Time{}, fail(v, "epoch out of range")
	}
	return nonZero(v, time.UnixMilli(int64(math.Trunc(ms))))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func fail(v Value, reason string) *ParseError {
	return &ParseError{Raw: v.raw, Kind: v.kind, Reason: reason}
}
