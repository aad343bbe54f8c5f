package dates

import (
	"encoding/json"
	"math"
	"time"
)

// Timestamp is a store-native timestamp object that knows how to convert
// itself into an instant.
type Timestamp interface {
	Time() time.Time
}

// StoreTimestamp is the serialized timestamp shape used by the hosted
// document store: whole seconds since the epoch plus a nanosecond remainder.
type StoreTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// Time implements Timestamp.
func (t StoreTimestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// Valid reports whether the nanosecond remainder is in range.
func (t StoreTimestamp) Valid() bool {
	return t.Nanoseconds >= 0 && t.Nanoseconds < 1e9
}

// NewStoreTimestamp converts an instant into the store's timestamp shape.
func NewStoreTimestamp(t time.Time) StoreTimestamp {
	return StoreTimestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// timestampFromMap recognizes {seconds, nanoseconds} and the admin-SDK
// variant {_seconds, _nanoseconds}. The nanosecond part may be omitted.
func timestampFromMap(m map[string]any) (StoreTimestamp, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		rawSecs, ok := m[keys[0]]
		if !ok {
			continue
		}
		secs, ok := wholeNumber(rawSecs)
		if !ok {
			return StoreTimestamp{}, false
		}
		var nanos int64
		if rawNanos, ok := m[keys[1]]; ok {
			nanos, ok = wholeNumber(rawNanos)
			if !ok || nanos < 0 || nanos >= 1e9 {
				return StoreTimestamp{}, false
			}
		}
		for k := range m {
			if k != keys[0] && k != keys[1] {
				return StoreTimestamp{}, false
			}
		}
		return StoreTimestamp{Seconds: secs, Nanoseconds: int32(nanos)}, true
	}
	return StoreTimestamp{}, false
}

func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > maxEpochSeconds {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
