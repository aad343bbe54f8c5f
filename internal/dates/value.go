// Package dates converts the date representations found in catalog documents
// into a single canonical instant.
package dates

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies which representation a Value carries.
type Kind int

const (
	KindAbsent Kind = iota
	KindTimestamp
	KindNative
	KindString
	KindNumeric
	// KindInvalid holds a raw value whose shape matched none of the above.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindTimestamp:
		return "timestamp"
	case KindNative:
		return "native"
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a raw date field as it was read from a document. The zero Value is
// absent.
type Value struct {
	kind   Kind
	ts     Timestamp
	native time.Time
	str    string
	num    float64
	raw    any
}

// Absent returns a Value for a missing field.
func Absent() Value { return Value{} }

// FromTimestamp wraps a store-native timestamp.
func FromTimestamp(ts Timestamp) Value {
	if ts == nil {
		return Absent()
	}
	return Value{kind: KindTimestamp, ts: ts, raw: ts}
}

// FromTime wraps an already-decoded instant.
func FromTime(t time.Time) Value {
	return Value{kind: KindNative, native: t, raw: t}
}

// FromString wraps a textual date.
func FromString(s string) Value {
	return Value{kind: KindString, str: s, raw: s}
}

// FromMillis wraps a numeric epoch expressed in milliseconds.
func FromMillis(ms float64) Value {
	return Value{kind: KindNumeric, num: ms, raw: ms}
}

func invalid(raw any) Value {
	return Value{kind: KindInvalid, raw: raw}
}

// FromAny classifies a decoded document value (JSON, JSONB, YAML or driver
// types) into a Value.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Absent()
	case Value:
		return val
	case Timestamp:
		return FromTimestamp(val)
	case time.Time:
		return FromTime(val)
	case *time.Time:
		if val == nil {
			return Absent()
		}
		return FromTime(*val)
	case string:
		return FromString(val)
	case *string:
		if val == nil {
			return Absent()
		}
		return FromString(*val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return invalid(v)
		}
		return Value{kind: KindNumeric, num: f, raw: v}
	case float64:
		return Value{kind: KindNumeric, num: val, raw: v}
	case float32:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case int:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case int32:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case int64:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case uint:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case uint32:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case uint64:
		return Value{kind: KindNumeric, num: float64(val), raw: v}
	case map[string]any:
		ts, ok := timestampFromMap(val)
		if !ok {
			return invalid(v)
		}
		return Value{kind: KindTimestamp, ts: ts, raw: v}
	default:
		return invalid(v)
	}
}

// Kind reports the representation carried by v.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the original value as it was read, for diagnostics.
func (v Value) Raw() any { return v.raw }

// IsAbsent reports whether the field was missing.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }
