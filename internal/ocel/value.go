package ocel

import (
	"time"
)

// Kind names a value variant. Declaration tables map attribute names to the
// Kind every occurrence of that attribute must carry.
type Kind string

const (
	KindString    Kind = "string"
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindBool      Kind = "bool"
	KindTimestamp Kind = "timestamp"
	KindList      Kind = "list"
	KindMap       Kind = "map"
)

// ValidKind reports whether k is one of the seven value kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindTimestamp, KindList, KindMap:
		return true
	}
	return false
}

// Value is a sealed interface representing attribute values.
// Only String, Int, Float, Bool, Timestamp, List, and Map implement it.
// Values are trees: List and Map elements recurse finitely, never cyclically.
type Value interface {
	ocelValue() // Sealed - only these types implement it
	Kind() Kind
}

// String is a string attribute value.
type String string

func (String) ocelValue() {}

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// Int is a 64-bit signed integer attribute value.
type Int int64

func (Int) ocelValue() {}

// Kind returns KindInt.
func (Int) Kind() Kind { return KindInt }

// Float is a 64-bit floating point attribute value.
type Float float64

func (Float) ocelValue() {}

// Kind returns KindFloat.
func (Float) Kind() Kind { return KindFloat }

// Bool is a boolean attribute value.
type Bool bool

func (Bool) ocelValue() {}

// Kind returns KindBool.
func (Bool) Kind() Kind { return KindBool }

// Timestamp is a timezone-aware instant with millisecond precision.
// Construct with NewTimestamp to enforce the precision invariant.
type Timestamp time.Time

func (Timestamp) ocelValue() {}

// Kind returns KindTimestamp.
func (Timestamp) Kind() Kind { return KindTimestamp }

// Time returns the underlying time.Time.
func (ts Timestamp) Time() time.Time { return time.Time(ts) }

// NewTimestamp creates a Timestamp truncated to millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Truncate(time.Millisecond))
}

// List is an ordered sequence of values.
type List []Value

func (List) ocelValue() {}

// Kind returns KindList.
func (List) Kind() Kind { return KindList }

// Map maps string keys to values. Use SortedKeys for deterministic iteration.
type Map map[string]Value

func (Map) ocelValue() {}

// Kind returns KindMap.
func (Map) Kind() Kind { return KindMap }

// SortedKeys returns the map's keys in lexicographic byte order.
func (m Map) SortedKeys() []string {
	return sortedKeys(m)
}

// TimeLayout is the wire format for timestamps: RFC 3339 with a mandatory
// millisecond fraction, offset preserved.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in the wire format.
func FormatTime(t time.Time) string {
	return t.Truncate(time.Millisecond).Format(TimeLayout)
}

// ParseTime parses an RFC 3339 literal, truncating to millisecond precision.
// Accepts any RFC 3339 fraction on input; output precision is always ms.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Millisecond), nil
}
