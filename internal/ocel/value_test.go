package ocel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify all variants implement Value (compile-time check via assignment)
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(3.14)
	var _ Value = Bool(true)
	var _ Value = NewTimestamp(time.Now())
	var _ Value = List{String("a"), Int(1)}
	var _ Value = Map{"key": String("value")}
}

func TestValueKinds(t *testing.T) {
	cases := []struct {
		value Value
		kind  Kind
	}{
		{String("s"), KindString},
		{Int(1), KindInt},
		{Float(1.5), KindFloat},
		{Bool(false), KindBool},
		{NewTimestamp(time.Now()), KindTimestamp},
		{List{}, KindList},
		{Map{}, KindMap},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.value.Kind())
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []Kind{KindString, KindInt, KindFloat, KindBool, KindTimestamp, KindList, KindMap} {
		assert.True(t, ValidKind(k), "kind %q", k)
	}
	assert.False(t, ValidKind(Kind("decimal")))
	assert.False(t, ValidKind(Kind("")))
}

func TestNewTimestampTruncatesToMillis(t *testing.T) {
	fine := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	ts := NewTimestamp(fine)
	assert.Equal(t, 123000000, ts.Time().Nanosecond())
}

func TestFormatTimeAlwaysCarriesMillis(t *testing.T) {
	whole := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T10:00:00.000Z", FormatTime(whole))
}

func TestFormatTimePreservesOffset(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 500000000, zone)
	assert.Equal(t, "2024-03-01T10:00:00.500+01:00", FormatTime(ts))
}

func TestParseTimeRoundTrip(t *testing.T) {
	parsed, err := ParseTime("2024-03-01T10:00:00.250+01:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:00:00.250+01:00", FormatTime(parsed))
}

func TestParseTimeTruncatesFinerFractions(t *testing.T) {
	parsed, err := ParseTime("2024-03-01T10:00:00.123456789Z")
	require.NoError(t, err)
	assert.Equal(t, 123000000, parsed.Nanosecond())
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := ParseTime("yesterday around noon")
	assert.Error(t, err)
}

func TestMapSortedKeys(t *testing.T) {
	m := Map{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, m.SortedKeys())
}

func TestSortedRefs(t *testing.T) {
	e := NewEvent("e1", "pay", time.Now())
	e.AddRef("o2")
	e.AddRef("o1")
	e.AddRef("o2") // duplicate is a no-op
	assert.Equal(t, []string{"o1", "o2"}, e.SortedRefs())
}
