package ocel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// utcPtr builds a history timestamp pointer.
func utcPtr(t time.Time) *time.Time {
	u := t.UTC().Truncate(time.Millisecond)
	return &u
}

func TestValueEqualAcrossOffsets(t *testing.T) {
	utc := Timestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	cet := Timestamp(time.Date(2024, 3, 1, 11, 0, 0, 0, time.FixedZone("CET", 3600)))
	assert.True(t, ValueEqual(utc, cet), "same instant, different offsets")
}

func TestValueEqualKindMismatch(t *testing.T) {
	assert.False(t, ValueEqual(Int(1), Float(1)))
	assert.False(t, ValueEqual(String("true"), Bool(true)))
}

func TestValueEqualNested(t *testing.T) {
	a := Map{"l": List{Int(1), String("x")}}
	b := Map{"l": List{Int(1), String("x")}}
	c := Map{"l": List{Int(1), String("y")}}
	assert.True(t, ValueEqual(a, b))
	assert.False(t, ValueEqual(a, c))
}

func TestEventEqual(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := NewEvent("e1", "pay", ts)
	a.AddRef("o1")
	a.Attributes["total"] = Float(12.5)

	b := NewEvent("e1", "pay", ts)
	b.AddRef("o1")
	b.Attributes["total"] = Float(12.5)
	assert.True(t, EventEqual(a, b))

	b.AddRef("o2")
	assert.False(t, EventEqual(a, b))
}

func TestObjectEqualHistoryOrderMatters(t *testing.T) {
	a := NewObject("o1", "order")
	a.Append("status", String("open"), nil)
	a.Append("status", String("closed"), nil)

	b := NewObject("o1", "order")
	b.Append("status", String("closed"), nil)
	b.Append("status", String("open"), nil)

	assert.False(t, ObjectEqual(a, b), "history is ordered, not a set")
}

func TestLogEqual(t *testing.T) {
	buildLog := func() *Log {
		log := NewLog()
		log.EventAttrs["total"] = KindFloat
		log.Globals["version"] = String("1.0")
		e := NewEvent("e1", "pay", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		e.Attributes["total"] = Float(12.5)
		e.AddRef("o1")
		log.AddEvent(e)
		o := NewObject("o1", "order")
		o.Append("status", String("open"), utcPtr(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
		log.AddObject(o)
		return log
	}

	assert.True(t, Equal(buildLog(), buildLog()))

	changed := buildLog()
	changed.Objects["o1"].Type = "invoice"
	assert.False(t, Equal(buildLog(), changed))
}

func TestCloneIsolatesContainers(t *testing.T) {
	log := NewLog()
	log.AddEvent(NewEvent("e1", "pay", time.Now()))
	log.Globals["version"] = String("1.0")

	clone := log.Clone()
	delete(clone.Events, "e1")
	clone.Globals["version"] = String("2.0")

	assert.Contains(t, log.Events, "e1")
	assert.True(t, ValueEqual(String("1.0"), log.Globals["version"]))
}
