package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

func logWithDangling() *ocel.Log {
	log := ocel.NewLog()

	e1 := ocel.NewEvent("e1", "pay", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	e1.AddRef("o1")
	e1.AddRef("missing")
	log.AddEvent(e1)

	e2 := ocel.NewEvent("e2", "ship", time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
	e2.AddRef("o1")
	log.AddEvent(e2)

	log.AddObject(ocel.NewObject("o1", "order"))
	return log
}

func TestCheckReferencesFindsDangling(t *testing.T) {
	dangling := CheckReferences(logWithDangling())
	require.Len(t, dangling, 1)
	assert.Equal(t, DanglingRef{EventID: "e1", ObjectID: "missing"}, dangling[0])
}

func TestCheckReferencesCleanLog(t *testing.T) {
	log := logWithDangling()
	log.AddObject(ocel.NewObject("missing", "order"))
	assert.Empty(t, CheckReferences(log))
}

func TestCheckReferencesSortedOutput(t *testing.T) {
	log := ocel.NewLog()
	e := ocel.NewEvent("e1", "pay", time.Now())
	e.AddRef("z")
	e.AddRef("a")
	log.AddEvent(e)

	dangling := CheckReferences(log)
	require.Len(t, dangling, 2)
	assert.Equal(t, "a", dangling[0].ObjectID)
	assert.Equal(t, "z", dangling[1].ObjectID)
}

func TestRemoveUnknownObjectReferences(t *testing.T) {
	log := logWithDangling()
	repaired := RemoveUnknownObjectReferences(log)

	_, stillThere := repaired.Events["e1"].ObjectRefs["missing"]
	assert.False(t, stillThere)
	_, kept := repaired.Events["e1"].ObjectRefs["o1"]
	assert.True(t, kept)

	// Events and objects are never deleted.
	assert.Len(t, repaired.Events, 2)
	assert.Len(t, repaired.Objects, 1)
}

func TestRemoveUnknownObjectReferencesDoesNotTouchInput(t *testing.T) {
	log := logWithDangling()
	_ = RemoveUnknownObjectReferences(log)

	_, stillThere := log.Events["e1"].ObjectRefs["missing"]
	assert.True(t, stillThere, "input log must remain unchanged")
}

func TestRemoveUnknownObjectReferencesIdempotent(t *testing.T) {
	once := RemoveUnknownObjectReferences(logWithDangling())
	twice := RemoveUnknownObjectReferences(once)
	assert.True(t, ocel.Equal(once, twice))
}

func TestRemoveUnknownObjectReferencesEmptyLog(t *testing.T) {
	repaired := RemoveUnknownObjectReferences(ocel.NewLog())
	assert.Empty(t, repaired.Events)
	assert.Empty(t, repaired.Objects)
}
