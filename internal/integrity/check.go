// Package integrity validates and repairs object references within a log.
//
// An event may reference object ids that are absent from the same log, for
// example after a partial export upstream. CheckReferences enumerates such
// dangling references; RemoveUnknownObjectReferences returns a repaired
// copy. Neither operation ever fails or deletes events or objects.
package integrity

import (
	"sort"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// DanglingRef identifies one object reference whose target id is absent
// from the log.
type DanglingRef struct {
	EventID  string
	ObjectID string
}

// CheckReferences enumerates every object reference whose target is absent
// from log.Objects. Pure function, no side effects; results are sorted by
// event id then object id for deterministic reporting.
func CheckReferences(log *ocel.Log) []DanglingRef {
	var dangling []DanglingRef
	for _, eventID := range log.EventIDs() {
		event := log.Events[eventID]
		for _, objectID := range event.SortedRefs() {
			if _, ok := log.Objects[objectID]; !ok {
				dangling = append(dangling, DanglingRef{EventID: eventID, ObjectID: objectID})
			}
		}
	}
	sort.Slice(dangling, func(i, j int) bool {
		if dangling[i].EventID != dangling[j].EventID {
			return dangling[i].EventID < dangling[j].EventID
		}
		return dangling[i].ObjectID < dangling[j].ObjectID
	})
	return dangling
}

// RemoveUnknownObjectReferences returns a new log identical to the input
// except that every event's reference set has dangling ids removed. Events
// and objects themselves are never deleted. Idempotent: applying it twice
// equals applying it once. The input log is not modified.
func RemoveUnknownObjectReferences(log *ocel.Log) *ocel.Log {
	repaired := log.Clone()
	for id, event := range repaired.Events {
		var unknown []string
		for objectID := range event.ObjectRefs {
			if _, ok := repaired.Objects[objectID]; !ok {
				unknown = append(unknown, objectID)
			}
		}
		if len(unknown) == 0 {
			continue
		}
		// Copy-on-write: only events that actually change are duplicated.
		cleaned := ocel.NewEvent(event.ID, event.Activity, event.Timestamp)
		for k, v := range event.Attributes {
			cleaned.Attributes[k] = v
		}
		for objectID := range event.ObjectRefs {
			if _, ok := repaired.Objects[objectID]; ok {
				cleaned.AddRef(objectID)
			}
		}
		repaired.Events[id] = cleaned
	}
	return repaired
}
