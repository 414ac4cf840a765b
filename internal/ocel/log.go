package ocel

import (
	"sort"
	"time"
)

// Event is a timestamped occurrence of an activity.
// ID is unique within a log. ObjectRefs is a set of object ids; entries
// should reference objects present in the same log, but dangling ids are a
// repairable condition, not a construction error.
type Event struct {
	ID         string
	Activity   string
	Timestamp  time.Time
	Attributes map[string]Value
	ObjectRefs map[string]struct{}
}

// NewEvent creates an event with initialized maps.
func NewEvent(id, activity string, ts time.Time) *Event {
	return &Event{
		ID:         id,
		Activity:   activity,
		Timestamp:  ts.Truncate(time.Millisecond),
		Attributes: map[string]Value{},
		ObjectRefs: map[string]struct{}{},
	}
}

// AddRef records a reference to an object id. Duplicates are a no-op.
func (e *Event) AddRef(objectID string) {
	e.ObjectRefs[objectID] = struct{}{}
}

// SortedRefs returns the referenced object ids in lexicographic order.
func (e *Event) SortedRefs() []string {
	refs := make([]string, 0, len(e.ObjectRefs))
	for id := range e.ObjectRefs {
		refs = append(refs, id)
	}
	sort.Strings(refs)
	return refs
}

// AttrEntry is one step of an object's time-varying attribute history.
// Time is nil when the assignment carries no timestamp. History order is
// assignment order, not necessarily chronological.
type AttrEntry struct {
	Value Value
	Time  *time.Time
}

// Object is a persistent entity with a type and an attribute history.
// ID is unique within a log.
type Object struct {
	ID         string
	Type       string
	Attributes map[string][]AttrEntry
}

// NewObject creates an object with an initialized attribute map.
func NewObject(id, typ string) *Object {
	return &Object{
		ID:         id,
		Type:       typ,
		Attributes: map[string][]AttrEntry{},
	}
}

// Append adds a history entry for the named attribute.
func (o *Object) Append(name string, v Value, t *time.Time) {
	if t != nil {
		trunc := t.Truncate(time.Millisecond)
		t = &trunc
	}
	o.Attributes[name] = append(o.Attributes[name], AttrEntry{Value: v, Time: t})
}

// Declarations maps attribute names to their declared kind for one
// namespace. The event and object namespaces are independent: the same name
// may be declared with different kinds in each.
type Declarations map[string]Kind

// SortedNames returns declared names in lexicographic order.
func (d Declarations) SortedNames() []string {
	return sortedKeys(d)
}

// clone returns a copy of the table.
func (d Declarations) clone() Declarations {
	c := make(Declarations, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Log is the log container. The declaration tables are consulted only by
// codecs that require declared kinds (XML); JSON and the embedded store
// infer kinds per occurrence and may leave the tables sparse.
type Log struct {
	Events      map[string]*Event
	Objects     map[string]*Object
	EventAttrs  Declarations
	ObjectAttrs Declarations
	Globals     map[string]Value
}

// NewLog creates an empty log with initialized maps.
func NewLog() *Log {
	return &Log{
		Events:      map[string]*Event{},
		Objects:     map[string]*Object{},
		EventAttrs:  Declarations{},
		ObjectAttrs: Declarations{},
		Globals:     map[string]Value{},
	}
}

// AddEvent inserts an event keyed by its id, replacing any previous entry.
func (l *Log) AddEvent(e *Event) {
	l.Events[e.ID] = e
}

// AddObject inserts an object keyed by its id, replacing any previous entry.
func (l *Log) AddObject(o *Object) {
	l.Objects[o.ID] = o
}

// EventIDs returns event ids in lexicographic order.
func (l *Log) EventIDs() []string {
	return sortedKeys(l.Events)
}

// ObjectIDs returns object ids in lexicographic order.
func (l *Log) ObjectIDs() []string {
	return sortedKeys(l.Objects)
}

// Clone returns a log with fresh container maps. Events and objects are
// shared; transforming operations copy the individual entries they change.
func (l *Log) Clone() *Log {
	c := &Log{
		Events:      make(map[string]*Event, len(l.Events)),
		Objects:     make(map[string]*Object, len(l.Objects)),
		EventAttrs:  l.EventAttrs.clone(),
		ObjectAttrs: l.ObjectAttrs.clone(),
		Globals:     make(map[string]Value, len(l.Globals)),
	}
	for id, e := range l.Events {
		c.Events[id] = e
	}
	for id, o := range l.Objects {
		c.Objects[id] = o
	}
	for k, v := range l.Globals {
		c.Globals[k] = v
	}
	return c
}

// sortedKeys returns the keys of a string-keyed map in lexicographic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
