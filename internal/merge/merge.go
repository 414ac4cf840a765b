// Package merge combines ordered sequences of logs into one log.
//
// Merge folds left-to-right from an empty log. Duplicate event ids resolve
// last-write-wins for scalar fields with reference sets unioned; duplicate
// object ids concatenate attribute histories in fold order. Object type
// mismatches and declaration kind mismatches are fatal: identity properties
// cannot be resolved by overwrite. The fold is order-sensitive and makes no
// attempt to hide it - merging [A,B] and [B,A] may legitimately differ.
package merge

import (
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// Conflict subjects reported by ConflictError.
const (
	SubjectObjectType = "object type"
	SubjectEventAttr  = "event attribute declaration"
	SubjectObjectAttr = "object attribute declaration"
)

// ConflictError is a fatal merge conflict. It names the offending object id
// or attribute name and both disagreeing values; the merge that produced it
// returns no log.
type ConflictError struct {
	Subject string // one of the Subject constants
	ID      string // object id or attribute name
	Left    string
	Right   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict: %s for %q differs: %q vs %q", e.Subject, e.ID, e.Left, e.Right)
}

// Merge folds the given logs left-to-right into a single new log. The input
// order is the caller's resolution order: on duplicate event ids the later
// log's scalar fields win. Merge of a single log returns a semantically
// equal copy; merge of none returns an empty log. Inputs are not modified.
//
// Fatal conflicts (object type mismatch, declaration kind mismatch) abort
// the whole merge with a *ConflictError and no partial result.
func Merge(logs []*ocel.Log) (*ocel.Log, error) {
	acc := ocel.NewLog()
	for _, next := range logs {
		combined, err := combine(acc, next)
		if err != nil {
			return nil, err
		}
		acc = combined
	}
	return acc, nil
}

// combine merges accumulator a with the later log b into a new log.
func combine(a, b *ocel.Log) (*ocel.Log, error) {
	out := a.Clone()

	if err := unionDeclarations(out.EventAttrs, b.EventAttrs, SubjectEventAttr); err != nil {
		return nil, err
	}
	if err := unionDeclarations(out.ObjectAttrs, b.ObjectAttrs, SubjectObjectAttr); err != nil {
		return nil, err
	}

	// Objects first: a type mismatch must abort before any event policy is
	// applied, so no partially merged log escapes.
	for _, id := range b.ObjectIDs() {
		theirs := b.Objects[id]
		ours, ok := out.Objects[id]
		if !ok {
			out.Objects[id] = theirs
			continue
		}
		if ours.Type != theirs.Type {
			return nil, &ConflictError{Subject: SubjectObjectType, ID: id, Left: ours.Type, Right: theirs.Type}
		}
		out.Objects[id] = combineObjects(ours, theirs)
	}

	for _, id := range b.EventIDs() {
		theirs := b.Events[id]
		ours, ok := out.Events[id]
		if !ok {
			out.Events[id] = theirs
			continue
		}
		// Last-write-wins for activity, timestamp and attributes; the
		// reference sets are unioned so re-emitted events that only add
		// object references lose nothing.
		out.Events[id] = combineEvents(ours, theirs)
	}

	for k, v := range b.Globals {
		out.Globals[k] = v
	}
	return out, nil
}

// combineEvents takes scalar fields from the later event and unions both
// reference sets.
func combineEvents(earlier, later *ocel.Event) *ocel.Event {
	merged := ocel.NewEvent(later.ID, later.Activity, later.Timestamp)
	for k, v := range later.Attributes {
		merged.Attributes[k] = v
	}
	for id := range earlier.ObjectRefs {
		merged.AddRef(id)
	}
	for id := range later.ObjectRefs {
		merged.AddRef(id)
	}
	return merged
}

// combineObjects concatenates attribute histories earlier-then-later and
// collapses consecutive duplicate entries. Types are known equal here.
func combineObjects(earlier, later *ocel.Object) *ocel.Object {
	merged := ocel.NewObject(earlier.ID, earlier.Type)
	for name, hist := range earlier.Attributes {
		merged.Attributes[name] = appendHistory(nil, hist)
	}
	for name, hist := range later.Attributes {
		merged.Attributes[name] = appendHistory(merged.Attributes[name], hist)
	}
	return merged
}

// appendHistory appends entries to dst, skipping each entry equal to the
// one preceding it.
func appendHistory(dst []ocel.AttrEntry, entries []ocel.AttrEntry) []ocel.AttrEntry {
	for _, entry := range entries {
		if n := len(dst); n > 0 && ocel.EntryEqual(dst[n-1], entry) {
			continue
		}
		dst = append(dst, entry)
	}
	return dst
}

func unionDeclarations(dst, src ocel.Declarations, subject string) error {
	for _, name := range src.SortedNames() {
		kind := src[name]
		if existing, ok := dst[name]; ok && existing != kind {
			return &ConflictError{Subject: subject, ID: name, Left: string(existing), Right: string(kind)}
		}
		dst[name] = kind
	}
	return nil
}
