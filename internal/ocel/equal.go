package ocel

// ValueEqual reports deep semantic equality of two values.
// Timestamps compare as instants (same moment, any offset representation).
func ValueEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case String:
		return av == b.(String)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case Bool:
		return av == b.(Bool)
	case Timestamp:
		return av.Time().Equal(b.(Timestamp).Time())
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !ValueEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EventEqual reports semantic equality: same id, activity, timestamp
// instant, attribute map, and reference set.
func EventEqual(a, b *Event) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Activity != b.Activity || !a.Timestamp.Equal(b.Timestamp) {
		return false
	}
	if !EventContentEqual(a, b) {
		return false
	}
	if len(a.ObjectRefs) != len(b.ObjectRefs) {
		return false
	}
	for id := range a.ObjectRefs {
		if _, ok := b.ObjectRefs[id]; !ok {
			return false
		}
	}
	return true
}

// EventContentEqual compares attribute maps only, ignoring identity,
// timestamp and references.
func EventContentEqual(a, b *Event) bool {
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, v := range a.Attributes {
		bv, ok := b.Attributes[k]
		if !ok || !ValueEqual(v, bv) {
			return false
		}
	}
	return true
}

// ObjectEqual reports semantic equality: same id, type, and full attribute
// history in stored order.
func ObjectEqual(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Type != b.Type || len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, ah := range a.Attributes {
		bh, ok := b.Attributes[k]
		if !ok || len(ah) != len(bh) {
			return false
		}
		for i := range ah {
			if !EntryEqual(ah[i], bh[i]) {
				return false
			}
		}
	}
	return true
}

// EntryEqual reports equality of one history entry, comparing the optional
// timestamps as instants.
func EntryEqual(a, b AttrEntry) bool {
	if !ValueEqual(a.Value, b.Value) {
		return false
	}
	if a.Time == nil || b.Time == nil {
		return a.Time == nil && b.Time == nil
	}
	return a.Time.Equal(*b.Time)
}

// Equal reports full semantic equality of two logs: map/set equality, not
// any serialization's byte equality.
func Equal(a, b *Log) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Events) != len(b.Events) || len(a.Objects) != len(b.Objects) {
		return false
	}
	for id, e := range a.Events {
		if !EventEqual(e, b.Events[id]) {
			return false
		}
	}
	for id, o := range a.Objects {
		if !ObjectEqual(o, b.Objects[id]) {
			return false
		}
	}
	if !declarationsEqual(a.EventAttrs, b.EventAttrs) || !declarationsEqual(a.ObjectAttrs, b.ObjectAttrs) {
		return false
	}
	if len(a.Globals) != len(b.Globals) {
		return false
	}
	for k, v := range a.Globals {
		bv, ok := b.Globals[k]
		if !ok || !ValueEqual(v, bv) {
			return false
		}
	}
	return true
}

func declarationsEqual(a, b Declarations) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
