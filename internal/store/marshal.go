package store

import (
	"encoding/json"
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// marshalAttributes serializes an attribute map to JSON text with tagged
// values. encoding/json sorts the keys, so the text is deterministic.
func marshalAttributes(attrs map[string]ocel.Value) (string, error) {
	m := make(map[string]json.RawMessage, len(attrs))
	for name, v := range attrs {
		data, err := ocel.MarshalTagged(v)
		if err != nil {
			return "", fmt.Errorf("attribute %q: %w", name, err)
		}
		m[name] = data
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

func unmarshalAttributes(text string) (map[string]ocel.Value, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	attrs := make(map[string]ocel.Value, len(m))
	for name, raw := range m {
		v, err := ocel.UnmarshalTagged(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		attrs[name] = v
	}
	return attrs, nil
}

// marshalHistory serializes an object's attribute histories, each entry in
// tagged form with its optional time.
func marshalHistory(attrs map[string][]ocel.AttrEntry) (string, error) {
	m := make(map[string][]json.RawMessage, len(attrs))
	for name, history := range attrs {
		entries := make([]json.RawMessage, len(history))
		for i, entry := range history {
			data, err := ocel.MarshalTaggedEntry(entry)
			if err != nil {
				return "", fmt.Errorf("attribute %q[%d]: %w", name, i, err)
			}
			entries[i] = data
		}
		m[name] = entries
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	return string(data), nil
}

func unmarshalHistory(text string) (map[string][]ocel.AttrEntry, error) {
	var m map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	attrs := make(map[string][]ocel.AttrEntry, len(m))
	for name, raws := range m {
		history := make([]ocel.AttrEntry, len(raws))
		for i, raw := range raws {
			entry, err := ocel.UnmarshalTaggedEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("attribute %q[%d]: %w", name, i, err)
			}
			history[i] = entry
		}
		attrs[name] = history
	}
	return attrs, nil
}

func marshalRefs(e *ocel.Event) (string, error) {
	data, err := json.Marshal(e.SortedRefs())
	if err != nil {
		return "", fmt.Errorf("marshal refs: %w", err)
	}
	return string(data), nil
}

func unmarshalRefs(text string) ([]string, error) {
	var refs []string
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		return nil, fmt.Errorf("unmarshal refs: %w", err)
	}
	return refs, nil
}

func marshalDeclarations(d ocel.Declarations) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal declarations: %w", err)
	}
	return string(data), nil
}

func unmarshalDeclarations(text string) (ocel.Declarations, error) {
	d := ocel.Declarations{}
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("unmarshal declarations: %w", err)
	}
	for name, kind := range d {
		if !ocel.ValidKind(kind) {
			return nil, fmt.Errorf("attribute %q declared with unknown kind %q", name, kind)
		}
	}
	return d, nil
}
