package ocel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// taggedValue is the explicit wire form of a Value: an explicit kind tag
// alongside the payload, since JSON alone cannot distinguish int from float
// from timestamp-as-string.
type taggedValue struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalTagged serializes a value as a {"type": ..., "value": ...} JSON
// object. Map keys are emitted in sorted order so the output is
// deterministic for a given value.
func MarshalTagged(v Value) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value")
	}
	payload, err := marshalPayload(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	tag, _ := json.Marshal(string(v.Kind()))
	buf.Write(tag)
	buf.WriteString(`,"value":`)
	buf.Write(payload)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalPayload(v Value) ([]byte, error) {
	switch val := v.(type) {
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	case Timestamp:
		return json.Marshal(FormatTime(val.Time()))
	case List:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := MarshalTagged(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case Map:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, fmt.Errorf("map key %q: %w", k, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			data, err := MarshalTagged(val[k])
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// UnmarshalTagged decodes a {"type": ..., "value": ...} JSON object into a
// Value. Unknown tags and payloads of the wrong shape are errors.
func UnmarshalTagged(data []byte) (Value, error) {
	var tv taggedValue
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&tv); err != nil {
		return nil, err
	}
	return unmarshalPayload(tv.Type, tv.Value)
}

func unmarshalPayload(kind Kind, raw json.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("kind %q: missing value", kind)
	}
	switch kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		return String(s), nil
	case KindInt:
		var n json.Number
		if err := unmarshalNumber(raw, &n); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("kind %q: not a 64-bit integer: %s", kind, n)
		}
		return Int(i), nil
	case KindFloat:
		var n json.Number
		if err := unmarshalNumber(raw, &n); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("kind %q: not a float: %s", kind, n)
		}
		return Float(f), nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		return Bool(b), nil
	case KindTimestamp:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		t, err := ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		return Timestamp(t), nil
	case KindList:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		list := make(List, len(elems))
		for i, elem := range elems {
			v, err := UnmarshalTagged(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case KindMap:
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		m := make(Map, len(entries))
		for k, elem := range entries {
			v, err := UnmarshalTagged(elem)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = v
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown value type tag %q", kind)
	}
}

// MarshalTaggedEntry serializes one history entry as
// {"type": ..., "value": ...} with an optional trailing "time" field.
func MarshalTaggedEntry(entry AttrEntry) ([]byte, error) {
	data, err := MarshalTagged(entry.Value)
	if err != nil {
		return nil, err
	}
	if entry.Time == nil {
		return data, nil
	}
	var buf bytes.Buffer
	buf.Write(data[:len(data)-1]) // reopen the object
	buf.WriteString(`,"time":`)
	ts, _ := json.Marshal(FormatTime(*entry.Time))
	buf.Write(ts)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalTaggedEntry decodes one history entry.
func UnmarshalTaggedEntry(data []byte) (AttrEntry, error) {
	var wire struct {
		Type  Kind            `json:"type"`
		Value json.RawMessage `json:"value"`
		Time  *string         `json:"time"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return AttrEntry{}, err
	}
	v, err := unmarshalPayload(wire.Type, wire.Value)
	if err != nil {
		return AttrEntry{}, err
	}
	entry := AttrEntry{Value: v}
	if wire.Time != nil {
		t, err := ParseTime(*wire.Time)
		if err != nil {
			return AttrEntry{}, fmt.Errorf("history time: %w", err)
		}
		entry.Time = &t
	}
	return entry, nil
}

// unmarshalNumber rejects JSON strings and other non-numeric payloads that
// json.Number would otherwise accept silently via UseNumber.
func unmarshalNumber(raw json.RawMessage, n *json.Number) error {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return fmt.Errorf("not a number: %s", trimmed)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(n)
}
