package ocel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical byte form of a value, used only
// for content digests. Rules:
//  1. Map keys sorted lexicographically
//  2. Strings NFC normalized, no HTML escaping
//  3. Timestamps rendered in UTC so equal instants canonicalize equally
//  4. Floats in shortest round-trippable form
func MarshalCanonical(v Value) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value")
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case String:
		return writeCanonicalString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case Float:
		buf.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
		return nil
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
		return nil
	case Timestamp:
		return writeCanonicalString(buf, FormatTime(val.Time().UTC()))
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case Map:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("map[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unknown value type: %T", v)
	}
}

// writeCanonicalString NFC-normalizes s and encodes it without HTML
// escaping, so < > & survive verbatim.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return fmt.Errorf("canonical string: %w", err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// canonicalLog renders a whole log in canonical form: fixed section order,
// sorted ids and names, canonical values throughout.
func canonicalLog(l *Log) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"eventAttributes":`)
	writeCanonicalDeclarations(&buf, l.EventAttrs)
	buf.WriteString(`,"events":{`)
	for i, id := range l.EventIDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, id); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeCanonicalEvent(&buf, l.Events[id]); err != nil {
			return nil, fmt.Errorf("event %q: %w", id, err)
		}
	}
	buf.WriteString(`},"globals":`)
	if err := writeCanonical(&buf, Map(l.Globals)); err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	buf.WriteString(`,"objectAttributes":`)
	writeCanonicalDeclarations(&buf, l.ObjectAttrs)
	buf.WriteString(`,"objects":{`)
	for i, id := range l.ObjectIDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, id); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeCanonicalObject(&buf, l.Objects[id]); err != nil {
			return nil, fmt.Errorf("object %q: %w", id, err)
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

func writeCanonicalDeclarations(buf *bytes.Buffer, d Declarations) {
	buf.WriteByte('{')
	for i, name := range d.SortedNames() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, name)
		buf.WriteByte(':')
		writeCanonicalString(buf, string(d[name]))
	}
	buf.WriteByte('}')
}

func writeCanonicalEvent(buf *bytes.Buffer, e *Event) error {
	buf.WriteString(`{"activity":`)
	if err := writeCanonicalString(buf, e.Activity); err != nil {
		return err
	}
	buf.WriteString(`,"attributes":`)
	if err := writeCanonical(buf, Map(e.Attributes)); err != nil {
		return err
	}
	buf.WriteString(`,"refs":[`)
	for i, id := range e.SortedRefs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, id); err != nil {
			return err
		}
	}
	buf.WriteString(`],"timestamp":`)
	if err := writeCanonicalString(buf, FormatTime(e.Timestamp.UTC())); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeCanonicalObject(buf *bytes.Buffer, o *Object) error {
	buf.WriteString(`{"attributes":{`)
	for i, name := range sortedKeys(o.Attributes) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, name); err != nil {
			return err
		}
		buf.WriteString(`:[`)
		for j, entry := range o.Attributes[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"time":`)
			if entry.Time == nil {
				buf.WriteString("null")
			} else if err := writeCanonicalString(buf, FormatTime(entry.Time.UTC())); err != nil {
				return err
			}
			buf.WriteString(`,"value":`)
			if err := writeCanonical(buf, entry.Value); err != nil {
				return err
			}
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`},"type":`)
	if err := writeCanonicalString(buf, o.Type); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}
