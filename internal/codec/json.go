package codec

import (
	"encoding/json"
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
	"github.com/ocelkit/ocelkit/internal/validate"
)

// JSON dialect: one object with top-level keys for declarations, events and
// objects. Every attribute value carries an explicit type tag alongside its
// payload, because JSON syntax alone cannot distinguish int from float from
// timestamp-as-string. Object histories are arrays of {type, value, time}
// entries in stored order.

type jsonLog struct {
	Globals          map[string]json.RawMessage `json:"globals,omitempty"`
	EventAttributes  map[string]ocel.Kind       `json:"eventAttributes,omitempty"`
	ObjectAttributes map[string]ocel.Kind       `json:"objectAttributes,omitempty"`
	Events           map[string]jsonEvent       `json:"events"`
	Objects          map[string]jsonObject      `json:"objects"`
}

type jsonEvent struct {
	Activity   string                     `json:"activity"`
	Timestamp  string                     `json:"timestamp"`
	Refs       []string                   `json:"refs,omitempty"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type jsonObject struct {
	Type       string                       `json:"type"`
	Attributes map[string][]json.RawMessage `json:"attributes,omitempty"`
}

// EncodeJSON serializes a log into the JSON dialect. Output is
// deterministic: encoding/json emits map keys in sorted order. With
// opts.Validate the log is validated first and encoding fails closed on any
// violation.
func EncodeJSON(log *ocel.Log, opts Options) ([]byte, error) {
	if opts.Validate {
		if err := validate.Err(validate.Log(log)); err != nil {
			return nil, err
		}
	}

	wire := jsonLog{
		Events:  make(map[string]jsonEvent, len(log.Events)),
		Objects: make(map[string]jsonObject, len(log.Objects)),
	}
	if len(log.Globals) > 0 {
		wire.Globals = make(map[string]json.RawMessage, len(log.Globals))
		for k, v := range log.Globals {
			data, err := ocel.MarshalTagged(v)
			if err != nil {
				return nil, &EncodeError{Format: FormatJSON, Reason: fmt.Sprintf("global %q", k), Err: err}
			}
			wire.Globals[k] = data
		}
	}
	if len(log.EventAttrs) > 0 {
		wire.EventAttributes = log.EventAttrs
	}
	if len(log.ObjectAttrs) > 0 {
		wire.ObjectAttributes = log.ObjectAttrs
	}

	for id, event := range log.Events {
		we := jsonEvent{
			Activity:  event.Activity,
			Timestamp: ocel.FormatTime(event.Timestamp),
			Refs:      event.SortedRefs(),
		}
		if len(we.Refs) == 0 {
			we.Refs = nil
		}
		if len(event.Attributes) > 0 {
			we.Attributes = make(map[string]json.RawMessage, len(event.Attributes))
			for name, value := range event.Attributes {
				data, err := ocel.MarshalTagged(value)
				if err != nil {
					return nil, &EncodeError{Format: FormatJSON, Reason: fmt.Sprintf("event %q attribute %q", id, name), Err: err}
				}
				we.Attributes[name] = data
			}
		}
		wire.Events[id] = we
	}

	for id, object := range log.Objects {
		wo := jsonObject{Type: object.Type}
		if len(object.Attributes) > 0 {
			wo.Attributes = make(map[string][]json.RawMessage, len(object.Attributes))
			for name, history := range object.Attributes {
				entries := make([]json.RawMessage, len(history))
				for i, entry := range history {
					data, err := ocel.MarshalTaggedEntry(entry)
					if err != nil {
						return nil, &EncodeError{Format: FormatJSON, Reason: fmt.Sprintf("object %q attribute %q[%d]", id, name, i), Err: err}
					}
					entries[i] = data
				}
				wo.Attributes[name] = entries
			}
		}
		wire.Objects[id] = wo
	}

	var data []byte
	var err error
	if opts.Pretty {
		data, err = json.MarshalIndent(wire, "", "  ")
	} else {
		data, err = json.Marshal(wire)
	}
	if err != nil {
		return nil, &EncodeError{Format: FormatJSON, Reason: "marshal", Err: err}
	}
	return data, nil
}

// DecodeJSON parses the JSON dialect into a log. With opts.Validate the raw
// bytes are first checked against the structural schema and the decoded log
// is validated; any violation fails the decode closed.
func DecodeJSON(data []byte, opts Options) (*ocel.Log, error) {
	if opts.Validate {
		violations, err := validate.JSONStructure(data)
		if err != nil {
			return nil, &DecodeError{Format: FormatJSON, Reason: "structural schema", Err: err}
		}
		if err := validate.Err(violations); err != nil {
			return nil, err
		}
	}

	var wire jsonLog
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Format: FormatJSON, Reason: "malformed input", Err: err}
	}

	log := ocel.NewLog()
	for k, raw := range wire.Globals {
		v, err := ocel.UnmarshalTagged(raw)
		if err != nil {
			return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("global %q", k), Err: err}
		}
		log.Globals[k] = v
	}
	for name, kind := range wire.EventAttributes {
		if !ocel.ValidKind(kind) {
			return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("event attribute %q declared with unknown kind %q", name, kind)}
		}
		log.EventAttrs[name] = kind
	}
	for name, kind := range wire.ObjectAttributes {
		if !ocel.ValidKind(kind) {
			return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("object attribute %q declared with unknown kind %q", name, kind)}
		}
		log.ObjectAttrs[name] = kind
	}

	for id, we := range wire.Events {
		ts, err := ocel.ParseTime(we.Timestamp)
		if err != nil {
			return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("event %q timestamp", id), Err: err}
		}
		event := ocel.NewEvent(id, we.Activity, ts)
		for _, objectID := range we.Refs {
			event.AddRef(objectID)
		}
		for name, raw := range we.Attributes {
			v, err := ocel.UnmarshalTagged(raw)
			if err != nil {
				return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("event %q attribute %q", id, name), Err: err}
			}
			event.Attributes[name] = v
		}
		log.AddEvent(event)
	}

	for id, wo := range wire.Objects {
		object := ocel.NewObject(id, wo.Type)
		for name, entries := range wo.Attributes {
			history := make([]ocel.AttrEntry, len(entries))
			for i, raw := range entries {
				entry, err := ocel.UnmarshalTaggedEntry(raw)
				if err != nil {
					return nil, &DecodeError{Format: FormatJSON, Reason: fmt.Sprintf("object %q attribute %q[%d]", id, name, i), Err: err}
				}
				history[i] = entry
			}
			object.Attributes[name] = history
		}
		log.AddObject(object)
	}

	if opts.Validate {
		if err := validate.Err(validate.Log(log)); err != nil {
			return nil, err
		}
	}
	return log, nil
}
