package codec

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ocelkit/ocelkit/internal/ocel"
	"github.com/ocelkit/ocelkit/internal/validate"
)

// XML dialect: element-based, with the declaration tables preceding the
// event and object lists - XML consumers need declared kinds up front,
// unlike JSON where every value carries its own tag. Scalar values are
// serialized as literal element text and parsed back using the declared
// kind; list and map values nest as child elements that carry explicit
// per-element type attributes, since a declaration fixes only the
// top-level kind.
//
// Decoding is two-pass: pass one builds the declaration tables, pass two
// decodes event and object values against them. A literal that does not
// parse as its declared kind fails with a SchemaMismatchError; an
// occurrence of an undeclared attribute name fails the decode outright.

type xmlLog struct {
	XMLName     xml.Name    `xml:"log"`
	Globals     []xmlAttr   `xml:"globals>attribute"`
	EventDecls  []xmlDecl   `xml:"declarations>event-attribute"`
	ObjectDecls []xmlDecl   `xml:"declarations>object-attribute"`
	Events      []xmlEvent  `xml:"events>event"`
	Objects     []xmlObject `xml:"objects>object"`
}

type xmlDecl struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlEvent struct {
	ID         string    `xml:"id,attr"`
	Activity   string    `xml:"activity,attr"`
	Timestamp  string    `xml:"timestamp,attr"`
	Refs       []xmlRef  `xml:"ref"`
	Attributes []xmlAttr `xml:"attribute"`
}

type xmlRef struct {
	Object string `xml:"object,attr"`
}

type xmlObject struct {
	ID         string    `xml:"id,attr"`
	Type       string    `xml:"type,attr"`
	Attributes []xmlAttr `xml:"attribute"`
}

// xmlAttr is an attribute occurrence. Type is set for globals (which have
// no declaration table) and omitted for declared event/object attributes.
// Time is set only on object history entries that carry a timestamp.
type xmlAttr struct {
	Name    string    `xml:"name,attr"`
	Type    string    `xml:"type,attr,omitempty"`
	Time    string    `xml:"time,attr,omitempty"`
	Text    string    `xml:",chardata"`
	Items   []xmlElem `xml:"item"`
	Entries []xmlElem `xml:"entry"`
}

// xmlElem is a nested list item or map entry. Every nested element carries
// its own type attribute.
type xmlElem struct {
	Key     string    `xml:"key,attr,omitempty"`
	Type    string    `xml:"type,attr"`
	Text    string    `xml:",chardata"`
	Items   []xmlElem `xml:"item"`
	Entries []xmlElem `xml:"entry"`
}

// EncodeXML serializes a log into the XML dialect. Attribute names missing
// from the declaration tables are declared in the output with the kind
// inferred from their first occurrence (in sorted id order), so the output
// is always self-describing. With opts.Validate the log is validated first
// and encoding fails closed on any violation.
func EncodeXML(log *ocel.Log, opts Options) ([]byte, error) {
	if opts.Validate {
		if err := validate.Err(validate.Log(log)); err != nil {
			return nil, err
		}
	}

	wire := xmlLog{}

	globals := ocel.Map(log.Globals)
	for _, name := range globals.SortedKeys() {
		attr, err := encodeXMLValue(name, globals[name], true)
		if err != nil {
			return nil, &EncodeError{Format: FormatXML, Reason: fmt.Sprintf("global %q", name), Err: err}
		}
		wire.Globals = append(wire.Globals, attr)
	}

	eventDecls := effectiveEventDeclarations(log)
	objectDecls := effectiveObjectDeclarations(log)
	for _, name := range eventDecls.SortedNames() {
		wire.EventDecls = append(wire.EventDecls, xmlDecl{Name: name, Type: string(eventDecls[name])})
	}
	for _, name := range objectDecls.SortedNames() {
		wire.ObjectDecls = append(wire.ObjectDecls, xmlDecl{Name: name, Type: string(objectDecls[name])})
	}

	for _, id := range log.EventIDs() {
		event := log.Events[id]
		we := xmlEvent{
			ID:        id,
			Activity:  event.Activity,
			Timestamp: ocel.FormatTime(event.Timestamp),
		}
		for _, objectID := range event.SortedRefs() {
			we.Refs = append(we.Refs, xmlRef{Object: objectID})
		}
		attrs := ocel.Map(event.Attributes)
		for _, name := range attrs.SortedKeys() {
			attr, err := encodeXMLValue(name, attrs[name], false)
			if err != nil {
				return nil, &EncodeError{Format: FormatXML, Reason: fmt.Sprintf("event %q attribute %q", id, name), Err: err}
			}
			we.Attributes = append(we.Attributes, attr)
		}
		wire.Events = append(wire.Events, we)
	}

	for _, id := range log.ObjectIDs() {
		object := log.Objects[id]
		wo := xmlObject{ID: id, Type: object.Type}
		for _, name := range sortedHistoryNames(object.Attributes) {
			for _, entry := range object.Attributes[name] {
				attr, err := encodeXMLValue(name, entry.Value, false)
				if err != nil {
					return nil, &EncodeError{Format: FormatXML, Reason: fmt.Sprintf("object %q attribute %q", id, name), Err: err}
				}
				if entry.Time != nil {
					attr.Time = ocel.FormatTime(*entry.Time)
				}
				wo.Attributes = append(wo.Attributes, attr)
			}
		}
		wire.Objects = append(wire.Objects, wo)
	}

	var data []byte
	var err error
	if opts.Pretty {
		data, err = xml.MarshalIndent(wire, "", "  ")
	} else {
		data, err = xml.Marshal(wire)
	}
	if err != nil {
		return nil, &EncodeError{Format: FormatXML, Reason: "marshal", Err: err}
	}
	return append([]byte(xml.Header), data...), nil
}

// DecodeXML parses the XML dialect into a log. With opts.Validate the
// decoded log is validated and the decode fails closed on any violation.
func DecodeXML(data []byte, opts Options) (*ocel.Log, error) {
	var wire xmlLog
	if err := xml.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Format: FormatXML, Reason: "malformed input", Err: err}
	}

	log := ocel.NewLog()

	// Pass one: declaration tables.
	for _, decl := range wire.EventDecls {
		kind := ocel.Kind(decl.Type)
		if !ocel.ValidKind(kind) {
			return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("event attribute %q declared with unknown kind %q", decl.Name, decl.Type)}
		}
		log.EventAttrs[decl.Name] = kind
	}
	for _, decl := range wire.ObjectDecls {
		kind := ocel.Kind(decl.Type)
		if !ocel.ValidKind(kind) {
			return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("object attribute %q declared with unknown kind %q", decl.Name, decl.Type)}
		}
		log.ObjectAttrs[decl.Name] = kind
	}

	for _, attr := range wire.Globals {
		v, err := decodeXMLValue(attr, ocel.Kind(attr.Type), "global", "", attr.Name)
		if err != nil {
			return nil, err
		}
		log.Globals[attr.Name] = v
	}

	// Pass two: events and objects against the declared kinds.
	for _, we := range wire.Events {
		ts, err := ocel.ParseTime(we.Timestamp)
		if err != nil {
			return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("event %q timestamp", we.ID), Err: err}
		}
		event := ocel.NewEvent(we.ID, we.Activity, ts)
		for _, ref := range we.Refs {
			event.AddRef(ref.Object)
		}
		for _, attr := range we.Attributes {
			kind, ok := log.EventAttrs[attr.Name]
			if !ok {
				return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("event %q references undeclared attribute %q", we.ID, attr.Name)}
			}
			v, err := decodeXMLValue(attr, kind, "event", we.ID, attr.Name)
			if err != nil {
				return nil, err
			}
			event.Attributes[attr.Name] = v
		}
		log.AddEvent(event)
	}

	for _, wo := range wire.Objects {
		object := ocel.NewObject(wo.ID, wo.Type)
		for _, attr := range wo.Attributes {
			kind, ok := log.ObjectAttrs[attr.Name]
			if !ok {
				return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("object %q references undeclared attribute %q", wo.ID, attr.Name)}
			}
			v, err := decodeXMLValue(attr, kind, "object", wo.ID, attr.Name)
			if err != nil {
				return nil, err
			}
			if attr.Time != "" {
				t, err := ocel.ParseTime(attr.Time)
				if err != nil {
					return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("object %q attribute %q time", wo.ID, attr.Name), Err: err}
				}
				object.Append(attr.Name, v, &t)
			} else {
				object.Append(attr.Name, v, nil)
			}
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

// encodeXMLValue renders one value. Scalars become literal text; lists and
// maps become nested elements. withType forces an explicit type attribute,
// used for globals and always applied to nested elements.
func encodeXMLValue(name string, v ocel.Value, withType bool) (xmlAttr, error) {
	attr := xmlAttr{Name: name}
	if withType {
		attr.Type = string(v.Kind())
	}
	switch val := v.(type) {
	case ocel.List:
		items, err := encodeXMLElems(val)
		if err != nil {
			return xmlAttr{}, err
		}
		attr.Items = items
	case ocel.Map:
		entries, err := encodeXMLEntries(val)
		if err != nil {
			return xmlAttr{}, err
		}
		attr.Entries = entries
	default:
		attr.Text = formatLiteral(v)
	}
	return attr, nil
}

func encodeXMLElems(list ocel.List) ([]xmlElem, error) {
	elems := make([]xmlElem, len(list))
	for i, v := range list {
		elem, err := encodeXMLElem("", v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		elems[i] = elem
	}
	return elems, nil
}

func encodeXMLEntries(m ocel.Map) ([]xmlElem, error) {
	entries := make([]xmlElem, 0, len(m))
	for _, k := range m.SortedKeys() {
		elem, err := encodeXMLElem(k, m[k])
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", k, err)
		}
		entries = append(entries, elem)
	}
	return entries, nil
}

func encodeXMLElem(key string, v ocel.Value) (xmlElem, error) {
	elem := xmlElem{Key: key, Type: string(v.Kind())}
	switch val := v.(type) {
	case ocel.List:
		items, err := encodeXMLElems(val)
		if err != nil {
			return xmlElem{}, err
		}
		elem.Items = items
	case ocel.Map:
		entries, err := encodeXMLEntries(val)
		if err != nil {
			return xmlElem{}, err
		}
		elem.Entries = entries
	default:
		elem.Text = formatLiteral(v)
	}
	return elem, nil
}

// decodeXMLValue parses one attribute occurrence against its declared (or
// explicit) kind.
func decodeXMLValue(attr xmlAttr, kind ocel.Kind, entity, id, name string) (ocel.Value, error) {
	if !ocel.ValidKind(kind) {
		return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("%s %q attribute %q has unknown kind %q", entity, id, name, kind)}
	}
	switch kind {
	case ocel.KindList:
		return decodeXMLList(attr.Items, entity, id, name)
	case ocel.KindMap:
		return decodeXMLMap(attr.Entries, entity, id, name)
	default:
		v, err := parseLiteral(kind, attr.Text)
		if err != nil {
			return nil, &DecodeError{Format: FormatXML, Reason: "schema mismatch", Err: &SchemaMismatchError{
				Entity: entity, ID: id, Attr: name, Declared: kind, Literal: attr.Text, Err: err,
			}}
		}
		return v, nil
	}
}

func decodeXMLList(items []xmlElem, entity, id, name string) (ocel.Value, error) {
	list := make(ocel.List, len(items))
	for i, item := range items {
		v, err := decodeXMLElem(item, entity, id, name)
		if err != nil {
			return nil, err
		}
		list[i] = v
	}
	return list, nil
}

func decodeXMLMap(entries []xmlElem, entity, id, name string) (ocel.Value, error) {
	m := make(ocel.Map, len(entries))
	for _, entry := range entries {
		v, err := decodeXMLElem(entry, entity, id, name)
		if err != nil {
			return nil, err
		}
		m[entry.Key] = v
	}
	return m, nil
}

func decodeXMLElem(elem xmlElem, entity, id, name string) (ocel.Value, error) {
	kind := ocel.Kind(elem.Type)
	if !ocel.ValidKind(kind) {
		return nil, &DecodeError{Format: FormatXML, Reason: fmt.Sprintf("%s %q attribute %q: nested element with unknown type %q", entity, id, name, elem.Type)}
	}
	switch kind {
	case ocel.KindList:
		return decodeXMLList(elem.Items, entity, id, name)
	case ocel.KindMap:
		return decodeXMLMap(elem.Entries, entity, id, name)
	default:
		v, err := parseLiteral(kind, elem.Text)
		if err != nil {
			return nil, &DecodeError{Format: FormatXML, Reason: "schema mismatch", Err: &SchemaMismatchError{
				Entity: entity, ID: id, Attr: name, Declared: kind, Literal: elem.Text, Err: err,
			}}
		}
		return v, nil
	}
}

// formatLiteral renders a scalar as element text.
func formatLiteral(v ocel.Value) string {
	switch val := v.(type) {
	case ocel.String:
		return string(val)
	case ocel.Int:
		return strconv.FormatInt(int64(val), 10)
	case ocel.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case ocel.Bool:
		return strconv.FormatBool(bool(val))
	case ocel.Timestamp:
		return ocel.FormatTime(val.Time())
	default:
		return ""
	}
}

// parseLiteral parses element text as the declared scalar kind. String
// literals are taken verbatim; numeric, boolean and timestamp literals
// tolerate surrounding whitespace.
func parseLiteral(kind ocel.Kind, text string) (ocel.Value, error) {
	switch kind {
	case ocel.KindString:
		return ocel.String(text), nil
	case ocel.KindInt:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, err
		}
		return ocel.Int(i), nil
	case ocel.KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, err
		}
		return ocel.Float(f), nil
	case ocel.KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		return ocel.Bool(b), nil
	case ocel.KindTimestamp:
		t, err := ocel.ParseTime(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		return ocel.Timestamp(t), nil
	default:
		return nil, fmt.Errorf("kind %q is not scalar", kind)
	}
}

// effectiveEventDeclarations returns the log's event declaration table
// extended with kinds inferred from undeclared occurrences.
func effectiveEventDeclarations(log *ocel.Log) ocel.Declarations {
	decls := ocel.Declarations{}
	for name, kind := range log.EventAttrs {
		decls[name] = kind
	}
	for _, id := range log.EventIDs() {
		attrs := ocel.Map(log.Events[id].Attributes)
		for _, name := range attrs.SortedKeys() {
			if _, ok := decls[name]; !ok {
				decls[name] = attrs[name].Kind()
			}
		}
	}
	return decls
}

// effectiveObjectDeclarations is the object-namespace counterpart, inferring
// from the first history entry of each undeclared attribute.
func effectiveObjectDeclarations(log *ocel.Log) ocel.Declarations {
	decls := ocel.Declarations{}
	for name, kind := range log.ObjectAttrs {
		decls[name] = kind
	}
	for _, id := range log.ObjectIDs() {
		object := log.Objects[id]
		for _, name := range sortedHistoryNames(object.Attributes) {
			if _, ok := decls[name]; ok {
				continue
			}
			if history := object.Attributes[name]; len(history) > 0 && history[0].Value != nil {
				decls[name] = history[0].Value.Kind()
			}
		}
	}
	return decls
}

func sortedHistoryNames(attrs map[string][]ocel.AttrEntry) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
