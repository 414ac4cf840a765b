// Package validate checks logs against their declaration tables and
// structural requirements.
//
// Validation collects every violation found, not just the first, so a
// caller can report a complete picture of a bad log in one pass. It never
// modifies the log.
package validate

import (
	"fmt"
	"sort"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// Violation describes one validation failure.
type Violation struct {
	Entity  string `json:"entity"`         // "log", "event" or "object"
	ID      string `json:"id,omitempty"`   // event or object id, empty for log-level
	Attr    string `json:"attr,omitempty"` // attribute name, if the violation concerns one
	Message string `json:"message"`
}

func (v Violation) String() string {
	switch {
	case v.ID == "":
		return fmt.Sprintf("%s: %s", v.Entity, v.Message)
	case v.Attr == "":
		return fmt.Sprintf("%s %q: %s", v.Entity, v.ID, v.Message)
	default:
		return fmt.Sprintf("%s %q attribute %q: %s", v.Entity, v.ID, v.Attr, v.Message)
	}
}

// ValidationError carries every violation found in one validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Violations[0])
	}
	return fmt.Sprintf("validation failed: %d violations, first: %s", len(e.Violations), e.Violations[0])
}

// Log validates a decoded log and returns all violations found. Checks:
//
//  1. Event ids, activities, object ids and object types are non-empty.
//  2. Every object reference targets an object present in the log.
//  3. Every attribute occurrence whose name is declared in its namespace
//     carries a value of the declared kind; occurrences of undeclared
//     names are themselves violations.
//  4. Declared kinds are one of the seven value kinds.
//
// An empty result means the log is valid. Pure function, no side effects.
func Log(log *ocel.Log) []Violation {
	v := &validator{}
	v.validateDeclarations("log", log.EventAttrs, "event attribute")
	v.validateDeclarations("log", log.ObjectAttrs, "object attribute")
	for _, id := range log.EventIDs() {
		v.validateEvent(log, log.Events[id])
	}
	for _, id := range log.ObjectIDs() {
		v.validateObject(log.Objects[id], log.ObjectAttrs)
	}
	return v.violations
}

// Err wraps a violation list in a *ValidationError, or returns nil when the
// list is empty.
func Err(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// validator accumulates violations during traversal.
type validator struct {
	violations []Violation
}

func (v *validator) add(entity, id, attr, format string, args ...any) {
	v.violations = append(v.violations, Violation{
		Entity:  entity,
		ID:      id,
		Attr:    attr,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) validateDeclarations(entity string, decls ocel.Declarations, namespace string) {
	for _, name := range decls.SortedNames() {
		if name == "" {
			v.add(entity, "", "", "%s declaration with empty name", namespace)
			continue
		}
		if kind := decls[name]; !ocel.ValidKind(kind) {
			v.add(entity, "", name, "%s declared with unknown kind %q", namespace, kind)
		}
	}
}

func (v *validator) validateEvent(log *ocel.Log, e *ocel.Event) {
	if e.ID == "" {
		v.add("event", "", "", "empty event id")
	}
	if e.Activity == "" {
		v.add("event", e.ID, "", "empty activity")
	}
	if e.Timestamp.IsZero() {
		v.add("event", e.ID, "", "missing timestamp")
	}
	for _, objectID := range e.SortedRefs() {
		if _, ok := log.Objects[objectID]; !ok {
			v.add("event", e.ID, "", "reference to unknown object %q", objectID)
		}
	}
	for _, name := range sortedAttrNames(e.Attributes) {
		v.checkKind("event", e.ID, name, e.Attributes[name], log.EventAttrs)
	}
}

func (v *validator) validateObject(o *ocel.Object, decls ocel.Declarations) {
	if o.ID == "" {
		v.add("object", "", "", "empty object id")
	}
	if o.Type == "" {
		v.add("object", o.ID, "", "empty object type")
	}
	for _, name := range sortedHistoryNames(o.Attributes) {
		for _, entry := range o.Attributes[name] {
			v.checkKind("object", o.ID, name, entry.Value, decls)
		}
	}
}

func (v *validator) checkKind(entity, id, name string, value ocel.Value, decls ocel.Declarations) {
	if value == nil {
		v.add(entity, id, name, "nil value")
		return
	}
	declared, ok := decls[name]
	if !ok {
		v.add(entity, id, name, "attribute not declared in its namespace")
		return
	}
	if actual := value.Kind(); actual != declared {
		v.add(entity, id, name, "value kind %q does not match declared kind %q", actual, declared)
	}
}

func sortedAttrNames(attrs map[string]ocel.Value) []string {
	m := ocel.Map(attrs)
	return m.SortedKeys()
}

func sortedHistoryNames(attrs map[string][]ocel.AttrEntry) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
