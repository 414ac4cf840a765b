package store

import (
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// WriteLog stores a whole log in one transaction. Either every record
// lands or none do; a failed write leaves the store unchanged.
func (s *Store) WriteLog(log *ocel.Log) error {
	if s.readOnly {
		return fmt.Errorf("write log: store is read-only")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write log: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, id := range log.EventIDs() {
		event := log.Events[id]
		refs, err := marshalRefs(event)
		if err != nil {
			return fmt.Errorf("write event %q: %w", id, err)
		}
		attrs, err := marshalAttributes(event.Attributes)
		if err != nil {
			return fmt.Errorf("write event %q: %w", id, err)
		}
		_, err = tx.Exec(`
			INSERT INTO events (id, activity, timestamp, refs, attributes)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				activity = excluded.activity,
				timestamp = excluded.timestamp,
				refs = excluded.refs,
				attributes = excluded.attributes
		`, id, event.Activity, ocel.FormatTime(event.Timestamp), refs, attrs)
		if err != nil {
			return fmt.Errorf("write event %q: %w", id, err)
		}
	}

	for _, id := range log.ObjectIDs() {
		object := log.Objects[id]
		attrs, err := marshalHistory(object.Attributes)
		if err != nil {
			return fmt.Errorf("write object %q: %w", id, err)
		}
		_, err = tx.Exec(`
			INSERT INTO objects (id, type, attributes)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				type = excluded.type,
				attributes = excluded.attributes
		`, id, object.Type, attrs)
		if err != nil {
			return fmt.Errorf("write object %q: %w", id, err)
		}
	}

	eventAttrs, err := marshalDeclarations(log.EventAttrs)
	if err != nil {
		return fmt.Errorf("write declarations: %w", err)
	}
	objectAttrs, err := marshalDeclarations(log.ObjectAttrs)
	if err != nil {
		return fmt.Errorf("write declarations: %w", err)
	}
	globals, err := marshalAttributes(log.Globals)
	if err != nil {
		return fmt.Errorf("write globals: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO declarations (id, event_attrs, object_attrs, globals)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_attrs = excluded.event_attrs,
			object_attrs = excluded.object_attrs,
			globals = excluded.globals
	`, eventAttrs, objectAttrs, globals)
	if err != nil {
		return fmt.Errorf("write declarations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write log: commit: %w", err)
	}
	return nil
}
