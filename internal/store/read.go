package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// ReadLog reads the whole store into a fresh log.
func (s *Store) ReadLog() (*ocel.Log, error) {
	log := ocel.NewLog()

	rows, err := s.db.Query(`
		SELECT id, activity, timestamp, refs, attributes
		FROM events
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, activity, timestamp, refsText, attrsText string
		if err := rows.Scan(&id, &activity, &timestamp, &refsText, &attrsText); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ts, err := ocel.ParseTime(timestamp)
		if err != nil {
			return nil, fmt.Errorf("event %q timestamp: %w", id, err)
		}
		event := ocel.NewEvent(id, activity, ts)
		refs, err := unmarshalRefs(refsText)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", id, err)
		}
		for _, objectID := range refs {
			event.AddRef(objectID)
		}
		attrs, err := unmarshalAttributes(attrsText)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", id, err)
		}
		event.Attributes = attrs
		log.AddEvent(event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	objectRows, err := s.db.Query(`
		SELECT id, type, attributes
		FROM objects
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer objectRows.Close()
	for objectRows.Next() {
		var id, typ, attrsText string
		if err := objectRows.Scan(&id, &typ, &attrsText); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		object := ocel.NewObject(id, typ)
		attrs, err := unmarshalHistory(attrsText)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", id, err)
		}
		object.Attributes = attrs
		log.AddObject(object)
	}
	if err := objectRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}

	var eventAttrs, objectAttrs, globals string
	err = s.db.QueryRow(`SELECT event_attrs, object_attrs, globals FROM declarations WHERE id = 1`).
		Scan(&eventAttrs, &objectAttrs, &globals)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Legal: a store written before any declarations record existed.
	case err != nil:
		return nil, fmt.Errorf("query declarations: %w", err)
	default:
		if log.EventAttrs, err = unmarshalDeclarations(eventAttrs); err != nil {
			return nil, fmt.Errorf("event declarations: %w", err)
		}
		if log.ObjectAttrs, err = unmarshalDeclarations(objectAttrs); err != nil {
			return nil, fmt.Errorf("object declarations: %w", err)
		}
		g, err := unmarshalAttributes(globals)
		if err != nil {
			return nil, fmt.Errorf("globals: %w", err)
		}
		log.Globals = g
	}

	return log, nil
}
