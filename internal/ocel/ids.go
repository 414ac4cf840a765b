package ocel

import "github.com/google/uuid"

// NewLogID returns a time-sortable UUIDv7 string. The CLI stamps merged
// logs with one of these as a provenance global attribute, so outputs of
// separate merge runs remain distinguishable.
//
// Panics if UUID generation fails (should never happen in practice).
func NewLogID() string {
	return uuid.Must(uuid.NewV7()).String()
}
