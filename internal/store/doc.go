// Package store implements the embedded-store codec on SQLite.
//
// A stored log is a single database file with two record collections
// (events, objects) plus one declarations record carrying both namespace
// tables and the log-level globals. Attribute values are stored in their
// tagged form, so List and Map values nest without any declared-kind
// reparsing.
//
// The write path requires exclusive access to the backing file for the
// duration of an encode; concurrent writers would corrupt the store.
// Read-only opens permit concurrent readers.
package store
