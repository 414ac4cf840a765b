// Package codec serializes logs to and from their wire formats.
//
// Three formats are supported: a JSON dialect with explicit per-value type
// tags, an XML dialect with up-front attribute declarations, and a SQLite
// embedded store (implemented in internal/store and dispatched from here).
// The package is format-explicit: callers name the format, nothing sniffs
// bytes to guess one.
//
// Decode and Encode are total per call: they either fully succeed or fail
// with no partial log and no partial output.
package codec

import (
	"fmt"

	"github.com/ocelkit/ocelkit/internal/ocel"
	"github.com/ocelkit/ocelkit/internal/store"
)

// Format names a wire format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatStore Format = "store"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatXML, FormatStore}

// ValidFormat reports whether f is a supported format.
func ValidFormat(f Format) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Options control encoding and decoding.
type Options struct {
	// Pretty selects human-readable indentation over compact output.
	// Ignored by the embedded store.
	Pretty bool
	// Validate runs schema validation: before encoding, and after
	// decoding (plus structural validation of raw JSON input). Both
	// directions fail closed on violations. JSON and XML only; the
	// embedded store infers kinds per occurrence and ignores it.
	Validate bool
}

// DecodeError reports a failed decode. The log is never partially
// returned.
type DecodeError struct {
	Format Format
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failed encode. No partial output is produced.
type EncodeError struct {
	Format Format
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("encode %s: %s", e.Format, e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a literal that could not be parsed as its
// declared kind during XML decoding.
type SchemaMismatchError struct {
	Entity   string // "event", "object" or "global"
	ID       string
	Attr     string
	Declared ocel.Kind
	Literal  string
	Err      error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s %q attribute %q: literal %q does not parse as declared kind %q: %v",
		e.Entity, e.ID, e.Attr, e.Literal, e.Declared, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// Decode parses raw bytes in the named format into a log.
func Decode(format Format, data []byte, opts Options) (*ocel.Log, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data, opts)
	case FormatXML:
		return DecodeXML(data, opts)
	case FormatStore:
		return store.DecodeBytes(data)
	default:
		return nil, &DecodeError{Format: format, Reason: "unknown format"}
	}
}

// Encode serializes a log to raw bytes in the named format.
func Encode(format Format, log *ocel.Log, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(log, opts)
	case FormatXML:
		return EncodeXML(log, opts)
	case FormatStore:
		return store.EncodeBytes(log)
	default:
		return nil, &EncodeError{Format: format, Reason: "unknown format"}
	}
}
