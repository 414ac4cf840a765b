package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ocelkit/ocelkit/internal/ocel"
)

// EncodeBytes serializes a log into the raw bytes of a store file. The
// database is built in a scratch file that is removed on every exit path,
// so a failed encode leaves nothing behind.
func EncodeBytes(log *ocel.Log) ([]byte, error) {
	scratch, err := scratchPath()
	if err != nil {
		return nil, fmt.Errorf("encode store: %w", err)
	}
	defer os.Remove(scratch)

	if err := writeStoreFile(log, scratch); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(scratch)
	if err != nil {
		return nil, fmt.Errorf("encode store: read back: %w", err)
	}
	return data, nil
}

// DecodeBytes parses the raw bytes of a store file into a log. The bytes
// are staged to a scratch file and opened read-only.
func DecodeBytes(data []byte) (*ocel.Log, error) {
	scratch, err := scratchPath()
	if err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	defer os.Remove(scratch)

	if err := os.WriteFile(scratch, data, 0o600); err != nil {
		return nil, fmt.Errorf("decode store: stage input: %w", err)
	}
	return DecodeFile(scratch)
}

// EncodeFile writes a log as a store file at path. The store is built next
// to the destination and renamed into place only on success, so a failed
// encode never leaves a partial file at path.
func EncodeFile(log *ocel.Log, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ocel-store-*")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := writeStoreFile(log, tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("encode store: move into place: %w", err)
	}
	return nil
}

// DecodeFile reads a store file at path into a log via a read-only open,
// permitting concurrent readers of the same file.
func DecodeFile(path string) (*ocel.Log, error) {
	s, err := OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ReadLog()
}

// writeStoreFile creates a store at path and writes the whole log,
// releasing the exclusive lock before returning.
func writeStoreFile(log *ocel.Log, path string) error {
	s, err := Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteLog(log); err != nil {
		s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("encode store: close: %w", err)
	}
	return nil
}

// scratchPath reserves a temp file path for a scratch database.
func scratchPath() (string, error) {
	f, err := os.CreateTemp("", "ocel-store-*.db")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()
	return path, nil
}
