package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/ocel"
)

// FormatForPath maps a file extension to a wire format. The core is
// format-explicit; extension sniffing is owned here, by the CLI.
func FormatForPath(path string) (codec.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonocel":
		return codec.FormatJSON, nil
	case ".xml", ".xmlocel":
		return codec.FormatXML, nil
	case ".db", ".sqlite", ".store":
		return codec.FormatStore, nil
	default:
		return "", fmt.Errorf("cannot infer format from %q: use an explicit format flag", filepath.Base(path))
	}
}

// resolveFormat prefers an explicit flag over extension inference.
func resolveFormat(flag, path string) (codec.Format, error) {
	if flag != "" {
		f := codec.Format(flag)
		if !codec.ValidFormat(f) {
			return "", fmt.Errorf("unknown format %q: must be one of %v", flag, codec.Formats)
		}
		return f, nil
	}
	return FormatForPath(path)
}

// loadLog reads and decodes one input file.
func loadLog(path string, format codec.Format, opts codec.Options) (*ocel.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log, err := codec.Decode(format, data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}

// saveLog encodes and writes one output file. The file is written next to
// its destination and renamed into place, so a failed encode or a failed
// write never leaves a partial output.
func saveLog(path string, format codec.Format, log *ocel.Log, opts codec.Options) error {
	data, err := codec.Encode(format, log, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ocelkit-out-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
