package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/ocel"
)

const validJSONLog = `{
	"eventAttributes": {"total": "float"},
	"objectAttributes": {"status": "string"},
	"events": {
		"e1": {
			"activity": "pay",
			"timestamp": "2024-03-01T10:00:00.000Z",
			"refs": ["o1"],
			"attributes": {"total": {"type": "float", "value": 12.5}}
		}
	},
	"objects": {
		"o1": {
			"type": "order",
			"attributes": {"status": [{"type": "string", "value": "open"}]}
		}
	}
}`

// danglingJSONLog references an object id the log does not contain.
const danglingJSONLog = `{
	"events": {
		"e1": {
			"activity": "pay",
			"timestamp": "2024-03-01T10:00:00.000Z",
			"refs": ["ghost"]
		}
	},
	"objects": {}
}`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConvertJSONToXML(t *testing.T) {
	input := writeInput(t, "log.json", validJSONLog)
	output := filepath.Join(t.TempDir(), "log.xml")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{input, output})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	log, err := codec.DecodeXML(data, codec.Options{})
	require.NoError(t, err)
	assert.Equal(t, "pay", log.Events["e1"].Activity)
	assert.Equal(t, "order", log.Objects["o1"].Type)
}

func TestConvertRoundTripPreservesLog(t *testing.T) {
	input := writeInput(t, "log.json", validJSONLog)
	dir := t.TempDir()
	asStore := filepath.Join(dir, "log.db")
	backToJSON := filepath.Join(dir, "back.json")

	for _, step := range [][]string{
		{input, asStore},
		{asStore, backToJSON},
	} {
		cmd := NewConvertCommand(&RootOptions{Format: "text"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(step)
		require.NoError(t, cmd.Execute())
	}

	want, err := codec.DecodeJSON([]byte(validJSONLog), codec.Options{})
	require.NoError(t, err)
	data, err := os.ReadFile(backToJSON)
	require.NoError(t, err)
	got, err := codec.DecodeJSON(data, codec.Options{})
	require.NoError(t, err)
	assert.True(t, ocel.Equal(want, got))
}

func TestConvertJSONOutputMode(t *testing.T) {
	input := writeInput(t, "log.json", validJSONLog)
	output := filepath.Join(t.TempDir(), "log.xml")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{input, output})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestConvertUnknownExtension(t *testing.T) {
	input := writeInput(t, "log.csv", "a,b\n")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{input, filepath.Join(t.TempDir(), "out.json")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeBadFormat)
}

func TestConvertExplicitFormatFlags(t *testing.T) {
	// Extension lies; the flags tell the truth.
	input := writeInput(t, "log.dat", validJSONLog)
	output := filepath.Join(t.TempDir(), "out.dat")

	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{input, output, "--from", "json", "--to", "xml"})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	_, err = codec.DecodeXML(data, codec.Options{})
	assert.NoError(t, err)
}

func TestConvertValidateFailsClosed(t *testing.T) {
	input := writeInput(t, "log.json", danglingJSONLog)
	output := filepath.Join(t.TempDir(), "log.xml")

	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{input, output, "--validate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NoFileExists(t, output)
}

func TestConvertRepairRemovesDanglingRefs(t *testing.T) {
	input := writeInput(t, "log.json", danglingJSONLog)
	output := filepath.Join(t.TempDir(), "out.json")

	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{input, output, "--repair"})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	log, err := codec.DecodeJSON(data, codec.Options{})
	require.NoError(t, err)
	assert.Empty(t, log.Events["e1"].ObjectRefs)
}

func TestConvertMissingInput(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewConvertCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json"), filepath.Join(t.TempDir(), "out.xml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
