package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocelkit/ocelkit/internal/codec"
)

func TestFormatForPath(t *testing.T) {
	cases := []struct {
		path string
		want codec.Format
	}{
		{"log.json", codec.FormatJSON},
		{"log.jsonocel", codec.FormatJSON},
		{"LOG.JSON", codec.FormatJSON},
		{"log.xml", codec.FormatXML},
		{"log.xmlocel", codec.FormatXML},
		{"log.db", codec.FormatStore},
		{"log.sqlite", codec.FormatStore},
		{"log.store", codec.FormatStore},
		{"/some/dir/log.json", codec.FormatJSON},
	}
	for _, tc := range cases {
		got, err := FormatForPath(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestFormatForPathUnknownExtension(t *testing.T) {
	_, err := FormatForPath("log.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.csv")

	_, err = FormatForPath("noextension")
	assert.Error(t, err)
}

func TestResolveFormatFlagWins(t *testing.T) {
	got, err := resolveFormat("xml", "log.json")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatXML, got)
}

func TestResolveFormatRejectsUnknownFlag(t *testing.T) {
	_, err := resolveFormat("csv", "log.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv")
}

func TestResolveFormatFallsBackToExtension(t *testing.T) {
	got, err := resolveFormat("", "log.xml")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatXML, got)
}
