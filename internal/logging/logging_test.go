package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(" info "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("chatty"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Out: &buf})

	log.Info().Msg("hidden")
	log.Warn().Str("allotment", "3.25").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"allotment":"3.25"`)
	assert.Contains(t, out, `"message":"shown"`)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reup.log")
	log, closer, err := OpenFile(path, "info")
	require.NoError(t, err)

	log.Info().Msg("written")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
