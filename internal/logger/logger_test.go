package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("visible", "k", "v")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "v", rec["k"])
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@x.com", MaskEmail("alice@x.com"))
	assert.Equal(t, "b***@example.org", MaskEmail("b@example.org"))
	assert.Equal(t, "****", MaskEmail("no-at-sign"))
	assert.Equal(t, "****", MaskEmail("@x.com"))
}
