package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realtime.log")
	log := NewIsolatedLogger(path)

	log.Debug("Hub", "dropped below file level", nil)
	log.Info("Hub", "client registered", map[string]interface{}{"session_id": "sess-1"})
	log.Error("Client", "write failed", map[string]interface{}{"error": errors.New("broken pipe")})
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "client registered", info["message"])
	assert.Equal(t, "Hub", info["module"])
	assert.Equal(t, "sess-1", info["details"].(map[string]interface{})["session_id"])

	var failure map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "broken pipe", failure["error"])
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Info("Test", "ignored", nil)
		log.Error("Test", "ignored", map[string]interface{}{"error": errors.New("x")})
	})
}
