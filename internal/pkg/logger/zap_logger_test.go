package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "client registered", map[string]interface{}{"client_id": "abc"})
	l.Debug("Hub", "below file level", nil)
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "client registered", lines[0]["message"])
	assert.Equal(t, "Hub", lines[0]["module"])
}

func TestNopLogger_SatisfiesInterface(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Error("x", "y", map[string]interface{}{"error": "boom"})
	assert.NoError(t, l.Sync())
}

func TestZapLoggerWithConsole_WritesToGivenConsole(t *testing.T) {
	var console bytes.Buffer
	l := NewZapLoggerWithConsole(filepath.Join(t.TempDir(), "app.log"), false, &console)

	l.Warn("BOOTSTRAP", "redis unavailable", map[string]interface{}{"error": "dial tcp"})
	_ = l.Sync()

	assert.Contains(t, console.String(), "redis unavailable")
	assert.Contains(t, console.String(), "BOOTSTRAP")
}
