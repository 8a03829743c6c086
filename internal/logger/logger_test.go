// internal/logger/logger_test.go
//
// Unit-tests for the settings-driven logger.
//
// Run: go test ./internal/logger -v

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mim3/salesdash/internal/config/configtest"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"DEBUG":    zap.DebugLevel,
		"info":     zap.InfoLevel,
		"WARNING":  zap.WarnLevel,
		"ERROR":    zap.ErrorLevel,
		"CRITICAL": zap.DPanicLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("VERBOSE")
	assert.Error(t, err)
}

func TestNew_WritesJSONToLogDir(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	s, rp := configtest.New(t, map[string]any{"log.level": "WARNING"})
	var console bytes.Buffer
	log, err := newLogger(s, &console)
	require.NoError(t, err)

	log.Infow("below threshold")
	log.Warnw("disk nearly full", "free_mb", 12)
	require.NoError(t, log.Sync())

	assert.Empty(t, console.String(), "console tee is off by default")

	raw, err := os.ReadFile(FilePath(s))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(FilePath(s), rp.LogDir))

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "disk nearly full", rec["msg"])
	assert.Equal(t, "sales_dashboard", rec["app"])
}

func TestNew_ConsoleTee(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	s, _ := configtest.New(t, map[string]any{"log.console": "yes"})
	var console bytes.Buffer
	log, err := newLogger(s, &console)
	require.NoError(t, err)

	log.Infow("hello")
	assert.Contains(t, console.String(), "logger online")
	assert.Contains(t, console.String(), "hello")
}

func TestNew_CriticalDoesNotPanicInDebug(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	s, _ := configtest.New(t, map[string]any{"app.debug": "true", "log.level": "CRITICAL"})
	var console bytes.Buffer
	log, err := newLogger(s, &console)
	require.NoError(t, err)

	assert.NotPanics(t, func() { log.DPanicw("database corrupted", "table", "sales") })
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(FilePath(s))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "database corrupted")
	assert.Contains(t, console.String(), "database corrupted")
}
