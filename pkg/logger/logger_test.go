package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestSetupLoggerWritesDailyFile(t *testing.T) {
	t.Cleanup(func() { Use(zap.NewNop()) })
	dir := t.TempDir()

	require.NoError(t, SetupLogger(Options{Level: "info", Format: "json", Dir: dir, ServiceName: "chewing-love"}))
	Info("seeded %d members", 4)
	Debug("hidden")
	Sync()

	content, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "seeded 4 members")
	assert.Contains(t, string(content), `"service_name":"chewing-love"`)
	assert.NotContains(t, string(content), "hidden")
}
