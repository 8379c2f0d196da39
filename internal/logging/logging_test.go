package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"sales_dashboard/internal/config"
	"sales_dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSinkWritesJSONWithAPIEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	sink, err := logging.NewSink(config.Config{APIEnv: config.EnvProduction, LogFile: path})
	require.NoError(t, err)

	logger := sink.Attach(zap.NewNop()).Named("dashboard")
	logger.Info("hello", zap.Int("store", 4))
	logger.Debug("hidden")
	require.NoError(t, sink.Close())

	out := readLog(t, path)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"api_env":"production"`)
	assert.Contains(t, out, `"logger":"dashboard"`)
	assert.Contains(t, out, `"store":4`)
	assert.NotContains(t, out, "hidden")
}

func TestSinkReconfigureMovesExistingLoggers(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	sink, err := logging.NewSink(config.Config{APIEnv: config.EnvLocal, LogFile: first})
	require.NoError(t, err)
	logger := sink.Attach(zap.NewNop()).With(zap.String("component", "test"))

	logger.Info("before")
	require.NoError(t, sink.Reconfigure(second, true, config.EnvProduction))
	assert.Equal(t, second, sink.Path())
	logger.Debug("after")
	require.NoError(t, sink.Close())

	assert.Contains(t, readLog(t, first), `"msg":"before"`)
	assert.NotContains(t, readLog(t, first), "after")

	out := readLog(t, second)
	assert.Contains(t, out, `"msg":"after"`)
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"api_env":"production"`)
}

func TestSinkWithoutFile(t *testing.T) {
	sink, err := logging.NewSink(config.Config{})
	require.NoError(t, err)

	logger := sink.Attach(zap.NewNop())
	logger.Info("dropped")
	assert.Empty(t, sink.Path())
	assert.NoError(t, sink.Close())
}
