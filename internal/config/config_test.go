package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Zero(t, cfg.Workers)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")

	cfg = Default()
	cfg.LogFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log format")

	cfg = Default()
	cfg.Workers = -1
	assert.ErrorContains(t, cfg.Validate(), "invalid workers")
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.EffectiveLogLevel())

	cfg.Quiet = true
	assert.Equal(t, LogLevelError, cfg.EffectiveLogLevel())
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	pf := cmd.PersistentFlags()
	pf.String("log-level", LogLevelInfo, "")
	pf.String("log-format", LogFormatText, "")
	pf.Bool("no-color", false, "")
	pf.Bool("quiet", false, "")
	pf.Int("workers", 0, "")

	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newTestCommand(), "")
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
}

func TestLoad_FromFlags(t *testing.T) {
	cmd := newTestCommand()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", LogLevelDebug))
	require.NoError(t, cmd.PersistentFlags().Set("workers", "4"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declvar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-format: json\nquiet: true\n"), 0o600))

	cfg, err := Load(newTestCommand(), path)
	require.NoError(t, err)

	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newTestCommand(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_InvalidValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declvar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: loud\n"), 0o600))

	_, err := Load(newTestCommand(), path)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestContextRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = LogLevelWarn

	ctx := NewContext(context.Background(), cfg)
	got := FromContext(ctx)
	assert.Equal(t, cfg, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, Default(), got)
}
