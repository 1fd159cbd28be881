package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotext/internal/index"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, index.AnalyzerStandard, cfg.Index.DefaultAnalyzer)

	body, ok := cfg.Index.Field("body")
	require.True(t, ok)
	assert.Equal(t, index.FieldTypeAnnotatedText, body.Type)
	assert.Equal(t, index.DefaultPositionIncrementGap, body.Gap())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9200
  write_timeout: 5s
log:
  level: debug
metrics:
  annotation_types: [person, org]
index:
  default_analyzer: whitespace
  fields:
    - name: title
      type: text
      indexed: true
    - name: story
      type: annotated_text
      indexed: true
      stored: true
      multi_valued: true
      position_increment_gap: 10
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"person", "org"}, cfg.Metrics.AnnotationTypes)
	assert.Equal(t, index.AnalyzerWhitespace, cfg.Index.DefaultAnalyzer)

	require.Len(t, cfg.Index.Fields, 2, "file fields replace the default list")
	story, ok := cfg.Index.Field("story")
	require.True(t, ok)
	assert.Equal(t, 10, story.Gap())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("ANNOTEXT__SERVER__PORT", "9100")
	t.Setenv("ANNOTEXT__CACHE__SIZE", "0")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Cache.Size)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("ANNOTEXT__SERVER__PORT", "9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "9300"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level, "unset flags do not override")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("ANNOTEXT__SERVER__PORT", "70000")
		_, err := Load("", nil)
		assert.ErrorIs(t, err, ErrInvalidPort)
	})
	t.Run("log level", func(t *testing.T) {
		t.Setenv("ANNOTEXT__LOG__LEVEL", "loud")
		_, err := Load("", nil)
		assert.ErrorIs(t, err, ErrInvalidLogLevel)
	})
	t.Run("schema", func(t *testing.T) {
		path := writeConfig(t, "index:\n  fields:\n    - name: body\n      type: nope\n")
		_, err := Load(path, nil)
		assert.ErrorIs(t, err, index.ErrSchemaInvalidType)
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLogLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
