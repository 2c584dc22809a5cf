package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dreamsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: "127.0.0.1:9090"
style: ansi
read_limit: 1024
shutdown_timeout: 2s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, "ansi", cfg.Style)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
	assert.Equal(t, int64(1024), cfg.ReadLimit)

	d, err := cfg.Shutdown()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DREAMSEARCH_ADDR", ":7070")
	t.Setenv("DREAMSEARCH_STYLE", "html")
	t.Setenv("DREAMSEARCH_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "dreamsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0644))

	for _, p := range []string{path, filepath.Join(t.TempDir(), "absent.yaml")} {
		cfg, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Addr)
		assert.Equal(t, "html", cfg.Style)
		assert.Equal(t, "debug", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"unknown style", func(c *Config) { c.Style = "neon" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero read limit", func(c *Config) { c.ReadLimit = 0 }},
		{"bad timeout", func(c *Config) { c.ShutdownTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.ShutdownTimeout = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_Styles(t *testing.T) {
	for _, style := range []string{"", "plain", "ansi", "html"} {
		cfg := DefaultConfig()
		cfg.Style = style
		assert.NoError(t, cfg.Validate(), "style %q", style)
	}

	cfg := DefaultConfig()
	cfg.Style = "neon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown style")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dreamsearch.yaml")
	cfg := DefaultConfig()
	cfg.Addr = ":1234"
	cfg.Style = "html"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
