package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}, cfg.ModelChain)
	assert.Equal(t, 500*time.Millisecond, cfg.BackoffBase)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MaxContentLen, cfg.MaxContentLen)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"port": 9000,
		"brand_name": "Acme",
		"backoff_base_ms": 250,
		"model_chain": ["gemini-2.0-flash"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "Acme", cfg.BrandName)
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, []string{"gemini-2.0-flash"}, cfg.ModelChain)
	// Untouched values keep their defaults.
	assert.Equal(t, DefaultMaxContentLen, cfg.MaxContentLen)
	assert.Equal(t, "KiloCode", Default().BrandName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("ML_PORT", "7777")
	t.Setenv("GEMINI_GEN_MODEL", "gemini-custom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 7777, cfg.Port)
	require.NotEmpty(t, cfg.ModelChain)
	assert.Equal(t, "gemini-custom", cfg.ModelChain[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"comment bounds inverted", func(c *Config) { c.MinCommentLen = 900 }},
		{"routing bands inverted", func(c *Config) { c.ShortContentMax = 3000 }},
		{"empty model chain", func(c *Config) { c.ModelChain = nil }},
		{"missing brand", func(c *Config) { c.BrandName = "" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero content limit", func(c *Config) { c.MaxContentLen = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
