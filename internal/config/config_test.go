package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/plantdisease-api/internal/preprocess"
)

var envKeys = []string{"PORT", "MODEL_PATH", "METADATA_PATH", "ONNXRUNTIME_LIB", "RESAMPLER", "LOG_LEVEL", "MAX_UPLOAD_BYTES"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, preprocess.ResamplerImaging, cfg.Resampler)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"port": "9000", "model_path": "/srv/model.onnx", "resampler": "xdraw"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/srv/model.onnx", cfg.ModelPath)
	assert.Equal(t, "xdraw", cfg.Resampler)
	assert.Equal(t, "models/model_metadata.json", cfg.MetadataPath)

	t.Setenv("PORT", "7000")
	t.Setenv("RESAMPLER", "lanczos")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "lanczos", cfg.Resampler)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, "/srv/model.onnx", cfg.ModelPath)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MODEL_PATH":      "a.onnx",
		"ONNXRUNTIME_LIB": "/usr/lib/libonnxruntime.so",
		"LOG_LEVEL":       "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "a.onnx", cfg.ModelPath)
	assert.Equal(t, "/usr/lib/libonnxruntime.so", cfg.OnnxLibraryPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)

	env["MAX_UPLOAD_BYTES"] = "lots"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestLoadBadJSON(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `{"port": 8080`))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty model", func(c *Config) { c.ModelPath = "" }},
		{"unknown resampler", func(c *Config) { c.Resampler = "bicubic" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	c := DefaultConfig()
	c.Resampler = "bicubic"
	assert.ErrorIs(t, c.Validate(), preprocess.ErrUnknownResampler)
	assert.NoError(t, DefaultConfig().Validate())
}
