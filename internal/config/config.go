package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Brownie44l1/plantdisease-api/internal/logging"
	"github.com/Brownie44l1/plantdisease-api/internal/preprocess"
)

// Config holds runtime settings for the server and the CLI.
// Values come from an optional JSON file and are overridden by environment
// variables.
type Config struct {
	Port         string `json:"port"`
	ModelPath    string `json:"model_path"`
	MetadataPath string `json:"metadata_path"`
	// OnnxLibraryPath is the onnxruntime shared library. Empty uses the
	// runtime default lookup.
	OnnxLibraryPath string `json:"onnx_library_path"`
	Resampler       string `json:"resampler"`
	LogLevel        string `json:"log_level"`
	MaxUploadBytes  int64  `json:"max_upload_bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		ModelPath:      "models/cnn_model.onnx",
		MetadataPath:   "models/model_metadata.json",
		Resampler:      preprocess.DefaultResampler,
		LogLevel:       "info",
		MaxUploadBytes: 10 << 20,
	}
}

// Load reads path if it exists, applies environment overrides and validates
// the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PORT":            &c.Port,
		"MODEL_PATH":      &c.ModelPath,
		"METADATA_PATH":   &c.MetadataPath,
		"ONNXRUNTIME_LIB": &c.OnnxLibraryPath,
		"RESAMPLER":       &c.Resampler,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.ModelPath == "" {
		return errors.New("model_path must not be empty")
	}
	if _, err := preprocess.NewResizer(c.Resampler); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}
