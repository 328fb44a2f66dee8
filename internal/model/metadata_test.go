package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMetadata(t *testing.T) {
	m := DefaultMetadata()
	require.NoError(t, m.Validate())
	assert.Equal(t, []int64{1, 224, 224, 3}, m.InputShape)
	assert.Equal(t, 4, m.OutputWidth())
	assert.Equal(t, []string{"Early Blight", "Late Blight", "Healthy"}, m.Classes)

	// Mutating the copy must not leak into the package default.
	m.Classes[0] = "changed"
	assert.Equal(t, "Early Blight", DefaultClasses[0])
}

func TestLoadMetadataMissingFile(t *testing.T) {
	m, err := LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMetadata(), m)

	m, err = LoadMetadata("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetadata(), m)
}

func TestLoadMetadataOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	body := `{
		"input_shape": [1, 128, 128, 3],
		"output_shape": [1, 3],
		"classes": ["a", "b", "c"],
		"image_size": 128
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, 128, m.ImageSize)
	assert.Equal(t, 3, m.OutputWidth())
	assert.Equal(t, []string{"a", "b", "c"}, m.Classes)
	assert.Equal(t, DefaultInputName, m.InputName)
	assert.Equal(t, DefaultOutputName, m.OutputName)
}

func TestLoadMetadataInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err := LoadMetadata(bad)
	assert.Error(t, err)

	mismatch := filepath.Join(dir, "mismatch.json")
	require.NoError(t, os.WriteFile(mismatch, []byte(`{"image_size": 100}`), 0o644))
	_, err = LoadMetadata(mismatch)
	assert.ErrorContains(t, err, "does not match image size")
}

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
	}{
		{"three dims", func(m *Metadata) { m.InputShape = []int64{224, 224, 3} }},
		{"batch of two", func(m *Metadata) { m.InputShape = []int64{2, 224, 224, 3} }},
		{"channels first", func(m *Metadata) { m.InputShape = []int64{1, 3, 224, 224} }},
		{"no output", func(m *Metadata) { m.OutputShape = nil }},
		{"zero output", func(m *Metadata) { m.OutputShape = []int64{1, 0} }},
		{"no classes", func(m *Metadata) { m.Classes = nil }},
		{"no output name", func(m *Metadata) { m.OutputName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultMetadata()
			tt.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}
