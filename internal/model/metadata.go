package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultMetadata describes the bundled potato leaf classifier.
func DefaultMetadata() Metadata {
	return Metadata{
		InputShape:  []int64{1, DefaultImageSize, DefaultImageSize, DefaultChannels},
		OutputShape: []int64{1, DefaultOutputWidth},
		Classes:     append([]string(nil), DefaultClasses...),
		ImageSize:   DefaultImageSize,
		InputName:   DefaultInputName,
		OutputName:  DefaultOutputName,
	}
}

// LoadMetadata reads a metadata file. A missing file yields DefaultMetadata,
// and fields absent from the file keep their defaults.
func LoadMetadata(path string) (Metadata, error) {
	metadata := DefaultMetadata()
	if path == "" {
		return metadata, nil
	}

	metaFile, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return metadata, nil
		}
		return metadata, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return DefaultMetadata(), fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := metadata.Validate(); err != nil {
		return DefaultMetadata(), err
	}
	return metadata, nil
}

// Validate checks that the input shape is a single square RGB image that
// agrees with ImageSize. The output width is not checked
// against the label count.
func (m Metadata) Validate() error {
	if len(m.InputShape) != 4 {
		return fmt.Errorf("input shape must have 4 dimensions, got %v", m.InputShape)
	}
	if m.InputShape[0] != 1 || m.InputShape[3] != DefaultChannels {
		return fmt.Errorf("input shape must be (1, H, W, 3), got %v", m.InputShape)
	}
	if m.ImageSize <= 0 || m.InputShape[1] != int64(m.ImageSize) || m.InputShape[2] != int64(m.ImageSize) {
		return fmt.Errorf("input shape %v does not match image size %d", m.InputShape, m.ImageSize)
	}
	if len(m.OutputShape) == 0 {
		return errors.New("output shape is empty")
	}
	for _, d := range m.OutputShape {
		if d <= 0 {
			return fmt.Errorf("output shape has non-positive dimension: %v", m.OutputShape)
		}
	}
	if len(m.Classes) == 0 {
		return errors.New("metadata has no classes")
	}
	if m.InputName == "" || m.OutputName == "" {
		return errors.New("tensor names must not be empty")
	}
	return nil
}

// OutputWidth is the number of classifier slots per image.
func (m Metadata) OutputWidth() int {
	n := int64(1)
	for _, d := range m.OutputShape {
		n *= d
	}
	return int(n)
}
