// Package app wires configuration, the model and the pipeline together for
// the server and CLI entry points.
package app

import (
	"fmt"
	"log/slog"

	"github.com/Brownie44l1/plantdisease-api/internal/config"
	"github.com/Brownie44l1/plantdisease-api/internal/model"
	"github.com/Brownie44l1/plantdisease-api/internal/pipeline"
	"github.com/Brownie44l1/plantdisease-api/internal/preprocess"
)

type App struct {
	Config   *config.Config
	Metadata model.Metadata
	Pipeline *pipeline.Pipeline
	// ModelErr is set when the model could not be loaded. The pipeline is
	// still usable and reports model.ErrModelNotReady.
	ModelErr error

	model *model.Server
}

// loadModel is swapped in tests.
var loadModel = model.NewServer

// New builds the App. Bad metadata or preprocessing settings are returned as
// errors; a model that fails to load is logged and left unset.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	metadata, err := model.LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	pre, err := preprocess.New(metadata.ImageSize, cfg.Resampler)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Metadata: metadata}

	logger.Info("loading model", "path", cfg.ModelPath)
	srv, err := loadModel(model.Options{
		ModelPath:   cfg.ModelPath,
		LibraryPath: cfg.OnnxLibraryPath,
		Metadata:    metadata,
		Logger:      logger,
	})

	var predictor pipeline.Predictor
	if err != nil {
		logger.Error("error loading model", "path", cfg.ModelPath, "error", err)
		a.ModelErr = err
	} else {
		a.model = srv
		predictor = srv
		logger.Info("model loaded", "path", cfg.ModelPath, "classes", metadata.Classes)
	}

	a.Pipeline = pipeline.New(pre, predictor, metadata.Classes)
	return a, nil
}

// Close releases the model. Safe to call when the model never loaded.
func (a *App) Close() {
	if a.model != nil {
		a.model.Close()
	}
}
