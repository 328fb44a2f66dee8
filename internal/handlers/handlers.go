package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdisease-api/internal/model"
	"github.com/Brownie44l1/plantdisease-api/internal/pipeline"
)

type Handler struct {
	pipeline       *pipeline.Pipeline
	inputShape     []int64
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(p *pipeline.Pipeline, inputShape []int64, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		pipeline:       p,
		inputShape:     inputShape,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)
	r.POST("/predict/image", h.PredictFromImage)
}

func (h *Handler) Health(c *gin.Context) {
	ready := h.pipeline.Ready()
	status := "healthy"
	if !ready {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "model_ready": ready})
}

// Predict classifies a tensor that the client already preprocessed.
func (h *Handler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	expectedSize := int64(1)
	for _, dim := range h.inputShape {
		expectedSize *= dim
	}

	if int64(len(req.Image)) != expectedSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Expected %d values, got %d", expectedSize, len(req.Image)),
		})
		return
	}

	tensor := model.Tensor{Data: req.Image}
	copy(tensor.Shape[:], h.inputShape)

	result, probs, err := h.pipeline.ClassifyTensor(tensor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, result, probs)
}

func (h *Handler) PredictFromImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided. Use 'image' as the form field name"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", pipeline.ErrImageDecode, err))
		return
	}
	defer file.Close()

	log := h.logger.With("request_id", requestID(c))
	log.Debug("received file", "filename", header.Filename, "size", header.Size)

	img, format, err := pipeline.DecodeWithFormat(file)
	if err != nil {
		h.fail(c, err)
		return
	}

	log.Debug("decoded image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	result, probs, err := h.pipeline.Classify(img)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, result, probs)
}

func (h *Handler) respond(c *gin.Context, result *model.PredictionResult, probs model.ProbabilityVector) {
	resp := h.pipeline.Response(result, probs)
	resp.ID = requestID(c)

	h.logger.Info("classification result",
		"request_id", resp.ID, "label", result.Label, "probability", result.Probability)

	if wantsText(c) {
		c.String(http.StatusOK, resp.Display)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// fail maps pipeline errors to HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Prediction failed"

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		status, msg = http.StatusRequestEntityTooLarge, "Image too large"
	case errors.Is(err, pipeline.ErrImageDecode):
		status, msg = http.StatusBadRequest, "Invalid image format. Supported: JPEG, PNG, GIF, BMP, TIFF, WebP"
	case errors.Is(err, model.ErrShapeMismatch):
		status, msg = http.StatusBadRequest, "Tensor shape does not match model input"
	case errors.Is(err, model.ErrModelNotReady):
		status, msg = http.StatusServiceUnavailable, "Model not ready"
	case errors.Is(err, model.ErrUnlabeledClass):
		msg = "Model predicted a class without a label"
	}

	h.logger.Error("prediction error", "request_id", requestID(c), "status", status, "error", err)
	c.JSON(status, gin.H{"error": msg})
}

func wantsText(c *gin.Context) bool {
	if c.Query("format") == "text" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.HasPrefix(accept, "text/plain")
}
