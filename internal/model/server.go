package model

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

type Options struct {
	ModelPath string
	// LibraryPath points at the onnxruntime shared library. Empty uses the
	// runtime's platform default.
	LibraryPath string
	Metadata    Metadata
	Logger      *slog.Logger
}

// Server owns a single ONNX session and its bound tensors. Infer calls are
// serialized because the session reuses the same input and output buffers.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	logger       *slog.Logger
	closed       bool
}

func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metadata := opts.Metadata
	if metadata.InputShape == nil {
		metadata = DefaultMetadata()
	}
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	modelData, err := os.ReadFile(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model %s: %v", ErrModelLoad, opts.ModelPath, err)
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrModelLoad, err)
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create input tensor: %v", ErrModelLoad, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create output tensor: %v", ErrModelLoad, err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(modelData,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrModelLoad, err)
	}

	if w := metadata.OutputWidth(); w != len(metadata.Classes) {
		logger.Warn("classifier output width differs from label count",
			"output_width", w, "classes", len(metadata.Classes))
	}

	return &Server{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		logger:       logger,
	}, nil
}

// Ready reports whether Infer can run.
func (s *Server) Ready() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && !s.closed
}

// Infer runs the classifier on t and returns a copy of the raw output.
func (s *Server) Infer(t Tensor) (ProbabilityVector, error) {
	if s == nil {
		return nil, ErrModelNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.closed {
		return nil, ErrModelNotReady
	}
	if !sameShape(t.Shape[:], s.Metadata.InputShape) || len(t.Data) != t.Len() {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrShapeMismatch, t.Shape, s.Metadata.InputShape)
	}

	copy(s.inputTensor.GetData(), t.Data)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := s.outputTensor.GetData()
	probs := make(ProbabilityVector, len(outputData))
	copy(probs, outputData)
	return probs, nil
}

// Close releases the session, its tensors and the runtime environment.
// Calling it more than once is a no-op.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if s.session != nil {
		s.session.Destroy()
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}

func sameShape(got []int64, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
