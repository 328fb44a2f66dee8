package model

const (
	DefaultImageSize  = 224
	DefaultChannels   = 3
	DefaultInputName  = "input"
	DefaultOutputName = "output"

	// DefaultOutputWidth is the number of float slots read back from the
	// classifier. It is one wider than the default label set.
	DefaultOutputWidth = 4
)

// DefaultClasses is the label set, index-aligned with the classifier output.
var DefaultClasses = []string{"Early Blight", "Late Blight", "Healthy"}

type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	InputName   string   `json:"input_name,omitempty"`
	OutputName  string   `json:"output_name,omitempty"`
}

// Tensor is a (1, H, W, 3) float32 image laid out NHWC, row-major by (y, x).
type Tensor struct {
	Shape [4]int64
	Data  []float32
}

// NewTensor allocates a zeroed tensor for a single size x size RGB image.
func NewTensor(size int) Tensor {
	return Tensor{
		Shape: [4]int64{1, int64(size), int64(size), DefaultChannels},
		Data:  make([]float32, size*size*DefaultChannels),
	}
}

// At returns channel c of the pixel at (x, y).
func (t Tensor) At(x, y, c int) float32 {
	w := int(t.Shape[2])
	ch := int(t.Shape[3])
	return t.Data[(y*w+x)*ch+c]
}

// Len is the number of elements implied by Shape.
func (t Tensor) Len() int {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return int(n)
}

// ProbabilityVector is the raw classifier output. No softmax is applied.
type ProbabilityVector []float32

type PredictionResult struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type PredictionResponse struct {
	ID          string             `json:"id,omitempty"`
	Class       string             `json:"class"`
	Confidence  float32            `json:"confidence"`
	Predictions map[string]float32 `json:"predictions"`
	Display     string             `json:"display"`
}
