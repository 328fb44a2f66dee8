// Package pipeline runs one image through preprocessing, inference and
// decoding.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Brownie44l1/plantdisease-api/internal/model"
	"github.com/Brownie44l1/plantdisease-api/internal/preprocess"
)

var ErrImageDecode = errors.New("image decode failed")

// Predictor produces the raw probability vector for a tensor.
// *model.Server satisfies it.
type Predictor interface {
	Infer(t model.Tensor) (model.ProbabilityVector, error)
}

type Pipeline struct {
	Preprocessor *preprocess.Preprocessor
	Predictor    Predictor
	Labels       []string
}

// New wires a pipeline. A nil predictor is allowed and makes every
// classification fail with model.ErrModelNotReady.
func New(pre *preprocess.Preprocessor, predictor Predictor, labels []string) *Pipeline {
	if pre == nil {
		pre = &preprocess.Preprocessor{Size: model.DefaultImageSize}
	}
	if len(labels) == 0 {
		labels = model.DefaultClasses
	}
	return &Pipeline{
		Preprocessor: pre,
		Predictor:    predictor,
		Labels:       labels,
	}
}

func (p *Pipeline) Ready() bool {
	if p == nil || p.Predictor == nil {
		return false
	}
	if r, ok := p.Predictor.(interface{ Ready() bool }); ok {
		return r.Ready()
	}
	return true
}

// Classify preprocesses img and returns the decoded prediction along with
// the raw vector it was decoded from.
func (p *Pipeline) Classify(img image.Image) (*model.PredictionResult, model.ProbabilityVector, error) {
	if p == nil || p.Predictor == nil {
		return nil, nil, model.ErrModelNotReady
	}

	tensor := p.Preprocessor.Preprocess(img)
	return p.ClassifyTensor(tensor)
}

// ClassifyTensor skips preprocessing for callers that already hold a tensor.
func (p *Pipeline) ClassifyTensor(tensor model.Tensor) (*model.PredictionResult, model.ProbabilityVector, error) {
	if p == nil || p.Predictor == nil {
		return nil, nil, model.ErrModelNotReady
	}

	probs, err := p.Predictor.Infer(tensor)
	if err != nil {
		return nil, nil, err
	}

	result, err := model.Decode(probs, p.Labels)
	if err != nil {
		return nil, probs, err
	}
	return result, probs, nil
}

// ClassifyReader decodes an encoded image and classifies it.
func (p *Pipeline) ClassifyReader(r io.Reader) (*model.PredictionResult, model.ProbabilityVector, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, nil, err
	}
	return p.Classify(img)
}

// Decode reads any registered image format.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := DecodeWithFormat(r)
	return img, err
}

func DecodeWithFormat(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, format, nil
}

// Response builds the JSON body for a prediction.
func (p *Pipeline) Response(result *model.PredictionResult, probs model.ProbabilityVector) *model.PredictionResponse {
	return &model.PredictionResponse{
		Class:       result.Label,
		Confidence:  result.Probability,
		Predictions: model.Scores(probs, p.Labels),
		Display:     model.FormatResult(result),
	}
}
