// Package preprocess turns decoded images into classifier input tensors.
package preprocess

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/Brownie44l1/plantdisease-api/internal/model"
)

// Preprocessor stretches an image to Size x Size and normalizes each
// R, G, B byte into [0, 1]. Aspect ratio is not preserved.
type Preprocessor struct {
	Size    int
	Resizer Resizer
}

// New returns a Preprocessor using the named resizer.
func New(size int, resampler string) (*Preprocessor, error) {
	r, err := NewResizer(resampler)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{Size: size, Resizer: r}, nil
}

var defaultPreprocessor = &Preprocessor{Size: model.DefaultImageSize, Resizer: imagingResizer{}}

// Preprocess converts img with the default 224x224 linear resize.
func Preprocess(img image.Image) model.Tensor {
	return defaultPreprocessor.Preprocess(img)
}

func (p *Preprocessor) Preprocess(img image.Image) model.Tensor {
	size := p.Size
	if size <= 0 {
		size = model.DefaultImageSize
	}
	tensor := model.NewTensor(size)

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return tensor
	}

	resizer := p.Resizer
	if resizer == nil {
		resizer = imagingResizer{}
	}
	resized := toNRGBA(resizer.Resize(img, size, size))

	for y := 0; y < size; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+size*4]
		for x := 0; x < size; x++ {
			px := row[x*4 : x*4+4]
			base := (y*size + x) * model.DefaultChannels
			tensor.Data[base+0] = float32(px[0]) / 255.0
			tensor.Data[base+1] = float32(px[1]) / 255.0
			tensor.Data[base+2] = float32(px[2]) / 255.0
		}
	}

	return tensor
}

// toNRGBA returns non-premultiplied 8-bit pixels with a zero origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
