package preprocess

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

const (
	ResamplerImaging = "imaging"
	ResamplerNfnt    = "nfnt"
	ResamplerLanczos = "lanczos"
	ResamplerXDraw   = "xdraw"

	DefaultResampler = ResamplerImaging
)

var ErrUnknownResampler = errors.New("unknown resampler")

// Resizer scales img to exactly w x h with smooth interpolation.
type Resizer interface {
	Resize(img image.Image, w, h int) image.Image
}

var resizers = map[string]Resizer{
	ResamplerImaging: imagingResizer{},
	ResamplerNfnt:    nfntResizer{interp: resize.Bilinear},
	ResamplerLanczos: nfntResizer{interp: resize.Lanczos3},
	ResamplerXDraw:   xdrawResizer{},
}

// NewResizer looks up a resizer by name. Empty selects DefaultResampler.
func NewResizer(name string) (Resizer, error) {
	if name == "" {
		name = DefaultResampler
	}
	r, ok := resizers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, want one of %v", ErrUnknownResampler, name, Resamplers())
	}
	return r, nil
}

// Resamplers lists the valid resizer names.
func Resamplers() []string {
	names := make([]string, 0, len(resizers))
	for name := range resizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type imagingResizer struct{}

func (imagingResizer) Resize(img image.Image, w, h int) image.Image {
	return imaging.Resize(img, w, h, imaging.Linear)
}

type nfntResizer struct {
	interp resize.InterpolationFunction
}

func (r nfntResizer) Resize(img image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), img, r.interp)
}

type xdrawResizer struct{}

func (xdrawResizer) Resize(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
