// Package filter holds the pluggable image transformations applied to
// every extracted frame. Adding a filter means implementing Filter and
// registering it in Defaults.
package filter

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Filter is a named image transformation. Apply returns a new Mat the
// caller owns and must close.
type Filter interface {
	Name() string
	Apply(src gocv.Mat) gocv.Mat
}

// Defaults is the fixed filter set, built once at startup.
func Defaults(brightnessBoost float64) []Filter {
	return []Filter{
		Grayscale{},
		HalfResize{},
		Brightness{Beta: brightnessBoost},
		Rotation{Angle: 45},
		Rotation{Angle: 90},
		Rotation{Angle: 180},
	}
}

// Grayscale converts a frame to single-channel gray.
type Grayscale struct{}

func (Grayscale) Name() string { return "gray" }

func (Grayscale) Apply(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// HalfResize scales a frame down to half its width and height.
type HalfResize struct{}

func (HalfResize) Name() string { return "small" }

func (HalfResize) Apply(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Pt(src.Cols()/2, src.Rows()/2), 0, 0, gocv.InterpolationLinear)
	return dst
}

// Brightness adds a constant offset to every pixel.
type Brightness struct {
	Beta float64
}

func (Brightness) Name() string { return "bright" }

func (b Brightness) Apply(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	src.ConvertToWithParams(&dst, src.Type(), 1, float32(b.Beta))
	return dst
}

// Rotation rotates a frame around its center by a fixed angle, keeping
// the original canvas size.
type Rotation struct {
	Angle float64
}

func (r Rotation) Name() string { return fmt.Sprintf("rot%g", r.Angle) }

func (r Rotation) Apply(src gocv.Mat) gocv.Mat {
	center := image.Pt(src.Cols()/2, src.Rows()/2)
	m := gocv.GetRotationMatrix2D(center, r.Angle, 1.0)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpAffine(src, &dst, m, image.Pt(src.Cols(), src.Rows()))
	return dst
}
