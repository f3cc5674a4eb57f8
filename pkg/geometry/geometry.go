// Package geometry derives the fixed output size and the model-view-projection
// matrix of a renderer from the source frame format.
package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDivisor scales source frames down to a quarter of their size.
const DefaultDivisor = 4

var (
	ErrInvalidFormat       = errors.New("invalid source format")
	ErrUnsupportedRotation = errors.New("unsupported rotation")
)

// Format describes decoded source frames.
// Rotation is in degrees, clockwise, as reported by the decoder.
type Format struct {
	Width    int
	Height   int
	Rotation int
}

func (f Format) String() string { return fmt.Sprintf("%vx%v@%v", f.Width, f.Height, f.Rotation) }

// Validate checks that the frame has a size and a rotation
// that is one of 0, 90, 180 or 270 degrees.
func (f Format) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: no size in %v", ErrInvalidFormat, f)
	}
	switch f.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedRotation, f.Rotation)
	}
	return nil
}

// Sideways reports whether the frame is rotated a quarter turn.
func (f Format) Sideways() bool { return f.Rotation == 90 || f.Rotation == 270 }

// AspectRatio returns width/height of the unrotated source frame.
func (f Format) AspectRatio() float32 { return float32(f.Width) / float32(f.Height) }

// OutputSize returns the source size divided by d,
// with width and height swapped for 90 and 270 degree rotations.
func OutputSize(f Format, d int) (w, h int, err error) {
	if err = f.Validate(); err != nil {
		return 0, 0, err
	}
	if d < 1 {
		return 0, 0, fmt.Errorf("%w: divisor %v", ErrInvalidFormat, d)
	}
	w, h = f.Width/d, f.Height/d
	if f.Sideways() {
		w, h = h, w
	}
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("%w: %v is too small for 1/%v scale", ErrInvalidFormat, f, d)
	}
	return w, h, nil
}

// MVP returns an orthographic projection over [-aspect, aspect] x [-1, 1]
// combined with a camera at (0, 0, 1) looking at the origin with the up
// vector pointing down the Y axis.
func MVP(aspect float32) mgl32.Mat4 {
	projection := mgl32.Ortho(-aspect, aspect, -1, 1, -1, 1)
	view := mgl32.LookAt(
		0, 0, 1,
		0, 0, 0,
		0, -1, 0,
	)
	return projection.Mul4(view)
}

// Projection holds everything a renderer derives from the source format.
type Projection struct {
	Format
	OutW, OutH int
	Aspect     float32
	MVP        mgl32.Mat4
}

func Project(f Format, d int) (Projection, error) {
	w, h, err := OutputSize(f, d)
	if err != nil {
		return Projection{}, err
	}
	aspect := f.AspectRatio()
	return Projection{Format: f, OutW: w, OutH: h, Aspect: aspect, MVP: MVP(aspect)}, nil
}
