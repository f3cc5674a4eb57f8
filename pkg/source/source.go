// Package source is the producer side of the renderer: decoded frames are
// handed over through a single-slot rendezvous and latched into the input
// texture on the render thread.
package source

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrReleased = errors.New("input surface released")
	ErrTimeout  = errors.New("no new frame in time")
	ErrNoPixels = errors.New("no pixels")
)

// TopFirst is the texture transform for images uploaded with the top row first.
// It turns the frame half a revolution so that, after the camera flip of the
// projection and the bottom-up readback, captured rows come out top-first.
var TopFirst = mgl32.Translate3D(1, 1, 0).Mul4(mgl32.Scale3D(-1, -1, 1))

// Image is one decoded frame.
type Image struct {
	Pixels *image.RGBA
	// Transform maps quad texture coordinates into the image,
	// nil means TopFirst.
	Transform *mgl32.Mat4
}

// Texture is the input texture frames are latched into.
type Texture interface {
	ID() uint32
	Target() uint32
	Upload(img *image.RGBA) error
	Delete()
}

// Surface is the input surface of a renderer.
// Producers call Publish from any goroutine, the render thread calls
// AwaitNewImage and reads the latched texture and transform.
type Surface struct {
	tex     Texture
	slot    chan Image
	done    chan struct{}
	once    sync.Once
	timeout time.Duration

	transform mgl32.Mat4
}

// NewSurface wraps tex. A zero timeout makes AwaitNewImage wait
// until a frame arrives or the context is done.
func NewSurface(tex Texture, timeout time.Duration) *Surface {
	return &Surface{
		tex:       tex,
		slot:      make(chan Image, 1),
		done:      make(chan struct{}),
		timeout:   timeout,
		transform: TopFirst,
	}
}

// Publish hands a frame over to the renderer.
// It blocks while the previous frame has not been taken yet.
func (s *Surface) Publish(ctx context.Context, img Image) error {
	if img.Pixels == nil {
		return ErrNoPixels
	}
	select {
	case <-s.done:
		return ErrReleased
	default:
	}
	select {
	case s.slot <- img:
		return nil
	case <-s.done:
		return ErrReleased
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitNewImage blocks until a frame is published and latches it into the texture.
// Must be called on the GL thread.
func (s *Surface) AwaitNewImage(ctx context.Context) error {
	var timeout <-chan time.Time
	if s.timeout > 0 {
		t := time.NewTimer(s.timeout)
		defer t.Stop()
		timeout = t.C
	}

	var img Image
	select {
	case img = <-s.slot:
	case <-s.done:
		return ErrReleased
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return ErrTimeout
	}

	if err := s.tex.Upload(img.Pixels); err != nil {
		return err
	}
	if img.Transform != nil {
		s.transform = *img.Transform
	} else {
		s.transform = TopFirst
	}
	return nil
}

func (s *Surface) TextureID() uint32 { return s.tex.ID() }
func (s *Surface) Target() uint32    { return s.tex.Target() }

// TransformMatrix copies the transform of the latched frame into m.
func (s *Surface) TransformMatrix(m *mgl32.Mat4) { *m = s.transform }

// Release unblocks producers and deletes the input texture.
// Must be called on the GL thread.
func (s *Surface) Release() {
	s.once.Do(func() {
		close(s.done)
		s.tex.Delete()
	})
}
