// Package filter holds the GPU draw operations applied to every frame
// and the ordered chain that runs them.
package filter

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the capability tag of a filter.
type Kind int

const (
	// Post filters draw on top of what earlier filters rendered.
	Post Kind = iota
	// FrameRender filters draw the producer's frame texture.
	// A chain runs exactly one of them.
	FrameRender
)

func (k Kind) String() string {
	switch k {
	case Post:
		return "post"
	case FrameRender:
		return "frame-render"
	}
	return "unknown"
}

var ErrBadFilter = errors.New("bad filter list")

// Filter is a GPU draw operation. All methods run on the GL thread and
// a filter must leave the GL state (program, blending, bound textures and
// buffers) as it found it.
type Filter interface {
	Kind() Kind
	// Init allocates the GPU program state.
	Init() error
	// SetTransform hands over the model-view-projection matrix.
	// The matrix is owned by the caller and stays unchanged after init.
	SetTransform(mvp *mgl32.Mat4)
	// Apply draws into the currently bound framebuffer.
	Apply(pts time.Duration)
	// Release frees the GPU program state.
	Release()
}

// FrameRenderer is implemented by FrameRender filters.
type FrameRenderer interface {
	Filter
	// SetInputFrame sets the producer texture and its texture-coordinate
	// transform for the next Apply. st is valid until Apply returns.
	SetInputFrame(texture, target uint32, st *mgl32.Mat4)
}
