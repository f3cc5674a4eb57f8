// Package render drives the per-frame path: it waits for a producer frame,
// runs the filter chain into an offscreen target at a reduced size, copies
// the pixels back to the CPU as a thumbnail and then presents the frame to
// the output surface.
package render

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/cloudretro/glthumb/pkg/filter"
	"github.com/cloudretro/glthumb/pkg/geometry"
	"github.com/cloudretro/glthumb/pkg/graphics"
	"github.com/cloudretro/glthumb/pkg/source"
	"github.com/go-gl/mathgl/mgl32"
)

// Output is the surface frames are presented to.
type Output interface {
	SetPresentationTime(pts time.Duration) error
	SwapBuffers() error
	Release() error
}

// Thumbnail is a captured frame.
// Rows are top-first when the producer uses the default transform.
type Thumbnail struct {
	PTS   time.Duration
	Image *image.RGBA
}

type State int

const (
	Uninitialized State = iota
	Initialized
	WaitingForFrame
	Bound
	Filtered
	Captured
	Presented
	Released
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case WaitingForFrame:
		return "waiting"
	case Bound:
		return "bound"
	case Filtered:
		return "filtered"
	case Captured:
		return "captured"
	case Presented:
		return "presented"
	case Released:
		return "released"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Renderer renders producer frames through a filter chain, captures
// every frame and presents it. All methods except InputSurface().Publish
// must be called on the GL thread.
type Renderer struct {
	options

	dev         graphics.Device
	chain       *filter.Chain
	onThumbnail func(Thumbnail)

	state   State
	failure error

	proj      geometry.Projection
	inputTex  graphics.Texture
	input     *source.Surface
	out       Output
	offscreen graphics.Texture
	fbo       graphics.Framebuffer
	buf       PixelBuffer
	st        mgl32.Mat4
}

// New checks the collaborators and builds the filter chain.
// No GPU resources are allocated until Init.
func New(dev graphics.Device, filters []filter.Filter, onThumbnail func(Thumbnail), opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: no graphics device", ErrConfiguration)
	}
	if onThumbnail == nil {
		return nil, fmt.Errorf("%w: no thumbnail listener", ErrConfiguration)
	}
	chain, err := filter.NewChain(filters...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	r := Renderer{options: defaultOptions(), dev: dev, chain: chain, onThumbnail: onThumbnail}
	for _, opt := range opts {
		opt(&r.options)
	}
	r.log = r.log.Module("render")
	return &r, nil
}

// Init allocates the GPU resources for the given source format
// and takes ownership of the output surface.
func (r *Renderer) Init(out Output, format *geometry.Format) error {
	switch r.state {
	case Uninitialized:
	case Released:
		return ErrReleased
	default:
		return fmt.Errorf("%w: init in %v", ErrState, r.state)
	}
	if out == nil {
		return fmt.Errorf("%w: no output surface", ErrConfiguration)
	}
	if format == nil {
		return fmt.Errorf("%w: no source format", ErrConfiguration)
	}
	proj, err := geometry.Project(*format, r.scale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	r.proj = proj

	if err := r.alloc(); err != nil {
		r.free()
		return r.fail(err)
	}
	r.out = out
	r.state = Initialized
	r.log.Info().
		Str("format", format.String()).
		Int("w", proj.OutW).Int("h", proj.OutH).
		Int("filters", r.chain.Len()).
		Msg("Renderer is ready")
	return nil
}

func (r *Renderer) alloc() (err error) {
	if r.inputTex, err = r.dev.NewTexture(r.proj.Width, r.proj.Height); err != nil {
		return fmt.Errorf("%w: input texture: %w", ErrResource, err)
	}
	r.input = source.NewSurface(r.inputTex, r.frameTimeout)
	if r.offscreen, err = r.dev.NewTexture(r.proj.OutW, r.proj.OutH); err != nil {
		return fmt.Errorf("%w: offscreen texture: %w", ErrResource, err)
	}
	if r.fbo, err = r.dev.NewFramebuffer(); err != nil {
		return fmt.Errorf("%w: framebuffer: %w", ErrResource, err)
	}
	if err = r.fbo.AttachTexture(r.offscreen); err != nil {
		return fmt.Errorf("%w: attach: %w", ErrResource, err)
	}
	if err = r.chain.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrResource, err)
	}
	r.chain.SetTransform(&r.proj.MVP)
	return nil
}

// free deletes whatever has been allocated so far.
func (r *Renderer) free() {
	r.chain.Release()
	if r.input != nil {
		r.input.Release()
		r.input, r.inputTex = nil, nil
	} else if r.inputTex != nil {
		r.inputTex.Delete()
		r.inputTex = nil
	}
	if r.fbo != nil {
		r.fbo.Delete()
		r.fbo = nil
	}
	if r.offscreen != nil {
		r.offscreen.Delete()
		r.offscreen = nil
	}
	r.buf.Free()
}

func (r *Renderer) fail(err error) error {
	r.state, r.failure = Failed, err
	if r.metrics != nil {
		r.metrics.Failures.Inc()
	}
	r.log.Error().Err(err).Msg("Renderer failed")
	return err
}

// InputSurface returns the producer side of the renderer, nil before Init.
func (r *Renderer) InputSurface() *source.Surface { return r.input }

// RenderFrame waits for the next producer frame, renders and captures it,
// hands the thumbnail to the listener and then presents the frame with pts.
// A timeout or cancellation while waiting leaves the renderer usable.
func (r *Renderer) RenderFrame(ctx context.Context, pts time.Duration) error {
	switch r.state {
	case Initialized, Presented:
	case Uninitialized:
		return ErrNotInitialized
	case Released:
		return ErrReleased
	case Failed:
		return r.failure
	default:
		return fmt.Errorf("%w: render in %v", ErrState, r.state)
	}

	r.state = WaitingForFrame
	start := time.Now()
	err := r.input.AwaitNewImage(ctx)
	if r.metrics != nil {
		r.metrics.Wait.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		r.state = Initialized
		r.log.Debug().Err(err).Dur("pts", pts).Msg("No frame")
		return err
	}

	start = time.Now()
	w, h := r.proj.OutW, r.proj.OutH
	r.fbo.Bind()
	r.state = Bound
	r.input.TransformMatrix(&r.st)
	r.dev.Clear(r.clearColor)
	r.chain.SetInputFrame(r.input.TextureID(), r.input.Target(), &r.st)
	r.chain.Apply(pts)
	r.state = Filtered

	r.dev.Finish()
	px := r.buf.Get(w, h)
	err = r.dev.ReadPixels(w, h, px)
	if err == nil {
		err = r.dev.Err()
	}
	if err != nil {
		r.fbo.Unbind()
		return r.fail(fmt.Errorf("%w: frame %v: %v", ErrContext, pts, err))
	}
	if r.metrics != nil {
		r.metrics.Capture.Observe(time.Since(start).Seconds())
	}
	r.state = Captured
	r.onThumbnail(Thumbnail{PTS: pts, Image: r.buf.Image(w, h)})

	r.fbo.Unbind()
	r.fbo.Blit()
	if err = r.out.SetPresentationTime(pts); err != nil {
		return r.fail(fmt.Errorf("%w: presentation time: %v", ErrContext, err))
	}
	if err = r.out.SwapBuffers(); err != nil {
		return r.fail(fmt.Errorf("%w: swap: %v", ErrContext, err))
	}
	r.state = Presented
	if r.metrics != nil {
		r.metrics.Frames.Inc()
	}
	r.log.Debug().Dur("pts", pts).Msg("Frame")
	return nil
}

// Release frees the filters, the input and output surfaces and the offscreen
// target, in that order. Calls after the first one do nothing.
func (r *Renderer) Release() error {
	if r.state == Released {
		return nil
	}
	var err error
	r.chain.Release()
	if r.input != nil {
		r.input.Release()
		r.input, r.inputTex = nil, nil
	}
	if r.out != nil {
		if err = r.out.Release(); err != nil {
			err = fmt.Errorf("output release: %w", err)
		}
		r.out = nil
	}
	r.free()
	r.state = Released
	r.log.Info().Msg("Renderer is released")
	return err
}

// HasFilters tells if any filters were given to New.
func (r *Renderer) HasFilters() bool { return r.chain.HasFilters() }

// OutputSize returns the size of captured frames, zeros before Init.
func (r *Renderer) OutputSize() (w, h int) { return r.proj.OutW, r.proj.OutH }

func (r *Renderer) State() State { return r.state }
