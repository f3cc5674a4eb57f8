package graphics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

type Api int

const (
	ApiOpenGl Api = iota
	ApiOpenGlCore
)

func ParseApi(s string) (Api, error) {
	switch s {
	case "", "gl", "opengl":
		return ApiOpenGl, nil
	case "core":
		return ApiOpenGlCore, nil
	case "gles2", "es2":
		return 0, fmt.Errorf("unsupported graphics api: %v, the shaders are desktop GLSL 1.20", s)
	}
	return 0, fmt.Errorf("unsupported graphics api: %v", s)
}

type Config struct {
	Api          Api
	W, H         int
	VersionMajor int
	VersionMinor int
	Visible      bool
	VSync        bool
	Title        string
}

// Context is an SDL window with a GL context current on the calling thread.
// The window back buffer is the presentation surface.
type Context struct {
	w       *sdl.Window
	ctx     sdl.GLContext
	surface *Surface
}

// NewContext initializes SDL, opens a (hidden by default) window of the
// output size and makes its GL context current.
// Must be called on the thread that will do all the rendering.
func NewContext(cfg Config) (*Context, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	if err := setGLAttrs(cfg); err != nil {
		sdl.Quit()
		return nil, err
	}

	flags := uint32(sdl.WINDOW_OPENGL)
	if cfg.Visible {
		flags |= sdl.WINDOW_SHOWN
	} else {
		flags |= sdl.WINDOW_HIDDEN
	}
	title := cfg.Title
	if title == "" {
		title = "glthumb"
	}
	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.W), int32(cfg.H), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("window: %w", err)
	}

	ctx, err := w.GLCreateContext()
	if err != nil {
		err1 := w.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("gl context: %v, destroy err: %v", err, err1)
	}

	c := &Context{w: w, ctx: ctx}
	if err = c.BindContext(); err != nil {
		_ = c.Deinit()
		return nil, fmt.Errorf("gl bind: %w", err)
	}
	interval := 0
	if cfg.VSync {
		interval = 1
	}
	_ = sdl.GLSetSwapInterval(interval)

	if err = InitContext(sdl.GLGetProcAddress); err != nil {
		_ = c.Deinit()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	c.surface = &Surface{swap: w.GLSwap}
	return c, nil
}

func setGLAttrs(cfg Config) error {
	set := sdl.GLSetAttribute
	attrs := [][2]int{{sdl.GL_DOUBLEBUFFER, 1}}
	switch cfg.Api {
	case ApiOpenGlCore:
		attrs = append(attrs, [2]int{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE})
	case ApiOpenGl:
		if cfg.VersionMajor >= 3 {
			attrs = append(attrs, [2]int{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_COMPATIBILITY})
		}
	default:
		return fmt.Errorf("unsupported gl context: %v", cfg.Api)
	}
	if cfg.VersionMajor > 0 {
		attrs = append(attrs,
			[2]int{sdl.GL_CONTEXT_MAJOR_VERSION, cfg.VersionMajor},
			[2]int{sdl.GL_CONTEXT_MINOR_VERSION, cfg.VersionMinor},
		)
	}
	for _, a := range attrs {
		if err := set(sdl.GLattr(a[0]), a[1]); err != nil {
			return fmt.Errorf("gl attr %v: %w", a[0], err)
		}
	}
	return nil
}

// Surface returns the presentation surface of the window.
func (c *Context) Surface() *Surface { return c.surface }

func (c *Context) BindContext() error { return c.w.GLMakeCurrent(c.ctx) }

func (c *Context) Deinit() error {
	if c.surface != nil {
		_ = c.surface.Release()
	}
	sdl.GLDeleteContext(c.ctx)
	err := c.w.Destroy()
	sdl.Quit()
	return err
}

// TryInit checks whether a video subsystem is available at all.
func TryInit() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}
	sdl.Quit()
	return nil
}

var ErrSurfaceReleased = errors.New("surface released")

// Surface is the presentation side of the renderer:
// a timestamp followed by a buffer swap per frame.
type Surface struct {
	mu       sync.Mutex
	pts      time.Duration
	frames   uint64
	released bool
	swap     func()
}

// NewSurface wraps a swap function, i.e. a window or an encoder input.
func NewSurface(swap func()) *Surface { return &Surface{swap: swap} }

// SetPresentationTime tags the next swapped buffer.
// Desktop windows have no presentation-time extension so the value is only kept.
func (s *Surface) SetPresentationTime(pts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrSurfaceReleased
	}
	s.pts = pts
	return nil
}

func (s *Surface) SwapBuffers() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrSurfaceReleased
	}
	if s.swap != nil {
		s.swap()
	}
	s.frames++
	return nil
}

// Last returns the timestamp of the last presented buffer and the number of swaps.
func (s *Surface) Last() (time.Duration, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pts, s.frames
}

func (s *Surface) Release() error {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return nil
}
