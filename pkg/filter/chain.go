package filter

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Chain runs filters in order against the bound framebuffer.
type Chain struct {
	filters    []Filter
	frame      FrameRenderer
	hasFilters bool
	inited     bool
}

// NewChain builds a chain out of the caller's filters.
// If none of them renders frames, the default Identity filter
// is put in front of them.
func NewChain(filters ...Filter) (*Chain, error) {
	c := Chain{hasFilters: len(filters) > 0}

	for i, f := range filters {
		if f == nil {
			return nil, fmt.Errorf("%w: filter #%v is nil", ErrBadFilter, i)
		}
		if f.Kind() != FrameRender {
			continue
		}
		fr, ok := f.(FrameRenderer)
		if !ok {
			return nil, fmt.Errorf("%w: filter #%v (%T) can't take input frames", ErrBadFilter, i, f)
		}
		if c.frame != nil {
			return nil, fmt.Errorf("%w: more than one frame-render filter (#%v)", ErrBadFilter, i)
		}
		c.frame = fr
	}

	if c.frame == nil {
		c.frame = NewIdentity()
		c.filters = append(c.filters, c.frame)
	}
	c.filters = append(c.filters, filters...)
	return &c, nil
}

// HasFilters tells if the caller supplied any filters,
// regardless of the injected default.
func (c *Chain) HasFilters() bool { return c.hasFilters }

func (c *Chain) Len() int                     { return len(c.filters) }
func (c *Chain) Filters() []Filter            { return c.filters }
func (c *Chain) FrameRenderer() FrameRenderer { return c.frame }

// Init initializes every filter in order.
// Filters initialized before a failure are released.
func (c *Chain) Init() error {
	for i, f := range c.filters {
		if err := f.Init(); err != nil {
			for _, ff := range c.filters[:i] {
				ff.Release()
			}
			return fmt.Errorf("filter #%v (%v): %w", i, f.Kind(), err)
		}
	}
	c.inited = true
	return nil
}

func (c *Chain) SetTransform(mvp *mgl32.Mat4) {
	for _, f := range c.filters {
		f.SetTransform(mvp)
	}
}

func (c *Chain) SetInputFrame(texture, target uint32, st *mgl32.Mat4) {
	c.frame.SetInputFrame(texture, target, st)
}

func (c *Chain) Apply(pts time.Duration) {
	for _, f := range c.filters {
		f.Apply(pts)
	}
}

// Release frees all filters, repeated calls do nothing.
func (c *Chain) Release() {
	if !c.inited {
		return
	}
	for _, f := range c.filters {
		f.Release()
	}
	c.inited = false
}
