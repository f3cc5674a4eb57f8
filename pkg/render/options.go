package render

import (
	"image/color"
	"time"

	"github.com/cloudretro/glthumb/pkg/geometry"
	"github.com/cloudretro/glthumb/pkg/logger"
)

type options struct {
	log          *logger.Logger
	metrics      *Metrics
	scale        int
	clearColor   color.RGBA
	frameTimeout time.Duration
}

type Option func(*options)

func defaultOptions() options {
	return options{
		log:        logger.Nop(),
		scale:      geometry.DefaultDivisor,
		clearColor: color.RGBA{A: 0xff},
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func WithMetrics(m *Metrics) Option { return func(o *options) { o.metrics = m } }

// WithScale sets the divisor of the source size, 4 by default.
func WithScale(d int) Option { return func(o *options) { o.scale = d } }

// WithClearColor sets the color the offscreen target is cleared with before filters run.
func WithClearColor(c color.RGBA) Option { return func(o *options) { o.clearColor = c } }

// WithFrameTimeout bounds the wait for a producer frame, zero waits forever.
func WithFrameTimeout(d time.Duration) Option { return func(o *options) { o.frameTimeout = d } }
