// Package extract renders a list of timestamps into thumbnails
// and reports the progress to a listener.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/cloudretro/glthumb/pkg/render"
	"github.com/gofrs/uuid"
)

var ErrNoThumbnail = errors.New("frame was not captured")

// Listener receives extraction events.
// OnExtracted is not guaranteed to be called for every timestamp.
type Listener interface {
	OnStarted(id string, timestamps []time.Duration)
	OnExtracted(id string, index int, img *image.RGBA)
	OnCompleted(id string)
	OnCancelled(id string)
	OnError(id string, err error)
}

// Listeners fans events out in order.
type Listeners []Listener

func (ls Listeners) OnStarted(id string, ts []time.Duration) {
	for _, l := range ls {
		l.OnStarted(id, ts)
	}
}

func (ls Listeners) OnExtracted(id string, index int, img *image.RGBA) {
	for _, l := range ls {
		l.OnExtracted(id, index, img)
	}
}

func (ls Listeners) OnCompleted(id string) {
	for _, l := range ls {
		l.OnCompleted(id)
	}
}

func (ls Listeners) OnCancelled(id string) {
	for _, l := range ls {
		l.OnCancelled(id)
	}
}

func (ls Listeners) OnError(id string, err error) {
	for _, l := range ls {
		l.OnError(id, err)
	}
}

type Job struct {
	ID         string
	Timestamps []time.Duration
}

func NewJob(timestamps []time.Duration) Job {
	return Job{ID: uuid.Must(uuid.NewV4()).String(), Timestamps: timestamps}
}

// Timestamps returns n timestamps interval apart, starting at zero.
func Timestamps(n int, interval time.Duration) []time.Duration {
	ts := make([]time.Duration, n)
	for i := range ts {
		ts[i] = time.Duration(i) * interval
	}
	return ts
}

// Frames renders a frame and returns its thumbnail.
type Frames interface {
	Frame(ctx context.Context, pts time.Duration) (*image.RGBA, error)
}

// Capture turns the thumbnail callback of a renderer into Frames.
// Its OnThumbnail method is the listener given to render.New.
type Capture struct {
	Renderer *render.Renderer
	last     *render.Thumbnail
}

func (c *Capture) OnThumbnail(th render.Thumbnail) { c.last = &th }

func (c *Capture) Frame(ctx context.Context, pts time.Duration) (*image.RGBA, error) {
	c.last = nil
	if err := c.Renderer.RenderFrame(ctx, pts); err != nil {
		return nil, err
	}
	if c.last == nil || c.last.PTS != pts {
		return nil, fmt.Errorf("%w: %v", ErrNoThumbnail, pts)
	}
	return c.last.Image, nil
}

// Run renders every timestamp of the job in order.
// It stops at the first error without retrying.
// Must be called on the render thread.
func Run(ctx context.Context, job Job, frames Frames, l Listener) error {
	l.OnStarted(job.ID, job.Timestamps)
	for i, ts := range job.Timestamps {
		if err := ctx.Err(); err != nil {
			l.OnCancelled(job.ID)
			return err
		}
		img, err := frames.Frame(ctx, ts)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.OnCancelled(job.ID)
			} else {
				l.OnError(job.ID, err)
			}
			return err
		}
		l.OnExtracted(job.ID, i, img)
	}
	l.OnCompleted(job.ID)
	return nil
}
