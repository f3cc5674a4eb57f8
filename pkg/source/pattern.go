package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var bars = []color.RGBA{
	{R: 192, G: 192, B: 192, A: 255},
	{R: 192, G: 192, A: 255},
	{G: 192, B: 192, A: 255},
	{G: 192, A: 255},
	{R: 192, B: 192, A: 255},
	{R: 192, A: 255},
	{B: 192, A: 255},
}

// Pattern is a synthetic decoder producing color bars with
// a moving box and the frame number.
type Pattern struct {
	W, H int
	FPS  int
}

// Frame draws frame n.
func (p Pattern) Frame(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.W, p.H))
	bw := p.W / len(bars)
	if bw == 0 {
		bw = 1
	}
	for i, c := range bars {
		r := image.Rect(i*bw, 0, (i+1)*bw, p.H)
		if i == len(bars)-1 {
			r.Max.X = p.W
		}
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	side := p.H / 6
	if side > 0 && side <= p.W {
		x := (n * 8) % (p.W - side + 1)
		box := image.Rect(x, p.H-side*2, x+side, p.H-side)
		draw.Draw(img, box, image.White, image.Point{}, draw.Src)
	}

	(&font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 8+basicfont.Face7x13.Ascent),
	}).DrawString(fmt.Sprintf("frame %d", n))
	return img
}

// PTS returns the presentation time of frame n.
func (p Pattern) PTS(n int) time.Duration {
	if p.FPS <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(p.FPS)
}

// Run publishes frames [0, count) into s, count < 0 means until ctx is done.
func (p Pattern) Run(ctx context.Context, s *Surface, count int) error {
	for n := 0; count < 0 || n < count; n++ {
		if err := s.Publish(ctx, Image{Pixels: p.Frame(n)}); err != nil {
			return err
		}
	}
	return nil
}
