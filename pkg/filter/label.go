package filter

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label stamps the frame timestamp over the frame.
type Label struct {
	Overlay

	canvas *image.RGBA
	last   string
}

const labelText = "00:00:00.000"

var DefaultLabelRect = Rect{X: 0.02, Y: 0.02, W: 0.3, H: 0.08}

func NewLabel(textures Textures, rect Rect) *Label {
	face := basicfont.Face7x13
	w := len(labelText)*face.Advance + 4
	h := face.Height + 2
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Label{
		Overlay: Overlay{textures: textures, img: canvas, rect: rect, alpha: 1, mvp: &identity},
		canvas:  canvas,
	}
}

func (l *Label) Init() error { return l.Overlay.init(l.canvas) }

func (l *Label) Apply(pts time.Duration) {
	if text := TimeFormat(pts); text != l.last {
		drawLabel(l.canvas, text)
		// the canvas and its texture are sized once in NewLabel
		if err := l.texture.Upload(l.canvas); err != nil {
			panic(fmt.Sprintf("label texture upload: %v", err))
		}
		l.last = text
	}
	l.apply()
}

func drawLabel(img *image.RGBA, label string) {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{A: 160}}, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(basicfont.Face7x13.Ascent + 1)},
	}).DrawString(label)
}

// TimeFormat prints d as hh:mm:ss.mmm.
func TimeFormat(d time.Duration) string {
	mms := int(d.Milliseconds())
	ms := mms % 1000
	s := (mms / 1000) % 60
	m := (mms / (1000 * 60)) % 60
	h := mms / (1000 * 60 * 60)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
