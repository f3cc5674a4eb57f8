package filter

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/cloudretro/glthumb/pkg/graphics"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// MaxOverlaySide caps overlay textures, bigger images are scaled down on upload.
const MaxOverlaySide = 1024

// Rect is an area of the captured image in fractions of its size,
// the origin is the top-left corner.
type Rect struct{ X, Y, W, H float32 }

var ErrNoImage = errors.New("no overlay image")

// Textures creates the textures a filter owns, graphics.Device is one.
type Textures interface {
	NewTexture(w, h int) (graphics.Texture, error)
}

// Overlay blends a static image over the frame.
type Overlay struct {
	textured

	textures Textures
	img      image.Image
	rect     Rect
	alpha    float32
	mvp      *mgl32.Mat4
	texture  graphics.Texture
}

// NewOverlay creates a post filter drawing img into rect with the given opacity.
// The image texture is allocated from textures at Init.
func NewOverlay(textures Textures, img image.Image, rect Rect, alpha float32) *Overlay {
	return &Overlay{textures: textures, img: img, rect: rect, alpha: alpha, mvp: &identity}
}

func (o *Overlay) Kind() Kind { return Post }

func (o *Overlay) Init() error {
	if o.img == nil {
		return ErrNoImage
	}
	return o.init(toRGBA(o.img, MaxOverlaySide))
}

func (o *Overlay) init(img *image.RGBA) (err error) {
	b := img.Bounds()
	if o.textures == nil {
		return fmt.Errorf("%w: overlay has no texture source", ErrBadFilter)
	}
	if o.texture, err = o.textures.NewTexture(b.Dx(), b.Dy()); err != nil {
		return err
	}
	if err = o.texture.Upload(img); err != nil {
		o.release()
		return err
	}
	if err = o.textured.init(overlayQuad(o.mvp, o.rect)); err != nil {
		o.release()
		return err
	}
	return nil
}

func (o *Overlay) SetTransform(mvp *mgl32.Mat4) {
	o.mvp = mvp
	if o.quad != nil {
		o.quad.Update(overlayQuad(o.mvp, o.rect))
	}
}

func (o *Overlay) Apply(time.Duration) { o.apply() }

func (o *Overlay) apply() {
	graphics.BlendPremultiplied()
	o.draw(o.texture.Target(), o.texture.ID(), o.mvp, &identity, o.alpha)
	graphics.NoBlend()
}

func (o *Overlay) Release() { o.release() }

func (o *Overlay) release() {
	o.textured.release()
	if o.texture != nil {
		o.texture.Delete()
		o.texture = nil
	}
}

// overlayQuad maps rect of the captured image back through the projection,
// so the overlay lands in the same place whatever the camera setup is.
// Readback rows start from the bottom of the framebuffer, so the image
// top is at clip-space y = -1.
func overlayQuad(mvp *mgl32.Mat4, r Rect) graphics.QuadVertices {
	inv := mvp.Inv()
	z := mvp[14]
	corner := func(u, v float32) mgl32.Vec4 {
		p := inv.Mul4x1(mgl32.Vec4{2*u - 1, 2*v - 1, z, 1})
		if p[3] != 0 {
			p = p.Mul(1 / p[3])
		}
		return p
	}
	tl, tr := corner(r.X, r.Y), corner(r.X+r.W, r.Y)
	bl, br := corner(r.X, r.Y+r.H), corner(r.X+r.W, r.Y+r.H)
	return graphics.QuadVertices{
		tl[0], tl[1], tl[2], 0, 0,
		tr[0], tr[1], tr[2], 1, 0,
		bl[0], bl[1], bl[2], 0, 1,
		br[0], br[1], br[2], 1, 1,
	}
}

// toRGBA converts img into a tightly packed RGBA image
// no larger than max on either side.
func toRGBA(img image.Image, max int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > max || h > max {
		if w > h {
			w, h = max, h*max/w
		} else {
			w, h = w*max/h, max
		}
		if w == 0 {
			w = 1
		}
		if h == 0 {
			h = 1
		}
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
		return out
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == w*4 {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
