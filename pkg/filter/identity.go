package filter

import (
	"math"
	"time"

	"github.com/cloudretro/glthumb/pkg/graphics"
	"github.com/go-gl/mathgl/mgl32"
)

// Identity is the default frame-render filter.
// It draws the producer frame unchanged over the whole projected area.
type Identity struct {
	textured

	mvp     *mgl32.Mat4
	aspect  float32
	st      *mgl32.Mat4
	texture uint32
	target  uint32
}

func NewIdentity() *Identity { return &Identity{aspect: 1, mvp: &identity, st: &identity} }

func (f *Identity) Kind() Kind { return FrameRender }

func (f *Identity) Init() error { return f.textured.init(frameQuad(f.aspect)) }

func (f *Identity) SetTransform(mvp *mgl32.Mat4) {
	f.mvp = mvp
	f.aspect = aspectOf(mvp)
	if f.quad != nil {
		f.quad.Update(frameQuad(f.aspect))
	}
}

func (f *Identity) SetInputFrame(texture, target uint32, st *mgl32.Mat4) {
	f.texture, f.target, f.st = texture, target, st
}

func (f *Identity) Apply(time.Duration) {
	if f.texture == 0 {
		return
	}
	f.draw(f.target, f.texture, f.mvp, f.st, 1)
}

func (f *Identity) Release() { f.textured.release() }

// aspectOf recovers the width/height ratio from the horizontal scale
// of an orthographic projection.
func aspectOf(mvp *mgl32.Mat4) float32 {
	sx := float32(math.Abs(float64(mvp[0])))
	if sx == 0 {
		return 1
	}
	return 1 / sx
}

// frameQuad spans [-aspect, aspect] x [-1, 1].
func frameQuad(aspect float32) graphics.QuadVertices {
	return graphics.QuadVertices{
		-aspect, -1, 0, 0, 0,
		aspect, -1, 0, 1, 0,
		-aspect, 1, 0, 0, 1,
		aspect, 1, 0, 1, 1,
	}
}
