package filter

import (
	"github.com/cloudretro/glthumb/pkg/graphics"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexShader = `#version 120
uniform mat4 uMVPMatrix;
uniform mat4 uSTMatrix;
attribute vec4 aPosition;
attribute vec4 aTextureCoord;
varying vec2 vTextureCoord;
void main() {
    gl_Position = uMVPMatrix * aPosition;
    vTextureCoord = (uSTMatrix * aTextureCoord).xy;
}
`

const fragmentShader = `#version 120
uniform sampler2D sTexture;
uniform float uAlpha;
varying vec2 vTextureCoord;
void main() {
    gl_FragColor = texture2D(sTexture, vTextureCoord) * uAlpha;
}
`

var identity = mgl32.Ident4()

// textured draws one textured quad, it is shared by the stock filters.
type textured struct {
	program *graphics.Program
	quad    *graphics.Quad

	aPosition, aTextureCoord uint32
	uMVP, uST, uTexture      int32
	uAlpha                   int32
}

func (t *textured) init(v graphics.QuadVertices) (err error) {
	if t.program, err = graphics.NewProgram(vertexShader, fragmentShader); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			t.release()
		}
	}()
	if t.aPosition, err = t.program.Attrib("aPosition"); err != nil {
		return err
	}
	if t.aTextureCoord, err = t.program.Attrib("aTextureCoord"); err != nil {
		return err
	}
	for _, u := range []struct {
		name string
		loc  *int32
	}{
		{"uMVPMatrix", &t.uMVP},
		{"uSTMatrix", &t.uST},
		{"sTexture", &t.uTexture},
		{"uAlpha", &t.uAlpha},
	} {
		if *u.loc, err = t.program.Uniform(u.name); err != nil {
			return err
		}
	}
	t.quad, err = graphics.NewQuad(v)
	return err
}

func (t *textured) draw(target, texture uint32, mvp, st *mgl32.Mat4, alpha float32) {
	t.program.Use()
	graphics.BindTexture(target, texture)
	graphics.SetMat4(t.uMVP, mvp)
	graphics.SetMat4(t.uST, st)
	graphics.SetInt(t.uTexture, 0)
	graphics.SetFloat(t.uAlpha, alpha)
	t.quad.Draw(t.aPosition, t.aTextureCoord)
	graphics.UnbindTexture(target)
	t.program.Unuse()
}

func (t *textured) release() {
	if t.quad != nil {
		t.quad.Delete()
		t.quad = nil
	}
	if t.program != nil {
		t.program.Delete()
		t.program = nil
	}
}
