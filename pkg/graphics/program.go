package graphics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrShader = errors.New("shader error")

// Program is a linked vertex+fragment shader pair.
type Program struct {
	id uint32
}

func NewProgram(vertex, fragment string) (*Program, error) {
	vs, err := compile(vertex, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compile(fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	if id == 0 {
		return nil, fmt.Errorf("%w: program", ErrAlloc)
	}
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
		info := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(id, n, nil, gl.Str(info))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("%w: link: %v", ErrShader, strings.TrimRight(info, "\x00"))
	}
	return &Program{id: id}, nil
}

func compile(src string, kind uint32) (uint32, error) {
	s := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(s, 1, csrc, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &n)
		info := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(s, n, nil, gl.Str(info))
		gl.DeleteShader(s)
		return 0, fmt.Errorf("%w: %v", ErrShader, strings.TrimRight(info, "\x00"))
	}
	return s, nil
}

func (p *Program) Use()   { gl.UseProgram(p.id) }
func (p *Program) Unuse() { gl.UseProgram(0) }

func (p *Program) Attrib(name string) (uint32, error) {
	loc := gl.GetAttribLocation(p.id, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%w: no attribute %v", ErrShader, name)
	}
	return uint32(loc), nil
}

func (p *Program) Uniform(name string) (int32, error) {
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%w: no uniform %v", ErrShader, name)
	}
	return loc, nil
}

func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

func SetMat4(loc int32, m *mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }
func SetInt(loc int32, v int32)        { gl.Uniform1i(loc, v) }
func SetFloat(loc int32, v float32)    { gl.Uniform1f(loc, v) }

// QuadVertices is a triangle strip of 4 vertices, x,y,z,s,t each.
type QuadVertices [20]float32

const vertexStride = 5 * 4

// Quad is a vertex buffer holding one textured quad.
type Quad struct {
	vbo uint32
}

func NewQuad(v QuadVertices) (*Quad, error) {
	var q Quad
	gl.GenBuffers(1, &q.vbo)
	if q.vbo == 0 {
		return nil, fmt.Errorf("%w: vertex buffer", ErrAlloc)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(v)*4, gl.Ptr(&v[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return &q, nil
}

func (q *Quad) Update(v QuadVertices) {
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(v)*4, gl.Ptr(&v[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw draws the quad feeding positions and texture coordinates
// into the given attributes of the program in use.
func (q *Quad) Draw(position, texCoord uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.VertexAttribPointer(position, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(position)
	gl.VertexAttribPointer(texCoord, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(texCoord)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.DisableVertexAttribArray(texCoord)
	gl.DisableVertexAttribArray(position)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (q *Quad) Delete() {
	if q.vbo != 0 {
		gl.DeleteBuffers(1, &q.vbo)
		q.vbo = 0
	}
}

// BlendPremultiplied enables blending of alpha-premultiplied sources.
func BlendPremultiplied() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
}

func NoBlend() { gl.Disable(gl.BLEND) }

// BindTexture binds a texture the renderer does not own, e.g. the producer's, to unit 0.
func BindTexture(target, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(target, id)
}

func UnbindTexture(target uint32) { gl.BindTexture(target, 0) }
