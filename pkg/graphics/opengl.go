package graphics

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
)

// GL is the OpenGL implementation of Device.
// It expects InitContext to have been called on the current thread.
type GL struct{}

func InitContext(getProcAddr func(name string) unsafe.Pointer) error {
	if err := gl.InitWithProcAddrFunc(getProcAddr); err != nil {
		return err
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return nil
}

type texture struct {
	id     uint32
	target uint32
	w, h   int32
}

func (GL) NewTexture(w, h int) (Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: texture %vx%v", ErrSize, w, h)
	}
	t := texture{target: gl.TEXTURE_2D, w: int32(w), h: int32(h)}
	gl.GenTextures(1, &t.id)
	if t.id == 0 {
		return nil, fmt.Errorf("%w: texture", ErrAlloc)
	}
	gl.BindTexture(t.target, t.id)
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(t.target, 0, gl.RGBA8, t.w, t.h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(t.target, 0)
	if err := glError(); err != nil {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("%w: texture %vx%v, %v", ErrAlloc, w, h, err)
	}
	return &t, nil
}

func (t *texture) ID() uint32       { return t.id }
func (t *texture) Target() uint32   { return t.target }
func (t *texture) Size() (int, int) { return int(t.w), int(t.h) }

func (t *texture) Bind() {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(t.target, t.id)
}

func (t *texture) Unbind() { gl.BindTexture(t.target, 0) }

func (t *texture) Upload(img *image.RGBA) error {
	b := img.Bounds()
	if int32(b.Dx()) != t.w || int32(b.Dy()) != t.h {
		return fmt.Errorf("%w: image %vx%v, texture %vx%v", ErrSize, b.Dx(), b.Dy(), t.w, t.h)
	}
	t.Bind()
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride>>2))
	gl.TexSubImage2D(t.target, 0, 0, 0, t.w, t.h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&img.Pix[img.PixOffset(b.Min.X, b.Min.Y)]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	t.Unbind()
	return nil
}

func (t *texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

type framebuffer struct {
	id   uint32
	w, h int32
}

func (GL) NewFramebuffer() (Framebuffer, error) {
	var f framebuffer
	gl.GenFramebuffers(1, &f.id)
	if f.id == 0 {
		return nil, fmt.Errorf("%w: framebuffer", ErrAlloc)
	}
	return &f, nil
}

func (f *framebuffer) ID() uint32 { return f.id }

func (f *framebuffer) AttachTexture(t Texture) error {
	w, h := t.Size()
	f.w, f.h = int32(w), int32(h)
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, t.Target(), t.ID(), 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w (0x%X)", ErrIncomplete, status)
	}
	return nil
}

func (f *framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.id)
	gl.Viewport(0, 0, f.w, f.h)
}

func (f *framebuffer) Unbind() { gl.BindFramebuffer(gl.FRAMEBUFFER, 0) }

func (f *framebuffer) Blit() {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, f.id)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, f.w, f.h, 0, f.h, f.w, 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (f *framebuffer) Delete() {
	if f.id != 0 {
		gl.DeleteFramebuffers(1, &f.id)
		f.id = 0
	}
}

func (GL) Clear(c color.RGBA) {
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (GL) Finish() { gl.Finish() }

func (GL) ReadPixels(w, h int, dst []byte) error {
	if w <= 0 || h <= 0 || len(dst) < w*h*4 {
		return fmt.Errorf("%w: %v bytes for %vx%v", ErrSize, len(dst), w, h)
	}
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
	return nil
}

func (GL) Err() error { return glError() }

func glError() error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%X", e)
	}
	return nil
}

// Info returns OpenGL version, vendor, renderer and GLSL version strings.
func Info() (version, vendor, renderer, glsl string) {
	return get(gl.VERSION), get(gl.VENDOR), get(gl.RENDERER), get(gl.SHADING_LANGUAGE_VERSION)
}

func get(name uint32) string { return gl.GoStr(gl.GetString(name)) }
