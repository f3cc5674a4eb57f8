package graphics

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrIncomplete = errors.New("framebuffer incomplete")
	ErrAlloc      = errors.New("gl allocation failed")
	ErrSize       = errors.New("wrong size")
)

// Device creates GPU objects and runs the few context-wide operations
// the renderer needs. All methods must be called on the thread that
// owns the current GL context.
type Device interface {
	NewTexture(w, h int) (Texture, error)
	NewFramebuffer() (Framebuffer, error)
	Clear(c color.RGBA)
	// Finish blocks until all submitted commands are complete.
	Finish()
	// ReadPixels copies the w*h RGBA pixels of the bound framebuffer into dst,
	// rows in the GL order (bottom row first).
	ReadPixels(w, h int, dst []byte) error
	// Err returns the pending GL error, if any.
	Err() error
}

// Texture is a 2D GPU texture.
type Texture interface {
	ID() uint32
	Target() uint32
	Size() (w, h int)
	// Bind makes the texture active on texture unit 0.
	Bind()
	Unbind()
	// Upload replaces the texture contents, the image size must match.
	Upload(img *image.RGBA) error
	Delete()
}

// Framebuffer is an off-screen render target with one color attachment.
type Framebuffer interface {
	ID() uint32
	// AttachTexture attaches the color texture, it is not owned by the framebuffer.
	AttachTexture(t Texture) error
	// Bind redirects drawing into the framebuffer and sets the viewport to its size.
	Bind()
	Unbind()
	// Blit copies the color attachment into the default framebuffer upside down:
	// the attachment holds captured rows top-first from its row 0,
	// the window shows row 0 at the bottom.
	Blit()
	Delete()
}
