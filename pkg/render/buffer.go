package render

import "image"

// PixelBuffer is the CPU side of the readback, reused between frames.
type PixelBuffer struct {
	buf    []byte
	allocs int
}

// Get returns a w*h*4 byte buffer, reallocating only when the required
// capacity differs from the current one.
func (p *PixelBuffer) Get(w, h int) []byte {
	size := w * h * 4
	if p.buf == nil || cap(p.buf) != size {
		p.buf = make([]byte, size)
		p.allocs++
	}
	return p.buf[:size]
}

// Allocs returns how many times the buffer has been allocated.
func (p *PixelBuffer) Allocs() int { return p.allocs }

func (p *PixelBuffer) Free() { p.buf = nil }

// Image copies the buffer into a new w x h image, rows in readback order.
func (p *PixelBuffer) Image(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, p.buf[:w*h*4])
	return img
}
