package source

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture struct {
	mu       sync.Mutex
	uploads  []*image.RGBA
	deleted  bool
	failWith error
}

func (t *fakeTexture) ID() uint32     { return 3 }
func (t *fakeTexture) Target() uint32 { return 0x0DE1 }
func (t *fakeTexture) Upload(img *image.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return t.failWith
	}
	t.uploads = append(t.uploads, img)
	return nil
}
func (t *fakeTexture) Delete() { t.deleted = true }

func frame() *image.RGBA { return image.NewRGBA(image.Rect(0, 0, 2, 2)) }

func TestAwaitLatchesPublished(t *testing.T) {
	tex := &fakeTexture{}
	s := NewSurface(tex, 0)

	img := frame()
	st := mgl32.Scale3D(2, 2, 1)
	go func() { _ = s.Publish(context.Background(), Image{Pixels: img, Transform: &st}) }()

	if err := s.AwaitNewImage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(tex.uploads) != 1 || tex.uploads[0] != img {
		t.Fatalf("frame was not uploaded: %v", tex.uploads)
	}
	var m mgl32.Mat4
	s.TransformMatrix(&m)
	if m != st {
		t.Errorf("wrong transform %v", m)
	}

	go func() { _ = s.Publish(context.Background(), Image{Pixels: frame()}) }()
	if err := s.AwaitNewImage(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.TransformMatrix(&m)
	if m != TopFirst {
		t.Errorf("default transform expected, got %v", m)
	}
}

func TestPublishBlocksOnFullSlot(t *testing.T) {
	s := NewSurface(&fakeTexture{}, 0)
	if err := s.Publish(context.Background(), Image{Pixels: frame()}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Publish(ctx, Image{Pixels: frame()}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second publish should block, got %v", err)
	}
}

func TestAwaitTimeout(t *testing.T) {
	s := NewSurface(&fakeTexture{}, 10*time.Millisecond)
	if err := s.AwaitNewImage(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestAwaitCancel(t *testing.T) {
	s := NewSurface(&fakeTexture{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if err := s.AwaitNewImage(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancel, got %v", err)
	}
}

func TestAwaitUploadError(t *testing.T) {
	want := errors.New("lost")
	s := NewSurface(&fakeTexture{failWith: want}, 0)
	_ = s.Publish(context.Background(), Image{Pixels: frame()})
	if err := s.AwaitNewImage(context.Background()); !errors.Is(err, want) {
		t.Errorf("expected upload error, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	tex := &fakeTexture{}
	s := NewSurface(tex, 0)

	errs := make(chan error, 1)
	go func() {
		_ = s.Publish(context.Background(), Image{Pixels: frame()})
		errs <- s.Publish(context.Background(), Image{Pixels: frame()})
	}()
	time.Sleep(5 * time.Millisecond)
	s.Release()
	s.Release()

	if err := <-errs; !errors.Is(err, ErrReleased) {
		t.Errorf("blocked publisher got %v", err)
	}
	if !tex.deleted {
		t.Errorf("texture not deleted")
	}
	if err := s.Publish(context.Background(), Image{Pixels: frame()}); !errors.Is(err, ErrReleased) {
		t.Errorf("publish after release: %v", err)
	}
	if err := s.Publish(context.Background(), Image{}); !errors.Is(err, ErrNoPixels) {
		t.Errorf("empty publish: %v", err)
	}
}

func TestTopFirst(t *testing.T) {
	tests := []struct{ in, out mgl32.Vec4 }{
		{mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{1, 1, 0, 1}},
		{mgl32.Vec4{1, 0, 0, 1}, mgl32.Vec4{0, 1, 0, 1}},
		{mgl32.Vec4{1, 1, 0, 1}, mgl32.Vec4{0, 0, 0, 1}},
	}
	for _, tt := range tests {
		if got := TopFirst.Mul4x1(tt.in); !got.ApproxEqual(tt.out) {
			t.Errorf("TopFirst * %v = %v, want %v", tt.in, got, tt.out)
		}
	}
}

func TestPattern(t *testing.T) {
	p := Pattern{W: 64, H: 36, FPS: 25}
	img := p.Frame(3)
	if img.Bounds() != image.Rect(0, 0, 64, 36) {
		t.Errorf("wrong size %v", img.Bounds())
	}
	if img.RGBAAt(63, 0) != bars[len(bars)-1] {
		t.Errorf("last bar missing %v", img.RGBAAt(63, 0))
	}
	if p.PTS(50) != 2*time.Second {
		t.Errorf("wrong pts %v", p.PTS(50))
	}

	tex := &fakeTexture{}
	s := NewSurface(tex, time.Second)
	go func() { _ = p.Run(context.Background(), s, 3) }()
	for i := 0; i < 3; i++ {
		if err := s.AwaitNewImage(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(tex.uploads) != 3 {
		t.Errorf("%v frames latched", len(tex.uploads))
	}
}
