package extract

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func TestPngWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewPngWriter(dir, int(png.BestSpeed), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = NewPngWriter(dir, 0, nil); !errors.Is(err, ErrLocked) {
		t.Errorf("second writer: %v", err)
	}

	colors := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}}
	w.OnStarted("job", nil)
	for i, c := range colors {
		img := image.NewRGBA(image.Rect(0, 0, 4, 3))
		for j := 0; j < len(img.Pix); j += 4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = c.R, c.G, c.B, c.A
		}
		w.OnExtracted("job", i, img)
	}
	w.OnCompleted("job")
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	for i, c := range colors {
		f, err := os.Open(w.Path(i))
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		_ = f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
			t.Errorf("#%v size %v", i, b)
		}
		if got := color.RGBAModel.Convert(img.At(1, 1)); got != c {
			t.Errorf("#%v color %v, want %v", i, got, c)
		}
	}

	again, err := NewPngWriter(dir, 0, nil)
	if err != nil {
		t.Fatalf("lock was not released: %v", err)
	}
	_ = again.Close()
}

func TestPngWriterPath(t *testing.T) {
	w := PngWriter{dir: "out"}
	if got := w.Path(12); got != "out/t0000012.png" {
		t.Errorf("got %v", got)
	}
}
