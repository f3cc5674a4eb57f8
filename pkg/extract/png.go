package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cloudretro/glthumb/pkg/logger"
	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("output dir is used by another process")

const (
	thumbnailFile = "t%07d.png"
	lockFile      = ".glthumb.lock"
)

type pool struct{ sync.Pool }

func pngBuf() *pool                      { return &pool{sync.Pool{New: func() any { return &png.EncoderBuffer{} }}} }
func (p *pool) Get() *png.EncoderBuffer  { return p.Pool.Get().(*png.EncoderBuffer) }
func (p *pool) Put(b *png.EncoderBuffer) { p.Pool.Put(b) }

// PngWriter is a Listener that saves every extracted thumbnail
// into its own PNG file. Files are encoded in the background.
type PngWriter struct {
	dir  string
	e    *png.Encoder
	fmu  *flock.Flock
	log  *logger.Logger
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewPngWriter takes the lock of dir, creating the dir if needed.
// Compression is one of the png.CompressionLevel values.
func NewPngWriter(dir string, compression int, log *logger.Logger) (*PngWriter, error) {
	if err := os.MkdirAll(dir, 0770); err != nil {
		return nil, err
	}
	fmu := flock.New(filepath.Join(dir, lockFile))
	locked, err := fmu.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("%w: %v", ErrLocked, dir)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PngWriter{
		dir: dir,
		e: &png.Encoder{
			CompressionLevel: png.CompressionLevel(compression),
			BufferPool:       pngBuf(),
		},
		fmu: fmu,
		log: log.Module("png"),
	}, nil
}

// Path returns the file name of the thumbnail with the index.
func (p *PngWriter) Path(index int) string {
	return filepath.Join(p.dir, fmt.Sprintf(thumbnailFile, index))
}

func (p *PngWriter) OnStarted(id string, ts []time.Duration) {
	p.log.Info().Str("job", id).Int("frames", len(ts)).Str("dir", p.dir).Msg("Extraction started")
}

func (p *PngWriter) OnExtracted(id string, index int, img *image.RGBA) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.save(p.Path(index), img); err != nil {
			p.log.Error().Err(err).Str("job", id).Int("index", index).Msg("png")
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}()
}

func (p *PngWriter) OnCompleted(id string) {
	p.log.Info().Str("job", id).Msg("Extraction completed")
}

func (p *PngWriter) OnCancelled(id string) {
	p.log.Warn().Str("job", id).Msg("Extraction cancelled")
}

func (p *PngWriter) OnError(id string, err error) {
	p.log.Error().Err(err).Str("job", id).Msg("Extraction failed")
}

func (p *PngWriter) save(path string, img image.Image) error {
	var buf bytes.Buffer
	buf.Grow(img.Bounds().Dx() * img.Bounds().Dy() * 4)
	if err := p.e.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0660)
}

// Close waits for pending files and releases the dir lock.
// It returns the first write error, if any.
func (p *PngWriter) Close() error {
	p.wg.Wait()
	var err error
	p.mu.Lock()
	if len(p.errs) > 0 {
		err = p.errs[0]
	}
	p.mu.Unlock()
	if uerr := p.fmu.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}
