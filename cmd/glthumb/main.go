package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudretro/glthumb/pkg/config"
	"github.com/cloudretro/glthumb/pkg/extract"
	"github.com/cloudretro/glthumb/pkg/filter"
	"github.com/cloudretro/glthumb/pkg/geometry"
	"github.com/cloudretro/glthumb/pkg/graphics"
	"github.com/cloudretro/glthumb/pkg/logger"
	"github.com/cloudretro/glthumb/pkg/monitoring"
	"github.com/cloudretro/glthumb/pkg/render"
	"github.com/cloudretro/glthumb/pkg/source"
	"github.com/cloudretro/glthumb/pkg/thread"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() {
	thread.Wrap(func() {
		if err := run(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "glthumb: %v\n", err)
			os.Exit(1)
		}
	})
}

func run() error {
	// the config path goes first since flags override the loaded values
	pre := flag.NewFlagSet("conf", flag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	config.ConfigPathFlag(pre)
	_ = pre.Parse(os.Args[1:])

	conf, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	config.ConfigPathFlag(flag.CommandLine)
	conf.WithFlags(flag.CommandLine)
	flag.Parse()

	log := logger.NewConsole(conf.Debug, "glthumb", false)
	log.Info().Msgf("version %s", Version)
	log.Debug().Msgf("conf: %+v", conf)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := render.NewMetrics("glthumb")
	if err = metrics.Register(reg); err != nil {
		return err
	}
	if conf.Monitoring.IsEnabled() {
		mon := monitoring.New(conf.Monitoring, reg, log)
		if err = mon.Run(); err != nil {
			return err
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = mon.Shutdown(sctx)
		}()
	}

	app, err := newApp(conf, metrics, log)
	if err != nil {
		return err
	}
	writer, err := extract.NewPngWriter(conf.Extract.OutDir, conf.Extract.Compression, log)
	if err != nil {
		return err
	}

	job := extract.NewJob(extract.Timestamps(conf.Extract.Frames, conf.Extract.Interval))
	thread.Call(func() { err = app.extract(ctx, job, writer) })
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	return err
}

type app struct {
	conf    *config.Config
	format  geometry.Format
	gfx     graphics.Config
	filters []filter.Filter
	opts    []render.Option
	log     *logger.Logger
}

func newApp(conf *config.Config, metrics *render.Metrics, log *logger.Logger) (*app, error) {
	format := geometry.Format{Width: conf.Source.Width, Height: conf.Source.Height, Rotation: conf.Source.Rotation}
	w, h, err := geometry.OutputSize(format, conf.Render.Scale)
	if err != nil {
		return nil, err
	}
	api, err := graphics.ParseApi(conf.Graphics.Api)
	if err != nil {
		return nil, err
	}
	bg, err := config.ParseColor(conf.Render.ClearColor)
	if err != nil {
		return nil, err
	}

	var filters []filter.Filter
	if ov := conf.Render.Overlay; ov.Image != "" {
		img, err := loadImage(ov.Image)
		if err != nil {
			return nil, fmt.Errorf("overlay: %w", err)
		}
		filters = append(filters, filter.NewOverlay(graphics.GL{}, img, filter.Rect{X: ov.X, Y: ov.Y, W: ov.W, H: ov.H}, ov.Alpha))
	}
	if conf.Render.Label {
		filters = append(filters, filter.NewLabel(graphics.GL{}, filter.DefaultLabelRect))
	}

	return &app{
		conf:   conf,
		format: format,
		gfx: graphics.Config{
			Api:          api,
			W:            w,
			H:            h,
			VersionMajor: conf.Graphics.Version.Major,
			VersionMinor: conf.Graphics.Version.Minor,
			Visible:      conf.Graphics.Visible,
			VSync:        conf.Graphics.VSync,
			Title:        "glthumb",
		},
		filters: filters,
		opts: []render.Option{
			render.WithLogger(log),
			render.WithMetrics(metrics),
			render.WithScale(conf.Render.Scale),
			render.WithClearColor(bg),
			render.WithFrameTimeout(conf.Render.FrameTimeout),
		},
		log: log,
	}, nil
}

// extract renders the job from a synthetic source.
// Must be called on the main thread.
func (a *app) extract(ctx context.Context, job extract.Job, l extract.Listener) error {
	gctx, err := graphics.NewContext(a.gfx)
	if err != nil {
		return err
	}
	defer func() { _ = gctx.Deinit() }()
	version, vendor, renderer, glsl := graphics.Info()
	a.log.Info().Str("version", version).Str("vendor", vendor).Str("renderer", renderer).
		Str("glsl", glsl).Msg("OpenGL")

	var capture extract.Capture
	r, err := render.New(graphics.GL{}, a.filters, capture.OnThumbnail, a.opts...)
	if err != nil {
		return err
	}
	capture.Renderer = r
	defer func() { _ = r.Release() }()
	if err = r.Init(gctx.Surface(), &a.format); err != nil {
		return err
	}

	pattern := source.Pattern{W: a.format.Width, H: a.format.Height, FPS: a.conf.Source.Fps}
	in := r.InputSurface()
	go func() {
		for _, ts := range job.Timestamps {
			n := int(ts * time.Duration(pattern.FPS) / time.Second)
			if err := in.Publish(ctx, source.Image{Pixels: pattern.Frame(n)}); err != nil {
				return
			}
		}
	}()

	return extract.Run(ctx, job, &capture, l)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	return img, err
}
