package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Debug      bool
	Render     Render
	Graphics   Graphics
	Source     Source
	Extract    Extract
	Monitoring Monitoring
}

type Render struct {
	// Scale is the divisor of the source frame size.
	Scale int `default:"4"`
	// ClearColor is the background in #rrggbb or #rrggbbaa form.
	ClearColor   string        `default:"#000000"`
	FrameTimeout time.Duration `default:"5s"`
	Label        bool
	Overlay      Overlay
}

// Overlay is an image blended into every frame.
// The rectangle is in captured frame coordinates, 0..1 from the top-left corner.
type Overlay struct {
	Image string
	X, Y  float32
	W     float32 `default:"0.25"`
	H     float32 `default:"0.25"`
	Alpha float32 `default:"1"`
}

type Graphics struct {
	Api     string `default:"gl"`
	Version struct {
		Major int `default:"2"`
		Minor int `default:"1"`
	}
	Visible bool
	VSync   bool
}

type Source struct {
	Width    int `default:"1920"`
	Height   int `default:"1080"`
	Rotation int
	Fps      int `default:"30"`
}

type Extract struct {
	Frames      int           `default:"10"`
	Interval    time.Duration `default:"1s"`
	OutDir      string        `default:"thumbnails"`
	Compression int
}

type Monitoring struct {
	Port             int `default:"6061"`
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

// allows custom config path
var configPath string

func NewConfig() (*Config, error) {
	var conf Config
	if err := LoadConfig(&conf, configPath); err != nil {
		return nil, err
	}
	return &conf, nil
}

// WithFlags registers flags that go on top of the loaded values.
// Call it after NewConfig and before fs.Parse.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Verbose logging")
	fs.IntVar(&c.Render.Scale, "scale", c.Render.Scale, "Source size divisor")
	fs.BoolVar(&c.Render.Label, "label", c.Render.Label, "Draw the frame timestamp")
	fs.StringVar(&c.Render.Overlay.Image, "overlay", c.Render.Overlay.Image, "Overlay image file (png, jpeg)")
	fs.IntVar(&c.Source.Width, "width", c.Source.Width, "Source frame width")
	fs.IntVar(&c.Source.Height, "height", c.Source.Height, "Source frame height")
	fs.IntVar(&c.Source.Rotation, "rotation", c.Source.Rotation, "Source frame rotation (0, 90, 180, 270)")
	fs.IntVarP(&c.Extract.Frames, "frames", "n", c.Extract.Frames, "Number of thumbnails")
	fs.DurationVar(&c.Extract.Interval, "interval", c.Extract.Interval, "Time between thumbnails")
	fs.StringVarP(&c.Extract.OutDir, "out", "o", c.Extract.OutDir, "Output directory")
	fs.BoolVar(&c.Graphics.Visible, "visible", c.Graphics.Visible, "Show the output window")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	return c
}

// ConfigPathFlag registers the custom config path flag, it must be parsed
// before NewConfig.
func ConfigPathFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "conf", "c", "", "Set custom configuration file path")
}

// ParseColor reads #rgb, #rrggbb or #rrggbbaa colors.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
