package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaults(t *testing.T) {
	var c Config
	if err := LoadConfigEnv(&c); err != nil {
		t.Fatal(err)
	}
	if c.Render.Scale != 4 || c.Render.FrameTimeout != 5*time.Second || c.Render.ClearColor != "#000000" {
		t.Errorf("render %+v", c.Render)
	}
	if c.Source.Width != 1920 || c.Source.Height != 1080 || c.Source.Fps != 30 {
		t.Errorf("source %+v", c.Source)
	}
	if c.Extract.Frames != 10 || c.Extract.Interval != time.Second || c.Extract.OutDir != "thumbnails" {
		t.Errorf("extract %+v", c.Extract)
	}
	if c.Graphics.Api != "gl" || c.Graphics.Version.Major != 2 || c.Graphics.Version.Minor != 1 {
		t.Errorf("graphics %+v", c.Graphics)
	}
	if c.Monitoring.IsEnabled() {
		t.Errorf("monitoring is on by default")
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"_RENDER_SCALE", "3")
	t.Setenv(EnvPrefix+"_SOURCE_ROTATION", "180")

	var c Config
	if err := LoadConfigEnv(&c); err != nil {
		t.Fatal(err)
	}
	if c.Render.Scale != 3 || c.Source.Rotation != 180 {
		t.Errorf("env was ignored: scale %v rotation %v", c.Render.Scale, c.Source.Rotation)
	}
	if c.Source.Width != 1920 || c.Extract.OutDir != "thumbnails" {
		t.Errorf("defaults were lost: %+v %+v", c.Source, c.Extract)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err = os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err = os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()
	t.Setenv("HOME", dir)
	t.Setenv(EnvPrefix+"_EXTRACT_FRAMES", "7")

	var c Config
	if err = LoadConfig(&c, ""); err != nil {
		t.Fatal(err)
	}
	if c.Extract.Frames != 7 || c.Render.Scale != 4 || c.Render.Label {
		t.Errorf("got %+v %+v", c.Extract, c.Render)
	}
}

func TestRepoConfig(t *testing.T) {
	var c Config
	if err := LoadConfig(&c, ""); err != nil {
		t.Fatal(err)
	}
	if !c.Render.Label || c.Render.Overlay.Alpha != 0.8 || c.Render.Overlay.X != 0.7 {
		t.Errorf("render %+v", c.Render)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "render:\n  scale: 2\n  clearColor: \"#ff0000\"\nsource:\n  rotation: 90\nextract:\n  interval: 250ms\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"_EXTRACT_FRAMES", "3")

	var c Config
	if err := LoadConfig(&c, dir); err != nil {
		t.Fatal(err)
	}
	if c.Render.Scale != 2 || c.Render.ClearColor != "#ff0000" {
		t.Errorf("render %+v", c.Render)
	}
	if c.Source.Rotation != 90 || c.Source.Width != 1920 {
		t.Errorf("source %+v", c.Source)
	}
	if c.Extract.Interval != 250*time.Millisecond {
		t.Errorf("interval %v", c.Extract.Interval)
	}
	if c.Extract.Frames != 3 {
		t.Errorf("env was ignored: frames %v", c.Extract.Frames)
	}
}

func TestMissingCustomFile(t *testing.T) {
	var c Config
	if err := LoadConfig(&c, t.TempDir()); err == nil {
		t.Errorf("no error for a dir without config")
	}
}

func TestWithFlags(t *testing.T) {
	var c Config
	if err := LoadConfigEnv(&c); err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.WithFlags(fs)
	if err := fs.Parse([]string{"-n", "5", "--scale", "8", "--rotation=270", "-o", "out", "--interval", "2s"}); err != nil {
		t.Fatal(err)
	}
	if c.Extract.Frames != 5 || c.Render.Scale != 8 || c.Source.Rotation != 270 {
		t.Errorf("flags were ignored %+v", c)
	}
	if c.Extract.OutDir != "out" || c.Extract.Interval != 2*time.Second {
		t.Errorf("extract %+v", c.Extract)
	}
	if c.Source.Width != 1920 {
		t.Errorf("default was lost: %v", c.Source.Width)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{in: "#000000", want: color.RGBA{A: 255}},
		{in: "#00ff00", want: color.RGBA{G: 255, A: 255}},
		{in: "0000ff80", want: color.RGBA{B: 255, A: 128}},
		{in: "#f00", want: color.RGBA{R: 255, A: 255}},
		{in: "", err: true},
		{in: "#12345", err: true},
		{in: "#zzzzzz", err: true},
	}
	for _, test := range tests {
		got, err := ParseColor(test.in)
		if (err != nil) != test.err {
			t.Errorf("%q: error %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: got %v, want %v", test.in, got, test.want)
		}
	}
}
