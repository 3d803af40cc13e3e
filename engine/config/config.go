package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-frames/engine/camera"
	"github.com/Carmen-Shannon/oxy-frames/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frames/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// Config is the TOML configuration of an example program.
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Camera CameraConfig `toml:"camera"`
	Assets AssetsConfig `toml:"assets"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

type RenderConfig struct {
	ClearColor       [4]float64 `toml:"clear_color"`
	PresentMode      string     `toml:"present_mode"` // "vsync" or "uncapped"
	MSAA             int        `toml:"msaa"`         // 1 or 4
	SoftwareRenderer bool       `toml:"software_renderer"`
}

type CameraConfig struct {
	Distance    float32 `toml:"distance"`
	Sensitivity float32 `toml:"sensitivity"`
}

// AssetsConfig holds asset paths. Load resolves relative paths against the config file's directory.
type AssetsConfig struct {
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	Texture        string `toml:"texture"`
	Mesh           string `toml:"mesh"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Profiling bool   `toml:"profiling"`
}

// Default returns the configuration of the reference triangle program.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "Triangle example",
			Width:     1024,
			Height:    768,
			Resizable: true,
		},
		Render: RenderConfig{
			ClearColor:  [4]float64{0.02, 0.02, 0.02, 1.0},
			PresentMode: "vsync",
			MSAA:        1,
		},
		Camera: CameraConfig{
			Distance:    3,
			Sensitivity: 0.02,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Decode reads TOML over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the validated configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a TOML file over the defaults and resolves asset paths relative to it.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the validated configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Assets.resolve(filepath.Dir(path))
	return cfg, nil
}

// Validate checks sizes, modes and the log level.
//
// Returns:
//   - error: the first problem found
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := c.PresentMode(); err != nil {
		return err
	}
	if _, err := c.MSAA(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Camera.Distance <= 0 {
		return fmt.Errorf("config: camera distance %g must be positive", c.Camera.Distance)
	}
	return nil
}

// PresentMode converts the present_mode string.
func (c Config) PresentMode() (renderer.PresentMode, error) {
	switch c.Render.PresentMode {
	case "", "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("config: unknown present_mode %q", c.Render.PresentMode)
	}
}

// MSAA converts the msaa sample count.
func (c Config) MSAA() (renderer.MSAASampleCount, error) {
	switch c.Render.MSAA {
	case 0, 1:
		return renderer.MSAAOff, nil
	case 4:
		return renderer.MSAA4x, nil
	default:
		return 0, fmt.Errorf("config: msaa must be 1 or 4, got %d", c.Render.MSAA)
	}
}

// LogLevel parses the log level name (debug, info, warn, error).
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// WindowOptions returns the window options for NewWindow.
//
// Returns:
//   - []window.WindowBuilderOption: title, size and resizability
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithResizable(c.Window.Resizable),
	}
}

// RendererOptions returns the renderer options for NewRenderer. Call Validate first.
//
// Returns:
//   - []renderer.RendererBuilderOption: present mode, MSAA and adapter selection
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode, _ := c.PresentMode()
	msaa, _ := c.MSAA()
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(c.Render.SoftwareRenderer),
	}
}

// CameraOptions returns the controller options for camera.NewController. The projection aspect
// follows the window size.
//
// Returns:
//   - []camera.ControllerOption: distance, sensitivity and projection
func (c Config) CameraOptions() []camera.ControllerOption {
	projection := camera.DefaultProjection()
	projection.Aspect = float32(c.Window.Width) / float32(c.Window.Height)
	return []camera.ControllerOption{
		camera.WithDistance(c.Camera.Distance),
		camera.WithSensitivity(c.Camera.Sensitivity),
		camera.WithProjection(projection),
	}
}

func (a *AssetsConfig) resolve(dir string) {
	for _, p := range []*string{&a.VertexShader, &a.FragmentShader, &a.Texture, &a.Mesh} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
