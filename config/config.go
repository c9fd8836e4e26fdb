// Package config loads plume's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/sim"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Simulation struct {
	Mode          string `yaml:"mode"`
	Particles     int    `yaml:"particles"`
	LocalSize     uint32 `yaml:"local_size"`
	StorageFormat string `yaml:"storage_format"`
	Seed          uint64 `yaml:"seed"`
}

type Shaders struct {
	Fluid           string `yaml:"fluid"`
	Smoke           string `yaml:"smoke"`
	Vertex          string `yaml:"vertex"`
	Fragment        string `yaml:"fragment"`
	OverlayVertex   string `yaml:"overlay_vertex"`
	OverlayFragment string `yaml:"overlay_fragment"`
}

type Textures struct {
	Caustic   string `yaml:"caustic"`
	Noise     string `yaml:"noise"`
	BlueNoise string `yaml:"blue_noise"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Window         Window        `yaml:"window"`
	FramesInFlight int           `yaml:"frames_in_flight"`
	PresentMode    string        `yaml:"present_mode"`
	Validation     bool          `yaml:"validation"`
	FenceTimeout   time.Duration `yaml:"fence_timeout"`
	Simulation     Simulation    `yaml:"simulation"`
	AssetRoot      string        `yaml:"asset_root"`
	Shaders        Shaders       `yaml:"shaders"`
	Textures       Textures      `yaml:"textures"`
	HotReload      bool          `yaml:"hot_reload"`
	Log            Log           `yaml:"log"`
}

func Default() Config {
	return Config{
		Window:         Window{Width: 800, Height: 600, Title: "plume"},
		FramesInFlight: 2,
		PresentMode:    "mailbox",
		FenceTimeout:   10 * time.Second,
		Simulation: Simulation{
			Mode:          "fluid",
			Particles:     8192,
			LocalSize:     16,
			StorageFormat: "rgba8",
			Seed:          1,
		},
		AssetRoot: ".",
		Shaders: Shaders{
			Fluid:    "shaders/volumetric_comp.spv",
			Smoke:    "shaders/smoke_comp.spv",
			Vertex:   "shaders/volumetric_vert.spv",
			Fragment: "shaders/volumetric_frag.spv",
		},
		Textures: Textures{
			Caustic:   "textures/caustic.jpg",
			Noise:     "textures/noise.png",
			BlueNoise: "textures/blue_noise.png",
		},
		Log: Log{Level: "info"},
	}
}

var presentModes = map[string]gpu.PresentMode{
	"immediate":    gpu.PresentModeImmediate,
	"mailbox":      gpu.PresentModeMailbox,
	"fifo":         gpu.PresentModeFIFO,
	"fifo_relaxed": gpu.PresentModeFIFORelaxed,
}

var storageFormats = map[string]gpu.Format{
	"rgba8":   gpu.FormatR8G8B8A8Unorm,
	"rgba16f": gpu.FormatR16G16B16A16Sfloat,
	"rgba32f": gpu.FormatR32G32B32A32Sfloat,
}

// Load overlays the YAML file at path on Default. An empty path returns the
// defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.FramesInFlight < 2 {
		errs = append(errs, fmt.Errorf("frames_in_flight must be at least 2, got %d", c.FramesInFlight))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Simulation.LocalSize == 0 {
		errs = append(errs, errors.New("simulation.local_size must be positive"))
	}
	if c.Simulation.Particles <= 0 {
		errs = append(errs, fmt.Errorf("simulation.particles must be positive, got %d", c.Simulation.Particles))
	}
	if c.FenceTimeout < 0 {
		errs = append(errs, fmt.Errorf("fence_timeout must not be negative, got %s", c.FenceTimeout))
	}
	if _, err := c.PresentModeValue(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Mode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.StorageFormat(); err != nil {
		errs = append(errs, err)
	}
	if _, err := zapLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) PresentModeValue() (gpu.PresentMode, error) {
	m, ok := presentModes[strings.ToLower(c.PresentMode)]
	if !ok {
		return 0, fmt.Errorf("unknown present_mode %q", c.PresentMode)
	}
	return m, nil
}

func (c Config) Mode() (sim.Mode, error) {
	return sim.ParseMode(c.Simulation.Mode)
}

func (c Config) StorageFormat() (gpu.Format, error) {
	f, ok := storageFormats[strings.ToLower(c.Simulation.StorageFormat)]
	if !ok {
		return 0, fmt.Errorf("unknown simulation.storage_format %q", c.Simulation.StorageFormat)
	}
	return f, nil
}
