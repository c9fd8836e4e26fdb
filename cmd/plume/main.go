// Command plume renders an interactive volumetric particle simulation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/NOT-REAL-GAMES/plume/assets"
	"github.com/NOT-REAL-GAMES/plume/config"
	"github.com/NOT-REAL-GAMES/plume/frame"
	"github.com/NOT-REAL-GAMES/plume/gpu"
	"github.com/NOT-REAL-GAMES/plume/gpu/vulkan"
	"github.com/NOT-REAL-GAMES/plume/pipeline"
	"github.com/NOT-REAL-GAMES/plume/present"
	"github.com/NOT-REAL-GAMES/plume/shaderwatch"
	"github.com/NOT-REAL-GAMES/plume/sim"
	"github.com/NOT-REAL-GAMES/plume/ui"
	"github.com/NOT-REAL-GAMES/plume/window"
)

func init() {
	// glfw must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "plume:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := render(cfg, logger); err != nil {
		logger.Error("renderer stopped", zap.Error(err))
		return err
	}
	return nil
}

// Manifest keys.
const (
	shaderFluid           = "fluid"
	shaderSmoke           = "smoke"
	shaderVertex          = "vertex"
	shaderFragment        = "fragment"
	shaderOverlayVertex   = "overlay_vertex"
	shaderOverlayFragment = "overlay_fragment"

	textureCaustic   = "caustic"
	textureNoise     = "noise"
	textureBlueNoise = "blue_noise"
)

func manifest(cfg config.Config) assets.Manifest {
	m := assets.Manifest{
		Shaders: map[string]string{
			shaderFluid:    cfg.Shaders.Fluid,
			shaderSmoke:    cfg.Shaders.Smoke,
			shaderVertex:   cfg.Shaders.Vertex,
			shaderFragment: cfg.Shaders.Fragment,
		},
		Textures: map[string]string{
			textureCaustic:   cfg.Textures.Caustic,
			textureNoise:     cfg.Textures.Noise,
			textureBlueNoise: cfg.Textures.BlueNoise,
		},
	}
	if cfg.Shaders.OverlayVertex != "" && cfg.Shaders.OverlayFragment != "" {
		m.Shaders[shaderOverlayVertex] = cfg.Shaders.OverlayVertex
		m.Shaders[shaderOverlayFragment] = cfg.Shaders.OverlayFragment
	}
	return m
}

func uploadTextures(ctx *gpu.Context, bundle *assets.Bundle) (tex sim.Textures, err error) {
	defer func() {
		if err != nil {
			tex.Destroy()
		}
	}()

	targets := []struct {
		name string
		dst  **gpu.Image
	}{
		{textureCaustic, &tex.Caustic},
		{textureNoise, &tex.Noise},
		{textureBlueNoise, &tex.BlueNoise},
	}
	for _, t := range targets {
		src := bundle.Textures[t.name]
		img, err := sim.NewTexture(ctx, src.Width, src.Height, gpu.FormatR8G8B8A8Unorm, src.Pixels)
		if err != nil {
			return tex, fmt.Errorf("upload %s texture: %w", t.name, err)
		}
		*t.dst = img
	}
	return tex, nil
}

func render(cfg config.Config, logger *zap.Logger) error {
	mode, err := cfg.Mode()
	if err != nil {
		return err
	}
	presentMode, err := cfg.PresentModeValue()
	if err != nil {
		return err
	}
	storageFormat, err := cfg.StorageFormat()
	if err != nil {
		return err
	}

	win, err := window.Open(window.Options{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		Log:    logger,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	backend, err := vulkan.Open(vulkan.Options{
		AppName:       cfg.Window.Title,
		Validation:    cfg.Validation,
		Extensions:    win.RequiredExtensions(),
		CreateSurface: win.CreateSurface,
		Log:           logger,
	})
	if err != nil {
		return err
	}
	defer backend.Close()
	ctx := backend.Context()

	loader := assets.Loader{Root: cfg.AssetRoot}
	bundle, err := loader.LoadAll(context.Background(), manifest(cfg))
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	tex, err := uploadTextures(ctx, bundle)
	if err != nil {
		return err
	}
	// NewResources owns tex from here, including on failure.
	res, err := sim.NewResources(ctx, sim.ResourceConfig{
		Slots:         cfg.FramesInFlight,
		Particles:     cfg.Simulation.Particles,
		Width:         uint32(cfg.Window.Width),
		Height:        uint32(cfg.Window.Height),
		StorageFormat: storageFormat,
		Seed:          cfg.Simulation.Seed,
	}, tex)
	if err != nil {
		return fmt.Errorf("create simulation resources: %w", err)
	}
	defer res.Destroy()

	surface := present.New(backend, win, present.Options{
		PresentMode:    presentMode,
		AcquireTimeout: cfg.FenceTimeout,
		Log:            logger,
	})
	if err := surface.Create(); err != nil {
		return err
	}
	defer surface.Destroy()

	stack, err := pipeline.Build(backend, res, pipeline.Shaders{
		Compute: map[sim.Mode][]byte{
			sim.Fluid: bundle.Shaders[shaderFluid],
			sim.Smoke: bundle.Shaders[shaderSmoke],
		},
		Vertex:   bundle.Shaders[shaderVertex],
		Fragment: bundle.Shaders[shaderFragment],
	}, surface.Format().Format, logger)
	if err != nil {
		return err
	}
	defer stack.Destroy()

	input := &sim.InputState{}
	panel := ui.NewPanel(ui.PanelOptions{
		Input:     input,
		Mode:      mode,
		Pipelines: backend,
		Vertex:    bundle.Shaders[shaderOverlayVertex],
		Fragment:  bundle.Shaders[shaderOverlayFragment],
		SetTitle:  win.SetTitle,
		Log:       logger,
	})
	if err := panel.Init(surface.ImageCount(), ui.Target{ColorFormat: surface.Format().Format}); err != nil {
		return err
	}
	defer panel.Shutdown()

	clock := frame.NewClock(win.Time)
	orch, err := frame.New(frame.Deps{
		Context:      ctx,
		Surface:      surface,
		Resources:    res,
		Pipelines:    stack,
		Overlay:      panel,
		Params:       panel,
		Input:        input,
		Camera:       sim.NewCamera(),
		Clock:        clock,
		LocalSize:    cfg.Simulation.LocalSize,
		Mode:         mode,
		FenceTimeout: cfg.FenceTimeout,
		Log:          logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := orch.Close(); err != nil {
			logger.Warn("frame shutdown", zap.Error(err))
		}
	}()
	win.OnResize(orch.NotifyResized)

	var reloads <-chan sim.Mode
	if cfg.HotReload {
		watcher, err := shaderwatch.New(logger, map[sim.Mode]string{
			sim.Fluid: loader.Path(cfg.Shaders.Fluid),
			sim.Smoke: loader.Path(cfg.Shaders.Smoke),
		}, 0)
		if err != nil {
			return err
		}
		watchCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		watcher.Start(watchCtx)
		defer watcher.Stop() //nolint:errcheck
		reloads = watcher.Reloads()
	}

	shaderPaths := map[sim.Mode]string{sim.Fluid: cfg.Shaders.Fluid, sim.Smoke: cfg.Shaders.Smoke}
	for !win.ShouldClose() {
		win.PollEvents()
		win.Poll(input)
		drainReloads(reloads, loader, shaderPaths, stack, logger)

		if err := orch.DrawFrame(); err != nil {
			return err
		}
		clock.Tick()
	}

	logger.Info("shutting down", zap.Uint64("frames", orch.Frame()), zap.Int("resizes", surface.Resizes()))
	return nil
}

// drainReloads rebuilds the compute pipeline of every mode whose shader
// changed since the last frame. A bad blob keeps the running pipeline.
func drainReloads(reloads <-chan sim.Mode, loader assets.Loader, paths map[sim.Mode]string, stack *pipeline.Stack, logger *zap.Logger) {
	for {
		select {
		case m := <-reloads:
			code, err := loader.Shader(paths[m])
			if err != nil {
				level := zap.ErrorLevel
				if errors.Is(err, assets.ErrDecode) {
					level = zap.WarnLevel
				}
				logger.Log(level, "shader reload skipped", zap.Stringer("mode", m), zap.Error(err))
				continue
			}
			if err := stack.ReloadCompute(m, code); err != nil {
				logger.Error("shader reload failed", zap.Stringer("mode", m), zap.Error(err))
			}
		default:
			return
		}
	}
}
