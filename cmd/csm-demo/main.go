// Command csm-demo renders a grid of rotating shapes lit by a directional light with cascaded
// variance shadow maps.
//
// Usage:
//
//	csm-demo [-config demo.yaml] [-headless -frames 120]
//
// Controls: WASD orbit the camera, Q/E or the scroll wheel zoom, Space pauses the light orbit,
// L toggles the light, Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/config"
	"github.com/Carmen-Shannon/oxy-csm/engine"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/Carmen-Shannon/oxy-csm/engine/loader"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
	"github.com/Carmen-Shannon/oxy-csm/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// gridSpacing is the distance between neighbouring shapes.
const gridSpacing = 6

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	headless := flag.Bool("headless", false, "render without a window")
	frames := flag.Int("frames", 120, "frames to render in headless mode")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	level, _ := cfg.Level()
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *headless {
		cfg.API = gpu.APIHeadless
	}

	width, height := cfg.Window.Width, cfg.Window.Height
	var win window.Window
	backendOpts := []backend.BackendBuilderOption{}
	if cfg.API != gpu.APIHeadless {
		win = window.NewWindow(window.WithTitle(cfg.Window.Title), window.WithSize(width, height))
		width, height = win.Width(), win.Height()
		backendOpts = append(backendOpts, backend.WithSurface(win.SurfaceDescriptor()))
		if !cfg.Window.VSync {
			backendOpts = append(backendOpts, backend.WithPresentMode(backend.PresentModeUncapped))
		}
	}
	backendOpts = append(backendOpts, backend.WithSurfaceSize(uint32(width), uint32(height)))

	r := renderer.NewRenderer(backend.CreateInstance(cfg.API, backendOpts...), renderer.WithFrameCount(cfg.FramesInFlight))
	defer r.Release()

	ctrl := camera.NewOrbitController(
		camera.WithRadius(cfg.Shadow.Cascades.Near*2),
		camera.WithRadiusLimits(2, cfg.Shadow.Cascades.Far),
		camera.WithElevation(0.5),
		camera.WithAzimuth(0.6),
	)
	cam := camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(60)),
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithNear(0.5),
		camera.WithFar(cfg.Shadow.Cascades.Far*1.5),
		camera.WithController(ctrl),
	)
	sun := light.NewLight(
		light.WithDirection(cfg.LightDirection()),
		light.WithIntensity(cfg.Light.Intensity),
		light.WithAmbient(cfg.Light.Ambient),
	)

	shadowOpts := []shadow.CoordinatorBuilderOption{shadow.WithBlurSigma(cfg.Shadow.BlurSigma)}
	if cfg.Shadow.ViewCameraFrustum {
		shadowOpts = append(shadowOpts, shadow.WithViewCamera(cam))
	}
	sceneOpts := []scene.SceneBuilderOption{
		scene.WithActive(true),
		scene.WithLight(sun),
		scene.WithCascadeDesc(cfg.Shadow.Cascades),
		scene.WithShadowOptions(shadowOpts...),
		scene.WithShaderOverrideDir(cfg.Shadow.ShaderOverrideDir),
		scene.WithModels(buildModels(cfg)...),
	}
	if cfg.Scene.Workers > 0 {
		sceneOpts = append(sceneOpts, scene.WithComputeWorkers(cfg.Scene.Workers))
	}
	s := scene.NewScene("demo", cam, r, sceneOpts...)
	defer s.Release()

	engineOpts := []engine.EngineBuilderOption{
		engine.WithRenderer(r),
		engine.WithScene(0, s),
		engine.WithProfiling(cfg.Profiling),
		engine.WithTickRate(60),
	}
	if win == nil {
		runHeadless(engine.NewEngine(engineOpts...), *frames)
		return
	}

	eng := engine.NewEngine(append(engineOpts, engine.WithSurface(win))...)
	bindInput(eng, win, ctrl, sun, cfg.Light.OrbitSpeed)
	eng.Run()
	if err := win.Close(); err != nil {
		common.Logger().Warn("close window", "err", err)
	}
}

// buildModels lays out the ground plane, a grid of shapes and the optional glTF model.
func buildModels(cfg config.Config) []model.Model {
	n := cfg.Scene.Grid
	extent := float32(max(n, 1)*gridSpacing) * 2
	models := []model.Model{
		model.NewModel(model.NewPlane(extent), model.WithName("ground"), model.WithCastsShadows(false)),
	}

	cube := model.NewCube(2)
	sphere := model.NewSphere(1.2, 24, 16)
	offset := float32(n-1) * gridSpacing / 2
	for i := range n {
		for j := range n {
			mesh, name := cube, "cube"
			if (i+j)%2 == 1 {
				mesh, name = sphere, "sphere"
			}
			height := float32(1 + (i*n+j)%3)
			models = append(models, model.NewModel(mesh,
				model.WithName(fmt.Sprintf("%s_%d_%d", name, i, j)),
				model.WithPosition(mgl32.Vec3{float32(i)*gridSpacing - offset, height, float32(j)*gridSpacing - offset}),
				model.WithRotationSpeed(mgl32.Vec3{0, 0.3 + 0.1*float32(j), 0}),
			))
		}
	}

	if cfg.Scene.Model != "" {
		l := loader.NewLoader(loader.BackendTypeGLTF)
		m, err := l.Load(cfg.Scene.Model, model.WithPosition(mgl32.Vec3{0, 0, offset + gridSpacing}))
		if err != nil {
			common.Logger().Error("skipping scene model", "path", cfg.Scene.Model, "err", err)
		} else {
			models = append(models, m)
		}
	}
	return models
}

// bindInput maps the keyboard and scroll wheel to the orbit camera and the light.
func bindInput(eng engine.Engine, win window.Window, ctrl camera.CameraController, sun light.Light, orbitSpeed float32) {
	in := newDemoInput(win, ctrl, sun, orbitSpeed)
	win.SetKeyDownCallback(in.onKey)
	win.SetScrollCallback(func(delta float32) {
		ctrl.Zoom(delta)
	})
	eng.SetTickCallback(in.tick)
}

// runHeadless renders a fixed number of frames and logs how many were presented.
func runHeadless(eng engine.Engine, frames int) {
	ctx := context.Background()
	dropped := 0
	for range frames {
		if err := eng.Frame(ctx); err != nil {
			dropped++
			common.Logger().Warn("frame dropped", "err", err)
		}
	}
	common.Logger().Info("headless run finished", "frames", frames, "dropped", dropped,
		"frame_number", eng.Renderer().FrameNumber())
}
