// Package app implements the interactive sculpt viewer: window, input, camera
// and renderer wired to a sculpt session.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/engine/camera"
	"github.com/Faultbox/midgard-sculpt/internal/engine/debug"
	"github.com/Faultbox/midgard-sculpt/internal/engine/input"
	"github.com/Faultbox/midgard-sculpt/internal/engine/renderer"
	"github.com/Faultbox/midgard-sculpt/internal/engine/window"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/session"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
)

const title = "Midgard Sculpt"

// App is the viewer instance.
type App struct {
	configPath string
	running    bool
	screenshot bool
	log        *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.Screenshots

	xf      *xform.TRS
	session *session.Session
	brush   atomic.Pointer[config.BrushConfig]
	name    string
}

// LoadMesh returns the mesh a config selects: the OBJ at Path when set,
// otherwise the named primitive.
func LoadMesh(cfg config.MeshConfig) (*mesh.Mesh, error) {
	if cfg.Path != "" {
		m, err := mesh.Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		m.ScaleBy(cfg.Scale)
		return m, nil
	}
	return mesh.Primitive(cfg.Primitive, cfg.Subdivisions, cfg.Scale)
}

// New creates the viewer. configPath is watched for changes when not empty.
func New(cfg *config.Config, configPath string) (*App, error) {
	a := &App{
		configPath: configPath,
		log:        logger.Named("app"),
		camera:     camera.NewOrbitCamera(),
		shots:      debug.NewScreenshots("screenshots", "sculpt"),
		xf:         xform.Identity(),
	}
	brush := cfg.Brush
	a.brush.Store(&brush)

	m, err := LoadMesh(cfg.Mesh)
	if err != nil {
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	a.session, err = session.New(m, a.xf, cfg)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	a.name = m.Name
	a.camera.FitToBounds(m.Bounds.Min, m.Bounds.Max)

	// Create window (this also creates the OpenGL context)
	a.window, err = window.New(window.FromConfig(title, cfg.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the OpenGL context
	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.log.Info("viewer initialized", zap.String("mesh", a.name))
	return a, nil
}

// Run runs the main loop until the window closes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.configPath != "" {
		go func() {
			if err := config.Watch(ctx, a.configPath, a.applyConfig); err != nil {
				a.log.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	a.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")
	for a.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			break
		}
		a.handleEvents()
		if !a.running {
			break
		}

		a.sculpt()
		// Skipped remesh steps are logged by the session
		res, _ := a.session.Tick(dt)
		if res.Remeshed && res.Remesh.Committed {
			a.log.Debug("remeshed",
				zap.Int("splits", res.Remesh.Splits),
				zap.Int("vertices", res.Remesh.Vertices))
		}

		a.render()
		if a.screenshot {
			a.screenshot = false
			a.capture()
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			c := a.session.Counts()
			a.window.SetTitle(fmt.Sprintf("%s - %s - %d verts, %d tris, %d fps",
				title, a.name, c.Vertices, c.Triangles, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) applyConfig(cfg *config.Config) {
	if err := a.session.UpdateSettings(cfg); err != nil {
		a.log.Warn("config not applied", zap.Error(err))
		return
	}
	brush := cfg.Brush
	a.brush.Store(&brush)
}

func (a *App) handleEvents() {
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.renderer.Resize(a.window.DrawableSize())
		case input.EventMouseMove:
			if a.input.ButtonHeld(input.ButtonMiddle) {
				a.camera.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}
		case input.EventMouseWheel:
			a.camera.HandleZoom(ev.Wheel)
		case input.EventKeyDown:
			a.do(KeyAction(ev.Key))
		}
	}
}

func (a *App) do(action Action) {
	switch action {
	case ActionQuit:
		a.running = false
	case ActionReset:
		a.session.Reset()
	case ActionRemesh:
		res, err := a.session.RemeshNow()
		if err != nil {
			a.log.Warn("remesh failed", zap.Error(err))
			return
		}
		a.log.Info("remesh step",
			zap.Int("splits", res.Splits),
			zap.Int("vertices", res.Vertices),
			zap.Int("triangles", res.Triangles))
	case ActionOpen:
		a.open()
	case ActionSave:
		a.save()
	case ActionWireframe:
		a.renderer.Wireframe = !a.renderer.Wireframe
	case ActionScreenshot:
		// Captured after the next render, before the swap
		a.screenshot = true
	case ActionFrame:
		a.session.WithMesh(func(e *editable.Mesh) {
			b := e.Mesh().Bounds
			a.camera.FitToBounds(b.Min, b.Max)
		})
	}
}

// sculpt queues one stamp under the cursor while a sculpt button is held.
func (a *App) sculpt() {
	mode, ok := BrushFor(
		a.input.ButtonHeld(input.ButtonLeft),
		a.input.ButtonHeld(input.ButtonRight),
		a.input.ShiftHeld(),
	)
	if !ok {
		return
	}
	mx, my := a.input.MousePosition()
	w, h := a.window.Size()
	if w == 0 || h == 0 {
		return
	}
	ray := a.camera.Ray(float32(mx), float32(my), float32(w), float32(h))
	hit, ok := a.session.Raycast(ray.Origin, ray.Direction)
	if !ok {
		return
	}
	a.session.Enqueue(BrushStamp(hit.Point, *a.brush.Load(), mode, a.xf))
}

func (a *App) render() {
	a.renderer.Begin()
	a.session.WithMesh(func(e *editable.Mesh) {
		a.renderer.Upload(e.Mesh(), e.Revision())
	})
	viewProj := a.camera.ProjectionMatrix(a.renderer.Aspect()).Mul(a.camera.ViewMatrix())
	a.renderer.Draw(a.xf.LocalToWorld(), viewProj)
	a.renderer.End()
}

func (a *App) capture() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.Save(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) open() {
	path, err := dialog.File().Filter("Wavefront OBJ", "obj").Title("Open mesh").Load()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			a.log.Warn("open dialog failed", zap.Error(err))
		}
		return
	}
	m, err := mesh.Load(path)
	if err == nil {
		err = a.session.Replace(m)
	}
	if err != nil {
		a.log.Error("failed to open mesh", zap.String("path", path), zap.Error(err))
		dialog.Message("Could not open %s:\n%v", filepath.Base(path), err).Title("Open mesh").Error()
		return
	}
	a.name = m.Name
	a.renderer.Invalidate()
	a.camera.FitToBounds(m.Bounds.Min, m.Bounds.Max)
}

func (a *App) save() {
	path, err := dialog.File().Filter("Wavefront OBJ", "obj").Title("Save mesh").Save()
	if err != nil {
		if !errors.Is(err, dialog.ErrCancelled) {
			a.log.Warn("save dialog failed", zap.Error(err))
		}
		return
	}
	if filepath.Ext(path) == "" {
		path += ".obj"
	}
	a.session.WithMesh(func(e *editable.Mesh) {
		err = e.Mesh().Save(path)
	})
	if err != nil {
		a.log.Error("failed to save mesh", zap.String("path", path), zap.Error(err))
		dialog.Message("Could not save %s:\n%v", filepath.Base(path), err).Title("Save mesh").Error()
		return
	}
	a.log.Info("mesh saved", zap.String("path", path))
}
