// Package session schedules brush stamps and remeshing against one mesh and
// serializes access to it, so input, rendering and config reload goroutines
// can share it.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/collider"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/falloff"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/remesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// TickResult summarizes one Tick.
type TickResult struct {
	Stamps   int // stamps drained from the queue
	Changed  int // stamps that moved at least one vertex
	Remeshed bool
	Remesh   remesh.Result
}

// Session owns an editable mesh and its remesher. Within a tick, queued
// stamps are applied in arrival order before the remesh timer advances.
type Session struct {
	mu       sync.Mutex
	cfg      *config.Config
	xf       xform.Transform
	mesh     *editable.Mesh
	remesher *remesh.Remesher
	queue    []editable.Stamp
	log      *zap.Logger
}

// New starts a session on m with the given config. The config is cloned.
func New(m *mesh.Mesh, xf xform.Transform, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg, err := cfg.Clone()
	if err != nil {
		return nil, err
	}
	s := &Session{cfg: cfg, xf: xf, log: logger.Named("session")}
	if err := s.load(m); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(m *mesh.Mesh) error {
	curve, err := curveFromConfig(s.cfg.Brush)
	if err != nil {
		return err
	}
	e, err := editable.New(m, s.xf, curve, editable.SettingsFromConfig(s.cfg.Deform))
	if err != nil {
		return err
	}
	s.mesh = e
	s.remesher = remesh.New(e, remesh.SettingsFromConfig(s.cfg.Remesh))
	s.queue = s.queue[:0]

	counts := e.Counts()
	s.log.Info("mesh loaded",
		zap.String("name", m.Name),
		zap.Int("vertices", counts.Vertices),
		zap.Int("triangles", counts.Triangles))
	return nil
}

func curveFromConfig(b config.BrushConfig) (falloff.Curve, error) {
	keys := make([]falloff.Key, len(b.FalloffKeys))
	for i, k := range b.FalloffKeys {
		keys[i] = falloff.Key{U: k.U, Weight: k.Weight}
	}
	curve, err := falloff.FromConfig(b.Falloff, keys)
	if err != nil {
		return nil, fmt.Errorf("brush falloff: %w", err)
	}
	return curve, nil
}

// Replace swaps in a new mesh, keeping the current settings. Pending stamps
// are dropped. On error the previous mesh stays loaded.
func (s *Session) Replace(m *mesh.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(m)
}

// Enqueue queues a stamp for the next Tick.
func (s *Session) Enqueue(st editable.Stamp) {
	s.mu.Lock()
	s.queue = append(s.queue, st)
	s.mu.Unlock()
}

// Pending returns the number of queued stamps.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Tick applies queued stamps, then advances the remesh timer by dt seconds.
// A skipped remesh step is reported as an error after the stamps were applied.
func (s *Session) Tick(dt float32) (TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TickResult
	for _, st := range s.queue {
		res.Stamps++
		if s.mesh.ApplyStamp(st) {
			res.Changed++
		}
	}
	s.queue = s.queue[:0]

	rr, ran, err := s.remesher.Tick(dt)
	res.Remeshed = ran
	res.Remesh = rr
	if err != nil {
		s.log.Warn("remesh step failed", zap.Error(err))
		return res, err
	}
	return res, nil
}

// Reset drops pending stamps and restores the load-time mesh.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = s.queue[:0]
	s.mesh.ResetMesh()
	s.log.Info("mesh reset", zap.Int("vertices", s.mesh.Counts().Vertices))
}

// RemeshNow runs one remesh step immediately.
func (s *Session) RemeshNow() (remesh.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remesher.Step()
}

// UpdateSettings applies a new config to the running session. Window and
// mesh selection changes are ignored. On error nothing changes.
func (s *Session) UpdateSettings(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	curve, err := curveFromConfig(cfg.Brush)
	if err != nil {
		return err
	}
	clone, err := cfg.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = clone
	s.mesh.SetFalloff(curve)
	s.mesh.UpdateSettings(editable.SettingsFromConfig(clone.Deform))
	s.remesher.UpdateSettings(remesh.SettingsFromConfig(clone.Remesh))

	s.log.Info("settings updated",
		zap.String("falloff", clone.Brush.Falloff),
		zap.Bool("weld", clone.Deform.WeldDuplicateVertices),
		zap.Bool("auto_remesh", clone.Remesh.AutoRun))
	return nil
}

// Config returns a copy of the active config.
func (s *Session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cfg.Clone()
	if err != nil {
		return config.Default()
	}
	return c
}

// Counts returns the current mesh counts.
func (s *Session) Counts() editable.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh.Counts()
}

// Stats returns the remesher counters.
func (s *Session) Stats() remesh.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remesher.Stats()
}

// Raycast intersects a world-space ray with the mesh collider.
func (s *Session) Raycast(origin, dir math.Vec3) (collider.Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh.Raycast(origin, dir)
}

// WithMesh runs fn while holding the session lock. fn must not retain the
// mesh or call back into the session.
func (s *Session) WithMesh(fn func(e *editable.Mesh)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.mesh)
}
