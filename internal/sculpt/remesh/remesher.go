package remesh

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/weld"
)

// ErrMeshUnreadable is returned when a step finds no readable geometry.
var ErrMeshUnreadable = errors.New("mesh is not readable")

// State is the remesher's position in its step cycle.
type State int

const (
	Idle State = iota
	Scanning
	Splitting
	Smoothing
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Splitting:
		return "splitting"
	case Smoothing:
		return "smoothing"
	case Committed:
		return "committed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Settings controls remeshing budgets and scheduling.
type Settings struct {
	MaxEdgeLength    float32
	SplitsPerStep    int
	MaxPasses        int
	SmoothIterations int
	SmoothLambda     float32
	AutoRun          bool
	IntervalSeconds  float32
	RebuildCollider  bool
}

// SettingsFromConfig extracts remesher settings from the tool config.
func SettingsFromConfig(cfg config.RemeshConfig) Settings {
	return Settings{
		MaxEdgeLength:    cfg.MaxEdgeLength,
		SplitsPerStep:    cfg.SplitsPerStep,
		MaxPasses:        cfg.MaxPasses,
		SmoothIterations: cfg.SmoothIterations,
		SmoothLambda:     cfg.SmoothLambda,
		AutoRun:          cfg.AutoRun,
		IntervalSeconds:  cfg.IntervalSeconds,
		RebuildCollider:  cfg.RebuildCollider,
	}
}

// Result describes one step.
type Result struct {
	Splits    int
	Smoothed  bool
	Committed bool
	Vertices  int
	Triangles int
	Duration  time.Duration
}

// Stats accumulates step counters for diagnostics.
type Stats struct {
	Steps        int
	Skipped      int
	TotalSplits  int
	LastDuration time.Duration
}

// Remesher periodically restructures an editable mesh. Like the mesh it
// edits, it is not safe for concurrent use.
type Remesher struct {
	target   *editable.Mesh
	settings Settings
	state    State
	elapsed  float32
	stats    Stats
	observer func(from, to State)
	log      *zap.Logger
}

// New creates a remesher for target.
func New(target *editable.Mesh, settings Settings) *Remesher {
	return &Remesher{
		target:   target,
		settings: settings,
		log:      logger.Named("remesh"),
	}
}

// State returns the current state. Outside of a step it is always Idle.
func (r *Remesher) State() State { return r.state }

// Stats returns accumulated counters.
func (r *Remesher) Stats() Stats { return r.stats }

// Settings returns the current settings.
func (r *Remesher) Settings() Settings { return r.settings }

// UpdateSettings replaces the settings. The interval timer keeps running.
func (r *Remesher) UpdateSettings(s Settings) { r.settings = s }

// Observe registers fn to be called on every state transition.
func (r *Remesher) Observe(fn func(from, to State)) { r.observer = fn }

func (r *Remesher) setState(s State) {
	from := r.state
	r.state = s
	if r.observer != nil && from != s {
		r.observer(from, s)
	}
}

// Tick advances the interval timer by dt seconds and runs a step when
// AutoRun is on and the interval has elapsed. ran reports whether a step
// was attempted.
func (r *Remesher) Tick(dt float32) (res Result, ran bool, err error) {
	if !r.settings.AutoRun {
		return Result{}, false, nil
	}
	r.elapsed += dt
	if r.elapsed < r.settings.IntervalSeconds {
		return Result{}, false, nil
	}
	r.elapsed = 0
	res, err = r.Step()
	return res, true, err
}

// Step runs one split, smooth and commit cycle immediately. Smoothing runs
// on every step when iterations and lambda are positive, so repeated steps
// shrink the mesh. With welding enabled, seam duplicates are smoothed as one
// vertex. Nothing is committed when neither phase touched the geometry. A
// missing or unreadable mesh is skipped with a warning and ErrMeshUnreadable.
func (r *Remesher) Step() (Result, error) {
	if r.target == nil {
		r.stats.Skipped++
		return Result{}, ErrMeshUnreadable
	}
	m := r.target.Mesh()
	if m == nil || !m.Readable || m.VertexCount() == 0 {
		r.stats.Skipped++
		name := ""
		if m != nil {
			name = m.Name
		}
		r.log.Warn("remesh step skipped: mesh is not readable", zap.String("mesh", name))
		return Result{}, fmt.Errorf("remesh %q: %w", name, ErrMeshUnreadable)
	}

	start := time.Now()
	defer r.setState(Idle)

	r.setState(Scanning)
	buf := NewBuffers(m)

	r.setState(Splitting)
	splits := SplitLongEdges(buf, r.target.Transform(), r.settings.MaxEdgeLength, r.settings.SplitsPerStep, r.settings.MaxPasses)

	r.setState(Smoothing)
	smoothed := false
	if r.settings.SmoothIterations > 0 && r.settings.SmoothLambda > 0 {
		var groups *weld.Groups
		if ds := r.target.Settings(); ds.WeldDuplicateVertices {
			groups = weld.Build(buf.Positions, ds.WeldEpsilon)
		}
		LaplacianSmoothWelded(buf.Positions, buf.Indices, groups, r.settings.SmoothIterations, r.settings.SmoothLambda)
		smoothed = true
	}

	res := Result{Splits: splits, Smoothed: smoothed}
	if splits > 0 || smoothed {
		if err := r.target.CommitTopology(buf.Positions, buf.UVs, buf.Indices); err != nil {
			return Result{}, fmt.Errorf("remesh commit: %w", err)
		}
		if r.settings.RebuildCollider {
			r.target.RebuildCollider()
		}
		res.Committed = true
		r.setState(Committed)
	}

	counts := r.target.Counts()
	res.Vertices = counts.Vertices
	res.Triangles = counts.Triangles
	res.Duration = time.Since(start)

	r.stats.Steps++
	r.stats.TotalSplits += splits
	r.stats.LastDuration = res.Duration

	if res.Committed {
		r.log.Debug("remesh step committed",
			zap.Int("splits", splits),
			zap.Int("vertices", res.Vertices),
			zap.Int("triangles", res.Triangles),
			zap.Duration("duration", res.Duration))
	}
	return res, nil
}
