// sculptool is a headless CLI for inspecting, generating, sculpting and
// remeshing OBJ meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/falloff"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/remesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/weld"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Core warnings (skipped remesh steps, odd input) go to the console
	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "gen":
		err = cmdGen(args)
	case "stamp":
		err = cmdStamp(args)
	case "remesh":
		err = cmdRemesh(args)
	case "smooth":
		err = cmdSmooth(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sculptool - mesh sculpt and remesh utility

Usage:
  sculptool <command> [options]

Commands:
  info [-eps e] <mesh.obj>                      Show mesh statistics and seam welding
  gen [-detail n] [-scale s] <primitive> <out>  Write icosphere, uvsphere or grid
  stamp [options] <in.obj> <out.obj>            Apply brush stamps
  remesh [options] <in.obj> <out.obj>           Run remesh steps
  smooth [-iterations n] [-lambda l] <in> <out> Laplacian smoothing only

Examples:
  sculptool gen -detail 3 icosphere ball.obj
  sculptool stamp -center 0,1,0 -radius 0.4 -strength 0.1 -mode pull ball.obj out.obj
  sculptool remesh -steps 5 -max-edge 0.05 out.obj fine.obj
  sculptool info fine.obj`)
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	eps := fs.Float64("eps", float64(weld.DefaultEpsilon), "Weld epsilon")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: sculptool info [-eps e] <mesh.obj>")
	}
	m, err := mesh.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	s := m.ComputeStats()
	groups := weld.Build(m.Positions, float32(*eps))
	size := m.Bounds.Size()

	fmt.Printf("Mesh:      %s\n", m.Name)
	fmt.Printf("Vertices:  %d\n", s.Vertices)
	fmt.Printf("Triangles: %d\n", s.Triangles)
	fmt.Printf("UVs:       %v\n", m.HasUVs())
	fmt.Printf("Bounds:    %s .. %s (size %s)\n", formatVec3(m.Bounds.Min), formatVec3(m.Bounds.Max), formatVec3(size))
	fmt.Printf("Edges:     min %.5g, mean %.5g, max %.5g\n", s.MinEdge, s.MeanEdge, s.MaxEdge)
	fmt.Printf("Weld:      %d groups, %d duplicate vertices\n", groups.Len(), groups.Duplicates())
	return nil
}

func cmdGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	detail := fs.Int("detail", 3, "Subdivisions, ring count or grid resolution")
	scale := fs.Float64("scale", 1, "Uniform scale")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: sculptool gen [-detail n] [-scale s] <icosphere|uvsphere|grid> <out.obj>")
	}
	m, err := mesh.Primitive(fs.Arg(0), *detail, float32(*scale))
	if err != nil {
		return err
	}
	if err := m.Save(fs.Arg(1)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d vertices, %d triangles\n", fs.Arg(1), m.VertexCount(), m.TriangleCount())
	return nil
}

func cmdStamp(args []string) error {
	def := config.Default()

	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	center := fs.String("center", "0,0,0", "Stamp center x,y,z in world space")
	radius := fs.Float64("radius", float64(def.Brush.Radius), "Brush radius")
	strength := fs.Float64("strength", float64(def.Brush.Strength), "Displacement per stamp")
	mode := fs.String("mode", "push", "push, pull or smooth")
	curve := fs.String("falloff", def.Brush.Falloff, "linear, smooth or constant")
	count := fs.Int("count", 1, "Number of times to apply the stamp")
	noWeld := fs.Bool("no-weld", false, "Disable seam vertex welding")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: sculptool stamp [options] <in.obj> <out.obj>")
	}
	c, err := parseVec3(*center)
	if err != nil {
		return fmt.Errorf("-center: %w", err)
	}
	bm, err := editable.ParseBrushMode(*mode)
	if err != nil {
		return err
	}
	fc, err := falloff.FromConfig(*curve, nil)
	if err != nil {
		return err
	}

	settings := editable.SettingsFromConfig(def.Deform)
	settings.WeldDuplicateVertices = !*noWeld
	e, err := openEditable(fs.Arg(0), fc, settings)
	if err != nil {
		return err
	}

	changed := 0
	for i := 0; i < *count; i++ {
		if e.ApplyBrushWorld(c, float32(*radius), float32(*strength), bm) {
			changed++
		}
	}
	if err := e.Mesh().Save(fs.Arg(1)); err != nil {
		return err
	}
	fmt.Printf("Applied %d/%d %s stamps, wrote %s\n", changed, *count, bm, fs.Arg(1))
	return nil
}

func cmdRemesh(args []string) error {
	def := config.Default()

	fs := flag.NewFlagSet("remesh", flag.ExitOnError)
	steps := fs.Int("steps", 1, "Remesh steps to run")
	maxEdge := fs.Float64("max-edge", float64(def.Remesh.MaxEdgeLength), "Split edges longer than this")
	splits := fs.Int("splits", def.Remesh.SplitsPerStep, "Split budget per step")
	passes := fs.Int("passes", def.Remesh.MaxPasses, "Split passes per step")
	iterations := fs.Int("smooth-iterations", def.Remesh.SmoothIterations, "Smoothing iterations per step")
	lambda := fs.Float64("lambda", float64(def.Remesh.SmoothLambda), "Smoothing factor in [0,1]")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: sculptool remesh [options] <in.obj> <out.obj>")
	}

	rc := def.Remesh
	rc.MaxEdgeLength = float32(*maxEdge)
	rc.SplitsPerStep = *splits
	rc.MaxPasses = *passes
	rc.SmoothIterations = *iterations
	rc.SmoothLambda = float32(*lambda)
	def.Remesh = rc
	if err := def.Validate(); err != nil {
		return err
	}

	e, err := openEditable(fs.Arg(0), falloff.Smooth, editable.SettingsFromConfig(def.Deform))
	if err != nil {
		return err
	}
	r := remesh.New(e, remesh.SettingsFromConfig(rc))

	before := e.Counts()
	for i := 0; i < *steps; i++ {
		res, err := r.Step()
		if err != nil {
			return err
		}
		fmt.Printf("step %d: %d splits, %d vertices, %d triangles (%s)\n",
			i+1, res.Splits, res.Vertices, res.Triangles, res.Duration)
		if !res.Committed {
			break
		}
	}
	if err := e.Mesh().Save(fs.Arg(1)); err != nil {
		return err
	}
	after := e.Counts()
	fmt.Printf("Wrote %s: %d -> %d vertices, %d -> %d triangles\n",
		fs.Arg(1), before.Vertices, after.Vertices, before.Triangles, after.Triangles)
	return nil
}

func cmdSmooth(args []string) error {
	fs := flag.NewFlagSet("smooth", flag.ExitOnError)
	iterations := fs.Int("iterations", 1, "Smoothing iterations")
	lambda := fs.Float64("lambda", 0.5, "Smoothing factor in [0,1]")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: sculptool smooth [-iterations n] [-lambda l] <in.obj> <out.obj>")
	}
	m, err := mesh.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	remesh.LaplacianSmooth(m.Positions, m.Indices, *iterations, float32(*lambda))
	m.RecalculateNormals()
	m.RecalculateBounds()
	if err := m.Save(fs.Arg(1)); err != nil {
		return err
	}
	fmt.Printf("Smoothed %d vertices x%d, wrote %s\n", m.VertexCount(), *iterations, fs.Arg(1))
	return nil
}

func openEditable(path string, curve falloff.Curve, settings editable.Settings) (*editable.Mesh, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return nil, err
	}
	return editable.New(m, xform.Identity(), curve, settings)
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return math.Vec3FromArray(v), nil
}

func formatVec3(v math.Vec3) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}
