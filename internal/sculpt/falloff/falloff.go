// Package falloff provides brush weight curves over the normalized distance
// u = dist/radius.
package falloff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chewxy/math32"
)

// Curve maps a normalized distance in [0,1] to a weight in [0,1].
type Curve interface {
	Evaluate(u float32) float32
}

// Func adapts a plain function to Curve. Input and output are clamped.
type Func func(u float32) float32

// Evaluate implements Curve.
func (f Func) Evaluate(u float32) float32 {
	return clamp01(f(clamp01(u)))
}

// Linear falls off from 1 at the center to 0 at the rim.
var Linear Curve = Func(func(u float32) float32 { return 1 - u })

// Smooth is 1 - smoothstep(u): flat near the center and the rim.
var Smooth Curve = Func(func(u float32) float32 { return 1 - u*u*(3-2*u) })

// Constant weights every vertex inside the brush fully.
var Constant Curve = Func(func(float32) float32 { return 1 })

// Key is one control point of a Keyframes curve.
type Key struct {
	U      float32
	Weight float32
}

// Keyframes is a piecewise linear curve through sorted control points.
// Before the first key and after the last the end weights hold.
type Keyframes struct {
	keys []Key
}

// NewKeyframes sorts a copy of keys by U.
func NewKeyframes(keys []Key) *Keyframes {
	sorted := append([]Key(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].U < sorted[j].U })
	return &Keyframes{keys: sorted}
}

// Evaluate implements Curve.
func (k *Keyframes) Evaluate(u float32) float32 {
	u = clamp01(u)
	if len(k.keys) == 0 {
		return 1
	}
	if len(k.keys) == 1 {
		return clamp01(k.keys[0].Weight)
	}

	var prev, next int
	for i := range k.keys {
		if k.keys[i].U > u {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return clamp01(k.keys[prev].Weight)
	}

	k0, k1 := k.keys[prev], k.keys[next]
	t := float32(0)
	if k1.U != k0.U {
		t = (u - k0.U) / (k1.U - k0.U)
	}
	return clamp01(k0.Weight + t*(k1.Weight-k0.Weight))
}

// FromConfig resolves a curve by name. "keys" builds a Keyframes curve from
// keys; an empty name selects Smooth.
func FromConfig(name string, keys []Key) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "smooth":
		return Smooth, nil
	case "linear":
		return Linear, nil
	case "constant":
		return Constant, nil
	case "keys", "keyframes":
		if len(keys) == 0 {
			return nil, fmt.Errorf("falloff %q needs at least one key", name)
		}
		return NewKeyframes(keys), nil
	default:
		return nil, fmt.Errorf("unknown falloff %q", name)
	}
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}
