package editable

import (
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// BrushMode selects the displacement direction of a stamp.
type BrushMode int

const (
	Push BrushMode = iota
	Pull
	// Smooth is reserved for a footprint-restricted relaxation brush. It
	// currently displaces nothing and is not an error.
	Smooth
)

func (m BrushMode) String() string {
	switch m {
	case Push:
		return "push"
	case Pull:
		return "pull"
	case Smooth:
		return "smooth"
	default:
		return fmt.Sprintf("BrushMode(%d)", int(m))
	}
}

// ParseBrushMode parses a mode name as printed by String.
func ParseBrushMode(s string) (BrushMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "push":
		return Push, nil
	case "pull":
		return Pull, nil
	case "smooth":
		return Smooth, nil
	default:
		return Push, fmt.Errorf("unknown brush mode %q", s)
	}
}

// displacement returns the world-space offset for a unit normal and a
// weighted strength.
func (m BrushMode) displacement(normal math.Vec3, amount float32) math.Vec3 {
	switch m {
	case Push:
		return normal.Scale(amount)
	case Pull:
		return normal.Scale(-amount)
	default:
		return math.Vec3{}
	}
}

// Stamp is one brush application in world space, as produced by contact or
// pointer-drag input.
type Stamp struct {
	Center   math.Vec3
	Radius   float32
	Strength float32
	Mode     BrushMode
}
