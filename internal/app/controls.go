package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionRemesh
	ActionOpen
	ActionSave
	ActionWireframe
	ActionFrame
	ActionScreenshot
)

var keyActions = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_R:      ActionReset,
	sdl.SCANCODE_M:      ActionRemesh,
	sdl.SCANCODE_O:      ActionOpen,
	sdl.SCANCODE_S:      ActionSave,
	sdl.SCANCODE_W:      ActionWireframe,
	sdl.SCANCODE_F:      ActionFrame,
	sdl.SCANCODE_P:      ActionScreenshot,
}

// KeyAction returns the action bound to a key.
func KeyAction(key sdl.Scancode) Action {
	return keyActions[key]
}

// BrushFor maps held mouse buttons to a brush mode. Left pushes, right pulls,
// shift+left smooths. ok is false when no sculpt button is held.
func BrushFor(left, right, shift bool) (mode editable.BrushMode, ok bool) {
	switch {
	case left && shift:
		return editable.Smooth, true
	case left:
		return editable.Push, true
	case right:
		return editable.Pull, true
	}
	return editable.Push, false
}

// BrushStamp builds a stamp at a world-space hit point. The configured radius
// is in mesh units, so it is scaled by the mesh transform's largest axis.
func BrushStamp(center math.Vec3, brush config.BrushConfig, mode editable.BrushMode, xf *xform.TRS) editable.Stamp {
	return editable.Stamp{
		Center:   center,
		Radius:   brush.Radius * xf.MaxScale(),
		Strength: brush.Strength,
		Mode:     mode,
	}
}
