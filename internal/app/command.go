package service

import (
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/engine"
)

// Command is one interaction request against the renderer, as posted to the
// control endpoint. Action selects the operation; the remaining fields are
// its parameters.
type Command struct {
	Action string `json:"action"`

	Mode    string  `json:"mode,omitempty"`
	Agent   string  `json:"agent,omitempty"`
	Label   string  `json:"label,omitempty"`
	Hidden  bool    `json:"hidden,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
	Minutes float64 `json:"minutes,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Key     string  `json:"key,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DeltaY  float64 `json:"deltaY,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// apply dispatches the command against the engine. It reports whether the
// action was recognized. Callers hold the service mutex.
func (c Command) apply(e *engine.Engine) bool {
	switch c.Action {
	case "set-mode":
		mode := layout.Mode(c.Mode)
		if mode != layout.ModeDayRings && mode != layout.ModeAgentRings {
			return false
		}
		e.SetMode(mode)
	case "set-agent":
		e.SetSelectedAgent(c.Agent)
	case "set-contrast":
		e.SetHighContrast(c.Enabled)
	case "set-label-hidden":
		if c.Label == "" {
			return false
		}
		e.SetLabelHidden(c.Label, c.Hidden)
	case "scrub":
		e.SetScrub(c.Minutes)
	case "play":
		e.StartPlayback()
	case "pause":
		e.StopPlayback()
	case "toggle-play":
		e.TogglePlayback()
	case "speed":
		e.SetSpeed(c.Speed)
	case "wheel":
		e.Wheel(c.DeltaY, c.X, c.Y)
	case "reset-zoom":
		e.ResetZoom()
	case "pointer-move":
		e.PointerMove(c.X, c.Y)
	case "pointer-leave":
		e.PointerLeave()
	case "click":
		e.Click()
	case "key":
		if c.Key == "" {
			return false
		}
		e.KeyDown(c.Key)
	case "clear-selection":
		e.ClearSelection()
	case "toggle-history":
		e.ToggleBalanceHistory()
	case "resize":
		if c.Width <= 0 || c.Height <= 0 {
			return false
		}
		e.Resize(c.Width, c.Height)
	default:
		return false
	}
	return true
}
