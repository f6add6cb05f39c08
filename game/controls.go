package game

import "github.com/pthm-cable/influence/systems"

// Input is one frame's worth of captured user input.
type Input struct {
	StepPressed     bool // render exactly one more frame
	AutoplayPressed bool // toggle continuous playback
	DebugPressed    bool // toggle the influence debug view
	Pointer         systems.Pointer
}

// Controls is the run-control state checked once per frame before any pass.
type Controls struct {
	Autoplay   bool
	RenderNext bool
	Debug      bool
}

// NewControls returns controls that render only when autoplaying. A paused
// start waits for a step.
func NewControls(autoplay, debug bool) Controls {
	return Controls{Autoplay: autoplay, RenderNext: autoplay, Debug: debug}
}

// Apply folds an input into the control state.
func (c *Controls) Apply(in Input) {
	if in.StepPressed {
		c.RenderNext = true
	}
	if in.AutoplayPressed {
		c.Autoplay = !c.Autoplay
		c.RenderNext = c.Autoplay
	}
	if in.DebugPressed {
		c.Debug = !c.Debug
	}
}

// FrameDone re-arms the next frame only when autoplaying.
func (c *Controls) FrameDone() {
	c.RenderNext = c.Autoplay
}
