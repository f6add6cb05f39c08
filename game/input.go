package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/systems"
)

// captureInput reads keyboard and mouse state from the window.
func captureInput() Input {
	return Input{
		StepPressed:     rl.IsKeyPressed(rl.KeySpace),
		AutoplayPressed: rl.IsKeyPressed(rl.KeyP),
		DebugPressed:    rl.IsKeyPressed(rl.KeyD),
		Pointer:         capturePointer(),
	}
}

// capturePointer maps the mouse to normalized coordinates with y up.
func capturePointer() systems.Pointer {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if w <= 0 || h <= 0 {
		return systems.Pointer{}
	}
	m := rl.GetMousePosition()
	return systems.Pointer{
		Pos:     gpu.Vec2{X: m.X / w, Y: 1 - m.Y/h},
		Pressed: rl.IsMouseButtonDown(rl.MouseButtonLeft),
	}
}
