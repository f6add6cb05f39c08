package game

import (
	"context"
	"log/slog"
)

// RunHeadless runs frames without a window until frames have run (0 means
// until ctx ends). Cancellation is checked between frames. With autoplay off
// every iteration single-steps, so a paused configuration still advances.
func (g *Game) RunHeadless(ctx context.Context, frames int64) error {
	start := g.frame
	for frames <= 0 || g.frame-start < frames {
		select {
		case <-ctx.Done():
			slog.Info("headless run stopped", "frame", g.frame, "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		in := Input{StepPressed: !g.controls.Autoplay}
		if _, err := g.Step(in); err != nil {
			return err
		}
	}
	slog.Info("max frames reached", "frame", g.frame)
	return nil
}
