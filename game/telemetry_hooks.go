package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/telemetry"
)

// flushTelemetry reduces the swarm state every log_every frames, writes the
// CSV rows and handles bookmarks. The read back happens after the frame's
// passes, never inside them.
func (g *Game) flushTelemetry() {
	every := int64(g.cfg.Telemetry.LogEvery)
	if every <= 0 || g.frame%every != 0 {
		return
	}

	cur := g.store.Current(g.current)
	stats := telemetry.ComputeFieldStats(g.frame,
		cur.Position.ReadPixels(),
		cur.Velocity.ReadPixels(),
		g.store.Influence.ReadPixels(),
	)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteField(stats); err != nil {
		slog.Error("failed to write field stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, g.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.saveSnapshot(&bm)
	}
}

// saveSnapshot writes the current state to the snapshot directory, or to the
// output directory when no snapshot directory is set.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	if g.snapshotDir == "" && g.outputManager == nil {
		return
	}

	snapshot, err := g.Snapshot()
	if err != nil {
		slog.Error("failed to build snapshot", "error", err)
		return
	}
	snapshot.Bookmark = bookmark

	var path string
	if g.snapshotDir != "" {
		path, err = telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	} else {
		path, err = g.outputManager.WriteSnapshot(snapshot)
	}
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "frame", g.frame)
}

// Snapshot captures the current positions, velocities and colours.
func (g *Game) Snapshot() (*telemetry.Snapshot, error) {
	cur := g.store.Current(g.current)
	return telemetry.NewSnapshot(g.frame, g.store.N,
		cur.Position.ReadPixels(),
		cur.Velocity.ReadPixels(),
		g.store.Colors.ReadPixels(),
	)
}

// Restore replaces the particle state with an in-memory snapshot,
// reallocating when the grid side differs. Trails start blank.
func (g *Game) Restore(s *telemetry.Snapshot) error {
	if s.N != g.store.N {
		if err := g.Reallocate(s.N); err != nil {
			return err
		}
	}

	positions, velocities, colors := s.Images()
	g.current = 0
	cur, next := g.store.Current(0), g.store.Next(0)
	if err := writeTexels(g.dev, cur.Position, positions); err != nil {
		return err
	}
	if err := writeTexels(g.dev, cur.Velocity, velocities); err != nil {
		return err
	}
	if err := writeTexels(g.dev, g.store.Colors, colors); err != nil {
		return err
	}

	g.dev.Clear(next.Position, gpu.Transparent)
	g.dev.Clear(next.Velocity, gpu.Transparent)
	g.dev.Clear(g.store.Previous, gpu.Transparent)
	g.frame = s.Frame
	return g.present()
}

// writeTexels uploads raw RGBA data with a fullscreen pass.
func writeTexels(dev gpu.Device, t *gpu.Texture, data []float32) error {
	w := t.Width()
	if len(data) != w*t.Height()*4 {
		return fmt.Errorf("restore %s: got %d values for %dx%d", t.Name(), len(data), w, t.Height())
	}
	return dev.Fullscreen(t, nil, func(x, y int) gpu.Vec4 {
		i := (y*w + x) * 4
		return gpu.Vec4{R: data[i], G: data[i+1], B: data[i+2], A: data[i+3]}
	})
}
