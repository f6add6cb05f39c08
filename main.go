package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/influence/config"
	"github.com/pthm-cable/influence/game"
)

// stringList collects repeated -set flags.
type stringList []string

func (s *stringList) String() string     { return fmt.Sprint(*s) }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	workers := flag.Int("workers", 0, "Software device workers (0 = GOMAXPROCS)")
	var overrides stringList
	flag.Var(&overrides, "set", "Override a config value, e.g. -set sim.n=64 (repeatable)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath, overrides...); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		Workers:     *workers,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		Headless:    *headless,
	}

	if *headless {
		os.Exit(runHeadless(opts, *maxFrames))
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Influence")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		rl.CloseWindow()
		os.Exit(1)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("frame failed", "error", err)
			break
		}
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= *maxFrames {
			slog.Info("max frames reached", "frame", g.Frame())
			break
		}
	}
}

// runHeadless runs without raylib until max frames or an interrupt and
// returns the process exit code.
func runHeadless(opts game.Options, maxFrames int64) int {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		return 1
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation", "max_frames", maxFrames)
	if err := g.RunHeadless(ctx, maxFrames); err != nil && ctx.Err() == nil {
		slog.Error("simulation failed", "error", err)
		return 1
	}
	return 0
}
