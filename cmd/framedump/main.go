// Frame dump tool - runs the simulation headless and writes the visible frame
// (and optionally the influence field) to PNG files for inspection.
//
// Usage: go run ./cmd/framedump -frames 120 -out frame.png -scale 2
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/pthm-cable/influence/config"
	"github.com/pthm-cable/influence/game"
	"github.com/pthm-cable/influence/gpu"
	"github.com/pthm-cable/influence/renderer"
)

// stringList collects repeated -set flags.
type stringList []string

func (s *stringList) String() string     { return fmt.Sprint(*s) }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	frames := flag.Int64("frames", 60, "Frames to run before dumping")
	outPath := flag.String("out", "frame.png", "Output PNG path for the visible frame")
	influencePath := flag.String("influence", "", "Optional PNG path for the influence field")
	scale := flag.Int("scale", 1, "Integer upscale factor")
	debug := flag.Bool("debug", false, "Dump the influence debug view instead of the composite")
	var overrides stringList
	flag.Var(&overrides, "set", "Override a config value, e.g. -set sim.n=64 (repeatable)")
	flag.Parse()

	if err := run(*configPath, overrides, *frames, *outPath, *influencePath, *scale, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "framedump: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, overrides []string, frames int64, outPath, influencePath string, scale int, debug bool) error {
	if scale < 1 {
		return fmt.Errorf("scale must be >= 1, got %d", scale)
	}

	overrides = append(overrides, "control.autoplay=true", fmt.Sprintf("control.debug=%t", debug))
	cfg, err := config.Load(configPath, overrides...)
	if err != nil {
		return err
	}

	g, err := game.NewGameWithOptions(game.Options{Config: cfg, Headless: true})
	if err != nil {
		return err
	}
	defer g.Unload()

	if err := g.RunHeadless(context.Background(), frames); err != nil {
		return err
	}

	if err := writePNG(outPath, g.Surface(), scale); err != nil {
		return err
	}
	fmt.Printf("Frame %d written to: %s\n", g.Frame(), outPath)

	if influencePath != "" {
		if err := writePNG(influencePath, g.Store().Influence, scale); err != nil {
			return err
		}
		fmt.Printf("Influence field written to: %s\n", influencePath)
	}
	return nil
}

// writePNG encodes t, upscaled by an integer factor with nearest-neighbour
// sampling so individual texels stay visible.
func writePNG(path string, t *gpu.Texture, scale int) error {
	var img image.Image = renderer.SurfaceImage(t)
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Debug("png written", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
