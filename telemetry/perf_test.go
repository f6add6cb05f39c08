package telemetry

import (
	"math"
	"testing"
	"time"
)

// stepClock is a manual clock; advance moves it forward.
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *stepClock) now() time.Time          { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_BasicTiming(t *testing.T) {
	clk := newStepClock()
	pc := newPerfCollector(10, clk.now)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSplat)
		clk.advance(100 * time.Microsecond)
		pc.StartPhase(PhaseVelocity)
		clk.advance(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 300*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want 300µs", stats.AvgTickDuration)
	}
	if stats.PhaseAvg[PhaseSplat] != 100*time.Microsecond {
		t.Errorf("splat avg = %v, want 100µs", stats.PhaseAvg[PhaseSplat])
	}
	if stats.PhaseAvg[PhaseVelocity] != 200*time.Microsecond {
		t.Errorf("velocity avg = %v, want 200µs", stats.PhaseAvg[PhaseVelocity])
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	clk := newStepClock()
	pc := newPerfCollector(5, clk.now)

	// Five slow frames are pushed out of the window by five fast ones.
	for i := 0; i < 10; i++ {
		d := 10 * time.Millisecond
		if i >= 5 {
			d = time.Millisecond
		}
		pc.StartTick()
		pc.StartPhase(PhaseSplat)
		clk.advance(d)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 1ms", stats.AvgTickDuration)
	}
	if stats.TicksPerSecond != 1000 {
		t.Errorf("TicksPerSecond = %v, want 1000", stats.TicksPerSecond)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	clk := newStepClock()
	pc := newPerfCollector(10, clk.now)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		clk.advance(10 * time.Microsecond)
		pc.StartPhase("slow")
		clk.advance(90 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	tests := []struct {
		phase string
		want  float64
	}{
		{"fast", 10},
		{"slow", 90},
	}
	for _, tt := range tests {
		if got := stats.PhasePct[tt.phase]; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s = %v%%, want %v%%", tt.phase, got, tt.want)
		}
	}
}

func TestPerfCollector_PassThroughput(t *testing.T) {
	clk := newStepClock()
	pc := newPerfCollector(4, clk.now)

	for i := 0; i < 2; i++ {
		pc.StartTick()
		pc.StartPass(PhaseVelocity, 4096)
		clk.advance(time.Millisecond)
		pc.StartPhase(PhasePresent)
		clk.advance(time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if got := stats.PhaseRate[PhaseVelocity]; math.Abs(got-4096e3) > 1e-6 {
		t.Errorf("velocity rate = %v, want 4.096e6 per second", got)
	}
	if _, ok := stats.PhaseRate[PhasePresent]; ok {
		t.Error("a phase without work reported a rate")
	}
	if got := stats.ToCSV(0).VelocityMPS; math.Abs(got-4.096) > 1e-9 {
		t.Errorf("velocity_mps = %v, want 4.096", got)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil || stats.PhaseRate == nil {
		t.Error("expected non-nil maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	clk := newStepClock()
	pc := newPerfCollector(10, clk.now)

	pc.RecordFrame()
	clk.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if stats.FPS != 50 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 2 * time.Millisecond,
		PhasePct: map[string]float64{
			PhaseVelocity:  70,
			PhaseComposite: 20,
		},
	}

	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 2000 {
		t.Errorf("window/avg = %d/%d, want 600/2000", row.WindowEnd, row.AvgTickUS)
	}
	if row.VelocityPct != 70 || row.CompositePct != 20 || row.SplatPct != 0 {
		t.Errorf("phase columns not mapped: %+v", row)
	}
}
