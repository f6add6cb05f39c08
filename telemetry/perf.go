package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame, in pipeline order.
const (
	PhaseClear     = "clear"
	PhaseSplat     = "splat"
	PhaseVelocity  = "velocity"
	PhaseIntegrate = "integrate"
	PhaseComposite = "composite"
	PhasePresent   = "present"
)

// Phases lists every frame phase in pipeline order.
var Phases = []string{
	PhaseClear, PhaseSplat, PhaseVelocity,
	PhaseIntegrate, PhaseComposite, PhasePresent,
}

// passTiming is one phase's time and work within a frame.
type passTiming struct {
	dur    time.Duration
	texels int
}

// frameSample is the timing of one recorded frame.
type frameSample struct {
	total  time.Duration
	passes map[string]passTiming
}

// PerfCollector keeps per-pass timings and texel counts over a rolling
// window of frames.
type PerfCollector struct {
	now func() time.Time

	ring  []frameSample
	next  int
	count int

	open      map[string]passTiming
	tickStart time.Time
	passStart time.Time
	pass      string

	lastPresent time.Time
	presentGap  time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
// Non-positive sizes fall back to 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	return newPerfCollector(windowSize, time.Now)
}

func newPerfCollector(windowSize int, now func() time.Time) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:  now,
		ring: make([]frameSample, windowSize),
		open: make(map[string]passTiming),
	}
}

// StartTick opens a new frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.open = make(map[string]passTiming)
	p.pass = ""
}

// StartPhase closes the running phase and starts timing the named one.
func (p *PerfCollector) StartPhase(phase string) {
	p.StartPass(phase, 0)
}

// StartPass is StartPhase for a pass that touches the given number of
// texels or particles, which feeds the throughput figures.
func (p *PerfCollector) StartPass(phase string, texels int) {
	now := p.now()
	p.closePass(now)
	t := p.open[phase]
	t.texels += texels
	p.open[phase] = t
	p.passStart = now
	p.pass = phase
}

func (p *PerfCollector) closePass(now time.Time) {
	if p.pass == "" {
		return
	}
	t := p.open[p.pass]
	t.dur += now.Sub(p.passStart)
	p.open[p.pass] = t
}

// EndTick closes the frame and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePass(now)
	p.pass = ""

	p.ring[p.next] = frameSample{total: now.Sub(p.tickStart), passes: p.open}
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame records the wall-clock gap between presented frames.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastPresent.IsZero() {
		p.presentGap = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats aggregates the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average frame, in percent

	// PhaseRate is texels (or particles) processed per second of pass time.
	// Phases that report no work are absent.
	PhaseRate map[string]float64

	TicksPerSecond float64

	// Presentation, zero when headless
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes the window averages.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		PhaseRate:     make(map[string]float64),
		FrameDuration: p.presentGap,
	}
	if p.presentGap > 0 {
		s.FPS = float64(time.Second) / float64(p.presentGap)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	durs := make(map[string]time.Duration)
	texels := make(map[string]int)
	for i, f := range p.ring[:p.count] {
		total += f.total
		if i == 0 || f.total < s.MinTickDuration {
			s.MinTickDuration = f.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, f.total)
		for name, t := range f.passes {
			durs[name] += t.dur
			texels[name] += t.texels
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for name, d := range durs {
		s.PhaseAvg[name] = d / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = float64(d/n) / float64(s.AvgTickDuration) * 100
		}
		if texels[name] > 0 && d > 0 {
			s.PhaseRate[name] = float64(texels[name]) / d.Seconds()
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer. Rates are in millions per second.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
		if rate, ok := s.PhaseRate[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_mps", rate/1e6))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	ClearPct     float64 `csv:"clear_pct"`
	SplatPct     float64 `csv:"splat_pct"`
	VelocityPct  float64 `csv:"velocity_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	CompositePct float64 `csv:"composite_pct"`
	PresentPct   float64 `csv:"present_pct"`
	SplatMPS     float64 `csv:"splat_mps"`
	VelocityMPS  float64 `csv:"velocity_mps"`
	IntegrateMPS float64 `csv:"integrate_mps"`
	CompositeMPS float64 `csv:"composite_mps"`
}

// ToCSV flattens the stats for perf.csv.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		ClearPct:     s.PhasePct[PhaseClear],
		SplatPct:     s.PhasePct[PhaseSplat],
		VelocityPct:  s.PhasePct[PhaseVelocity],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		CompositePct: s.PhasePct[PhaseComposite],
		PresentPct:   s.PhasePct[PhasePresent],
		SplatMPS:     s.PhaseRate[PhaseSplat] / 1e6,
		VelocityMPS:  s.PhaseRate[PhaseVelocity] / 1e6,
		IntegrateMPS: s.PhaseRate[PhaseIntegrate] / 1e6,
		CompositeMPS: s.PhaseRate[PhaseComposite] / 1e6,
	}
}
