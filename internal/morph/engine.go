package morph

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Config holds the static morph engine settings.
type Config struct {
	Mode Mode

	// StabilityCorrection enables pole pulling after interpolation.
	StabilityCorrection bool

	// Smoothing enables the per-term one-pole smoother.
	Smoothing bool

	// TimeConstant of the smoother in seconds.
	TimeConstant float64

	// UpdateRate is how often Process is called, in Hz.
	UpdateRate float64
}

// DefaultConfig returns an engine config with correction and smoothing on,
// updated once per 64 samples at 44.1 kHz.
func DefaultConfig() Config {
	return Config{
		Mode:                LowpassBandpassHighpass,
		StabilityCorrection: true,
		Smoothing:           true,
		TimeConstant:        defaultTimeConstant,
		UpdateRate:          defaultUpdateRate,
	}
}

// Engine produces one interpolated, corrected and smoothed coefficient set
// per call. The smoother state persists across calls.
type Engine struct {
	cfg    Config
	factor float64

	smoothed [5]float64
	primed   bool
}

// NewEngine creates a morph engine.
func NewEngine(cfg Config) *Engine {
	e := &Engine{}
	e.SetConfig(cfg)
	return e
}

// SetConfig replaces the configuration and recomputes the smoothing
// factor. Smoother state is kept.
func (e *Engine) SetConfig(cfg Config) {
	if cfg.TimeConstant <= 0 || !mathutil.IsFinite(cfg.TimeConstant) {
		cfg.TimeConstant = defaultTimeConstant
	}
	if cfg.UpdateRate <= 0 || !mathutil.IsFinite(cfg.UpdateRate) {
		cfg.UpdateRate = defaultUpdateRate
	}
	e.cfg = cfg
	e.factor = SmoothingFactor(cfg.TimeConstant, cfg.UpdateRate)
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SmoothingFactor returns 1 - exp(-1/(timeConstant*updateRate)).
func SmoothingFactor(timeConstant, updateRate float64) float64 {
	return 1 - math.Exp(-1/(timeConstant*updateRate))
}

// Target computes the morphed coefficients without touching smoother state.
func (e *Engine) Target(cfg filter.Config, p Parameters) filter.Coefficients {
	x := Shape(p.Position, p.Shape)
	c := Blend(e.cfg.Mode.Points(cfg), x)

	if e.cfg.StabilityCorrection {
		c = Correct(c, stabilityFactorOrDefault(p.StabilityFactor))
	}
	return MixBypass(c, p.BypassAmount)
}

// Process computes the target and, when smoothing is enabled, moves the
// smoothed coefficients toward it. The first call after Reset snaps to the
// target.
func (e *Engine) Process(cfg filter.Config, p Parameters) filter.Coefficients {
	target := e.Target(cfg, p)
	if !e.cfg.Smoothing {
		e.smoothed = target.Terms()
		e.primed = true
		return target
	}

	terms := target.Terms()
	if !e.primed {
		e.smoothed = terms
		e.primed = true
		return target
	}

	for i := range e.smoothed {
		e.smoothed[i] += e.factor * (terms[i] - e.smoothed[i])
	}
	return filter.FromTerms(e.smoothed)
}

// Current returns the most recent output.
func (e *Engine) Current() filter.Coefficients {
	if !e.primed {
		return filter.Identity()
	}
	return filter.FromTerms(e.smoothed)
}

// Reset clears the smoother so the next Process call snaps to its target.
func (e *Engine) Reset() {
	e.smoothed = [5]float64{}
	e.primed = false
}

func stabilityFactorOrDefault(f float64) float64 {
	if f <= 0 || !mathutil.IsFinite(f) {
		return 1
	}
	return f
}
