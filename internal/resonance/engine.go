package resonance

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// State is the per-sample operating state of the engine.
type State int

const (
	// Normal applies weighted feedback to the input.
	Normal State = iota
	// SelfOscillating runs the internal oscillator at the cutoff frequency.
	SelfOscillating
)

func (s State) String() string {
	if s == SelfOscillating {
		return "self-oscillating"
	}
	return "normal"
}

// Parameters are the control-rate resonance inputs.
type Parameters struct {
	// Amount is the base resonance in [0, 1.2].
	Amount float64

	// Modulation in [-1, 1] is added at half weight.
	Modulation float64

	// KeyTracking in [0, 1] is carried for status reporting.
	KeyTracking float64

	// Velocity in [0, 1] scales the resonance.
	Velocity float64

	// FrequencyCompensation adds log2(cutoff/440)*0.1 per unit.
	FrequencyCompensation float64
}

// DefaultParameters returns zero resonance at full velocity.
func DefaultParameters() Parameters {
	return Parameters{Velocity: 1}
}

// Config holds the static engine settings.
type Config struct {
	SampleRate float64

	// SelfOscillation enables the SelfOscillating state.
	SelfOscillation bool

	// Threshold is the effective resonance at which self-oscillation starts.
	Threshold float64

	// FeedbackGain scales the feedback register contribution.
	FeedbackGain float64

	// LimiterThreshold is the level above which output is compressed.
	LimiterThreshold float64

	// Damping scales the self-oscillating output.
	Damping float64

	Curve            Curve
	SaturationAmount float64
}

// DefaultConfig returns a config at 44.1 kHz with self-oscillation enabled.
func DefaultConfig() Config {
	return Config{
		SampleRate:       defaultSampleRate,
		SelfOscillation:  true,
		Threshold:        DefaultThreshold,
		FeedbackGain:     DefaultFeedbackGain,
		LimiterThreshold: DefaultLimiter,
		Damping:          DefaultDamping,
		Curve:            Tanh,
	}
}

// Info is a diagnostic snapshot of the engine.
type Info struct {
	EffectiveResonance float64
	State              State
	ResetCount         int
	RunawayCount       int
}

// Engine applies feedback or self-oscillation to a signal. Not safe for
// concurrent use.
type Engine struct {
	cfg    Config
	params Parameters
	cutoff float64

	effective float64
	state     State

	taps     [4]float64
	phase    float64
	phaseInc float64

	runaway int
	resets  int
}

// NewEngine creates a resonance engine.
func NewEngine(cfg Config) *Engine {
	if cfg.SampleRate <= 0 || !mathutil.IsFinite(cfg.SampleRate) {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.LimiterThreshold <= 0 {
		cfg.LimiterThreshold = DefaultLimiter
	}
	e := &Engine{cfg: cfg, params: DefaultParameters()}
	e.SetCutoff(defaultCutoff)
	return e
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetParameters replaces the resonance inputs and recomputes the state.
func (e *Engine) SetParameters(p Parameters) {
	p.Amount = mathutil.Clamp(p.Amount, 0, maxResonance)
	p.Modulation = mathutil.Clamp(p.Modulation, -1, 1)
	p.KeyTracking = mathutil.Clamp01(p.KeyTracking)
	p.Velocity = mathutil.Clamp01(p.Velocity)
	if !mathutil.IsFinite(p.FrequencyCompensation) {
		p.FrequencyCompensation = 0
	}
	e.params = p
	e.update()
}

// Parameters returns the active resonance inputs.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// SetCutoff sets the oscillator and compensation frequency.
func (e *Engine) SetCutoff(freq float64) {
	e.cutoff = mathutil.ClampCutoff(freq, e.cfg.SampleRate)
	e.phaseInc = 2 * math.Pi * e.cutoff / e.cfg.SampleRate
	e.update()
}

// SetCurve selects the output saturation curve and amount.
func (e *Engine) SetCurve(curve Curve, amount float64) {
	e.cfg.Curve = curve
	e.cfg.SaturationAmount = mathutil.Clamp01(amount)
}

// EffectiveResonance maps the parameters and cutoff to the resonance value
// that drives the state machine.
func EffectiveResonance(p Parameters, cutoff float64) float64 {
	r := mathutil.Clamp(p.Amount+p.Modulation*modulationScale, 0, maxResonance) * p.Velocity
	if cutoff > 0 && p.FrequencyCompensation != 0 {
		r += math.Log2(cutoff/referenceHz) * p.FrequencyCompensation * compensationScale
	}
	return mathutil.Clamp(r, 0, maxResonance)
}

func (e *Engine) update() {
	e.effective = EffectiveResonance(e.params, e.cutoff)
	if e.cfg.SelfOscillation && e.effective >= e.cfg.Threshold {
		e.state = SelfOscillating
	} else {
		e.state = Normal
	}
}

// Process runs one sample through the engine.
//
// The watchdog measures the feedback term or oscillator output, not the
// dry input.
func (e *Engine) Process(x float64) float64 {
	var y, internal float64

	if e.state == SelfOscillating {
		amp := math.Max((e.effective-e.cfg.Threshold)*oscillationAmplitudeScale, minOscillationAmplitude)
		internal = amp * math.Sin(e.phase)
		e.phase += e.phaseInc
		if e.phase >= 2*math.Pi {
			e.phase -= 2 * math.Pi
		}
		y = e.cfg.Damping * (internal + x*(1-amp*inputDuckScale))
	} else {
		var fb float64
		for i, w := range feedbackWeights {
			fb += w * e.taps[i]
		}
		internal = fb * e.effective * e.cfg.FeedbackGain
		y = x + internal
	}

	y = Saturate(e.cfg.Curve, y, e.cfg.SaturationAmount)

	if !mathutil.IsFinite(y) {
		e.clearState()
		e.resets++
		return 0
	}
	if math.Abs(internal) > watchdogMagnitude {
		e.runaway++
		if e.runaway > watchdogLimit {
			e.clearState()
			e.resets++
			return 0
		}
	} else {
		e.runaway = 0
	}

	out := Limit(y, e.cfg.LimiterThreshold)
	copy(e.taps[1:], e.taps[:len(e.taps)-1])
	e.taps[0] = out
	return out
}

// ProcessBlock processes buf in place.
func (e *Engine) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = e.Process(x)
	}
}

func (e *Engine) clearState() {
	e.taps = [4]float64{}
	e.phase = 0
	e.runaway = 0
}

// Reset zeroes feedback and oscillator state. The reset counter is kept.
func (e *Engine) Reset() {
	e.clearState()
}

// Info returns a diagnostic snapshot.
func (e *Engine) Info() Info {
	return Info{
		EffectiveResonance: e.effective,
		State:              e.state,
		ResetCount:         e.resets,
		RunawayCount:       e.runaway,
	}
}
