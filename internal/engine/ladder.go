package engine

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
	"github.com/tphakala/go-audio-filter/internal/resonance"
)

// LadderConfig holds the static ladder settings.
type LadderConfig struct {
	SampleRate float64

	// Oversampling factor, one of 1, 2, 4 or 8.
	Oversampling int

	// Curve is the saturation applied to the driven input.
	Curve resonance.Curve

	// ThermalNoise injects low-level noise after saturation.
	ThermalNoise bool

	// NoiseLevel is the peak noise amplitude.
	NoiseLevel float64

	// Seed makes the noise sequence reproducible.
	Seed uint64
}

// DefaultLadderConfig returns a tanh ladder at 44.1 kHz without
// oversampling or noise.
func DefaultLadderConfig() LadderConfig {
	return LadderConfig{
		SampleRate:   defaultSampleRate,
		Oversampling: 1,
		Curve:        resonance.Tanh,
		NoiseLevel:   defaultNoiseLevel,
	}
}

// Validate checks the ladder configuration.
func (c LadderConfig) Validate() error {
	if c.SampleRate <= 0 || !mathutil.IsFinite(c.SampleRate) {
		return fmt.Errorf("sample rate must be positive: %f", c.SampleRate)
	}
	switch c.Oversampling {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("oversampling factor must be one of {1,2,4,8}: %d", c.Oversampling)
	}
	if c.NoiseLevel < 0 || !mathutil.IsFinite(c.NoiseLevel) {
		return fmt.Errorf("noise level must be non-negative: %f", c.NoiseLevel)
	}
	return nil
}

// LadderState is a snapshot of the ladder integrators.
type LadderState struct {
	Stage     [ladderPoles]float64
	PrevInput float64
}

// Ladder is a four-pole transistor-ladder style lowpass with global
// feedback, input saturation and optional oversampling.
type Ladder struct {
	cfg LadderConfig

	cutoff    float64
	resonance float64
	drive     float64

	// Refreshed every UpdateInterval samples.
	coeff    float64
	feedback float64
	curDrive float64
	counter  int

	state LadderState

	antiAliasUp   *BiquadSection
	antiAliasDown *BiquadSection

	pcg *rand.PCG
	rng *rand.Rand
}

// NewLadder creates a ladder filter.
func NewLadder(cfg LadderConfig) (*Ladder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Ladder{
		cfg:    cfg,
		cutoff: defaultCutoff,
		drive:  defaultDrive,
		pcg:    rand.NewPCG(cfg.Seed, cfg.Seed^noiseSeedMix),
	}
	l.rng = rand.New(l.pcg)
	l.buildAntiAliasFilters()
	return l, nil
}

// Config returns the active configuration.
func (l *Ladder) Config() LadderConfig {
	return l.cfg
}

// SetCutoff sets the cutoff in Hz, clamped to [20, 20000].
func (l *Ladder) SetCutoff(hz float64) {
	l.cutoff = mathutil.Clamp(hz, MinCutoff, MaxCutoff)
}

// SetResonance sets the resonance in [0, 1]. Resonance 1 is the edge of
// self-oscillation.
func (l *Ladder) SetResonance(r float64) {
	l.resonance = mathutil.Clamp01(r)
}

// SetDrive sets the input gain ahead of the saturator in [0, 10]. Drive 0
// bypasses the saturator, as in the state-variable topology.
func (l *Ladder) SetDrive(d float64) {
	l.drive = mathutil.Clamp(d, 0, MaxDrive)
}

// Cutoff returns the requested cutoff.
func (l *Ladder) Cutoff() float64 { return l.cutoff }

// Resonance returns the requested resonance.
func (l *Ladder) Resonance() float64 { return l.resonance }

// Drive returns the requested drive.
func (l *Ladder) Drive() float64 { return l.drive }

func (l *Ladder) buildAntiAliasFilters() {
	if l.cfg.Oversampling <= 1 {
		l.antiAliasUp = nil
		l.antiAliasDown = nil
		return
	}

	osRate := l.cfg.SampleRate * float64(l.cfg.Oversampling)
	c := filter.DesignLowpassQ(l.cfg.SampleRate*antiAliasFraction, antiAliasQ, osRate)
	l.antiAliasUp = NewBiquadSection(c)
	l.antiAliasDown = NewBiquadSection(c)
}

// LadderCoefficient returns the one-pole gain for cutoff at the given
// processing rate.
func LadderCoefficient(cutoff, rate float64) float64 {
	cutoff = mathutil.ClampCutoff(cutoff, rate)
	return 1 - math.Exp(-2*math.Pi*cutoff/rate)
}

func (l *Ladder) refresh() {
	rate := l.cfg.SampleRate * float64(l.cfg.Oversampling)
	l.coeff = LadderCoefficient(l.cutoff, rate)
	l.feedback = l.resonance * ladderFeedbackScale
	l.curDrive = l.drive
}

// Process filters one sample.
func (l *Ladder) Process(x float64) float64 {
	if !mathutil.IsFinite(x) {
		x = 0
	}
	if l.counter == 0 {
		l.refresh()
	}
	l.counter++
	if l.counter >= UpdateInterval {
		l.counter = 0
	}

	var out float64
	if l.cfg.Oversampling <= 1 {
		out = l.processCore(x)
	} else {
		prev := l.state.PrevInput
		delta := (x - prev) / float64(l.cfg.Oversampling)
		for i := range l.cfg.Oversampling {
			sub := l.antiAliasUp.ProcessSample(prev + delta*float64(i+1))
			out = l.antiAliasDown.ProcessSample(l.processCore(sub))
		}
	}
	l.state.PrevInput = x

	if !mathutil.IsFinite(out) {
		l.Reset()
		return 0
	}
	return out
}

func (l *Ladder) processCore(x float64) float64 {
	s := &l.state.Stage
	u := x - l.feedback*s[ladderPoles-1]
	if l.curDrive >= minDrive {
		u = resonance.Shape(l.cfg.Curve, l.curDrive*x-l.feedback*s[ladderPoles-1])
	}
	if l.cfg.ThermalNoise {
		u += l.cfg.NoiseLevel * (2*l.rng.Float64() - 1)
	}

	in := u
	for i := range s {
		s[i] += l.coeff * (in - s[i])
		s[i] = mathutil.FlushDenormal(s[i])
		in = s[i]
	}
	return in
}

// ProcessBlock filters buf in place.
func (l *Ladder) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = l.Process(x)
	}
}

// Reset zeroes all state and forces a refresh on the next sample. The
// noise generator is reseeded so a reset ladder replays identically.
func (l *Ladder) Reset() {
	l.state = LadderState{}
	l.counter = 0
	if l.antiAliasUp != nil {
		l.antiAliasUp.Reset()
		l.antiAliasDown.Reset()
	}
	l.pcg.Seed(l.cfg.Seed, l.cfg.Seed^noiseSeedMix)
}

// State returns a copy of the integrator state.
func (l *Ladder) State() LadderState {
	return l.state
}

// SetState restores saved integrator state.
func (l *Ladder) SetState(s LadderState) error {
	for _, v := range s.Stage {
		if !mathutil.IsFinite(v) {
			return ErrNonFiniteState
		}
	}
	if !mathutil.IsFinite(s.PrevInput) {
		return ErrNonFiniteState
	}
	l.state = s
	return nil
}

// ResponseEstimate approximates the small-signal magnitude response at freq
// from the continuous-time ladder model H = G/(1+kG), G = 1/(1+jf/fc)^4.
// It ignores saturation and the bilinear mapping, so it drifts from the
// measured response near Nyquist.
func (l *Ladder) ResponseEstimate(freq float64) float64 {
	g := 1 / cmplx.Pow(complex(1, freq/l.cutoff), ladderPoles)
	k := complex(l.resonance*ladderFeedbackScale, 0)
	return cmplx.Abs(g / (1 + k*g))
}
