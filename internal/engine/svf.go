package engine

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// svfStage is one Chamberlin state-variable integrator pair.
type svfStage struct {
	lp, bp float64
}

// tick advances the stage and returns the lowpass, bandpass and highpass
// outputs.
func (s *svfStage) tick(in, freq, damping float64) (lp, bp, hp float64) {
	hp = in - s.lp - damping*s.bp
	s.bp += freq * hp
	s.lp += freq * s.bp
	return s.lp, s.bp, hp
}

type svfChannel struct {
	stages  [svfStages]svfStage
	freq    float64
	damping float64
	morph   float64
	drive   float64
	counter int
}

// SVFState is a snapshot of one channel's integrators.
type SVFState struct {
	LP [svfStages]float64
	BP [svfStages]float64
}

// StateVariable is a two-stage morphing state-variable filter. Each stage
// feeds its morphed output into the next, so the lowpass and highpass ends
// fall at 24 dB/octave.
//
// Setters take effect at the next UpdateInterval boundary of each channel.
type StateVariable struct {
	sampleRate float64

	cutoff    float64
	resonance float64
	drive     float64
	morph     float64

	channels []svfChannel
}

// NewStateVariable creates a state-variable filter with the given number
// of independent channels.
func NewStateVariable(sampleRate float64, channels int) *StateVariable {
	if sampleRate <= 0 || !mathutil.IsFinite(sampleRate) {
		sampleRate = defaultSampleRate
	}
	channels = max(channels, 1)

	return &StateVariable{
		sampleRate: sampleRate,
		cutoff:     defaultCutoff,
		drive:      defaultDrive,
		channels:   make([]svfChannel, channels),
	}
}

// Channels returns the number of channels.
func (f *StateVariable) Channels() int {
	return len(f.channels)
}

// SetCutoff sets the cutoff in Hz, clamped to [20, 20000].
func (f *StateVariable) SetCutoff(hz float64) {
	f.cutoff = mathutil.Clamp(hz, MinCutoff, MaxCutoff)
}

// SetResonance sets the resonance in [0, 1].
func (f *StateVariable) SetResonance(r float64) {
	f.resonance = mathutil.Clamp01(r)
}

// SetDrive sets the input drive in [0, 10]. Drive 0 bypasses the shaper.
func (f *StateVariable) SetDrive(d float64) {
	f.drive = mathutil.Clamp(d, 0, MaxDrive)
}

// SetMorph sets the response position: 0 lowpass, 0.5 bandpass, 1 highpass.
func (f *StateVariable) SetMorph(m float64) {
	f.morph = mathutil.Clamp01(m)
}

// Cutoff returns the requested cutoff.
func (f *StateVariable) Cutoff() float64 { return f.cutoff }

// Resonance returns the requested resonance.
func (f *StateVariable) Resonance() float64 { return f.resonance }

// Drive returns the requested drive.
func (f *StateVariable) Drive() float64 { return f.drive }

// Morph returns the requested morph position.
func (f *StateVariable) Morph() float64 { return f.morph }

// SVFCoefficients returns the integrator gain and damping for a cutoff and
// resonance. The gain is limited below the stability bound of the
// Chamberlin structure, f^2 + 2*f*damping < 4.
func SVFCoefficients(cutoff, resonance, sampleRate float64) (freq, damping float64) {
	cutoff = mathutil.ClampCutoff(cutoff, sampleRate)
	damping = 1 / mathutil.ResonanceToQ(resonance)
	freq = 2 * math.Sin(math.Pi*cutoff/sampleRate)

	bound := math.Sqrt(damping*damping+4) - damping
	return math.Min(freq, bound*svfStabilityMargin), damping
}

func (f *StateVariable) refresh(ch *svfChannel) {
	ch.freq, ch.damping = SVFCoefficients(f.cutoff, f.resonance, f.sampleRate)
	ch.morph = f.morph
	ch.drive = f.drive
}

// ProcessChannelSample filters one sample on channel ch.
func (f *StateVariable) ProcessChannelSample(ch int, x float64) float64 {
	c := &f.channels[ch]
	if c.counter == 0 {
		f.refresh(c)
	}
	c.counter++
	if c.counter >= UpdateInterval {
		c.counter = 0
	}

	in := applyDrive(x, c.drive)
	for i := range c.stages {
		lp, bp, hp := c.stages[i].tick(in, c.freq, c.damping)
		in = morphTriple(lp, bp, hp, c.morph)
	}

	if !mathutil.IsFinite(in) {
		c.stages = [svfStages]svfStage{}
		return 0
	}
	return in
}

// Process filters one sample on channel 0.
func (f *StateVariable) Process(x float64) float64 {
	return f.ProcessChannelSample(0, x)
}

// ProcessChannel filters buf in place on channel ch.
func (f *StateVariable) ProcessChannel(ch int, buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessChannelSample(ch, x)
	}
}

// ProcessBlock filters buf in place on channel 0.
func (f *StateVariable) ProcessBlock(buf []float64) {
	f.ProcessChannel(0, buf)
}

// Reset zeroes every channel and forces a refresh on the next sample.
func (f *StateVariable) Reset() {
	for i := range f.channels {
		f.channels[i] = svfChannel{}
	}
}

// State returns a snapshot of channel ch.
func (f *StateVariable) State(ch int) SVFState {
	var s SVFState
	for i, st := range f.channels[ch].stages {
		s.LP[i], s.BP[i] = st.lp, st.bp
	}
	return s
}

// SetState restores channel ch.
func (f *StateVariable) SetState(ch int, s SVFState) error {
	for i := range s.LP {
		if !mathutil.IsFinite(s.LP[i]) || !mathutil.IsFinite(s.BP[i]) {
			return ErrNonFiniteState
		}
	}
	for i := range f.channels[ch].stages {
		f.channels[ch].stages[i] = svfStage{lp: s.LP[i], bp: s.BP[i]}
	}
	return nil
}

// ChannelStage returns a block processor bound to channel ch.
func (f *StateVariable) ChannelStage(ch int) *SVFChannelStage {
	return &SVFChannelStage{f: f, ch: ch}
}

// SVFChannelStage processes blocks on a single channel of a StateVariable.
type SVFChannelStage struct {
	f  *StateVariable
	ch int
}

// ProcessBlock filters buf in place.
func (s *SVFChannelStage) ProcessBlock(buf []float64) {
	s.f.ProcessChannel(s.ch, buf)
}

// Reset zeroes the bound channel.
func (s *SVFChannelStage) Reset() {
	s.f.channels[s.ch] = svfChannel{}
}

// morphTriple blends lowpass to bandpass over [0, 0.5] and bandpass to
// highpass over [0.5, 1].
func morphTriple(lp, bp, hp, m float64) float64 {
	if m <= 0.5 {
		return mathutil.Lerp(lp, bp, m*2)
	}
	return mathutil.Lerp(bp, hp, (m-0.5)*2)
}

// applyDrive shapes x with tanh normalized so that unity input stays at
// unity.
func applyDrive(x, drive float64) float64 {
	if drive < minDrive {
		return x
	}
	return math.Tanh(drive*x) / math.Tanh(drive)
}
