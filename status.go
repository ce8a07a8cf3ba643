package audiofilter

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/morph"
	"github.com/tphakala/go-audio-filter/internal/resonance"
	"github.com/tphakala/go-audio-filter/internal/tracking"
)

// Diagnostic and state types re-exported from the processors.
type (
	// Coefficients is one normalized second-order section.
	Coefficients = filter.Coefficients

	// FilterResponse is the magnitude (linear) and phase (radians) of the
	// filter at one frequency.
	FilterResponse = filter.Response

	// ResonanceInfo describes the resonance stage.
	ResonanceInfo = resonance.Info

	// TrackingInfo describes the tracked note and glide.
	TrackingInfo = tracking.Info

	BiquadState = engine.BiquadState
	SVFState    = engine.SVFState
	LadderState = engine.LadderState
)

// Status is a diagnostic snapshot of the filter.
type Status struct {
	IsActive bool
	Topology Topology

	// Cutoff is the effective cutoff after tracking and glide.
	Cutoff float64

	// Coefficients in use by the biquad topology. For the state-variable
	// and ladder topologies this is the closest biquad design.
	Coefficients Coefficients

	// Parameters as applied on the audio thread, keyed by name.
	Parameters map[string]float64

	Performance Metrics

	// Resonance of channel 0. Zero when the stage is disabled.
	Resonance ResonanceInfo

	Tracking TrackingInfo
}

// Status returns a snapshot of the audio-side state. Call from the audio
// goroutine.
func (f *Filter) Status() Status {
	params := make(map[string]float64, numParams)
	for i, s := range paramSpecs {
		params[s.Name] = f.params[i]
	}

	st := Status{
		IsActive:     f.IsActive(),
		Topology:     f.cfg.Topology,
		Cutoff:       f.effectiveCutoff(),
		Coefficients: f.Coefficients(),
		Parameters:   params,
		Performance:  f.metrics,
		Tracking:     f.tracker.Info(),
	}
	if r := f.channels[0].resonator; r != nil {
		st.Resonance = r.Info()
	}
	return st
}

func (f *Filter) effectiveCutoff() float64 {
	if f.primed {
		return f.current.cutoff
	}
	return f.params[ParamCutoff]
}

// Coefficients returns the biquad coefficients that describe the filter.
// The state-variable topology maps to the lowpass-bandpass-highpass morph
// at the same position and the ladder to a lowpass.
func (f *Filter) Coefficients() Coefficients {
	c := f.channels[0]
	if c.biquad != nil && f.primed {
		return c.biquad.Coefficients()
	}

	cutoff := f.effectiveCutoff()
	switch f.cfg.Topology {
	case StateVariable:
		fc := f.filterConfig(cutoff)
		return morph.Blend(morph.LowpassBandpassHighpass.Points(fc), f.params[ParamMorph])
	case Ladder:
		return filter.Calculate(filter.Lowpass, f.filterConfig(cutoff))
	default:
		return f.design(cutoff, false)
	}
}

func (f *Filter) filterConfig(cutoff float64) filter.Config {
	return filter.Config{
		SampleRate: f.cfg.SampleRate,
		Cutoff:     cutoff,
		Resonance:  f.params[ParamResonance],
		GainDB:     f.params[ParamGain],
	}
}

// FrequencyResponse evaluates the filter at each frequency in Hz.
//
// The biquad topology is evaluated analytically. The state-variable
// topology is measured from the impulse response of an undriven copy and
// reported at the nearest FFT bin. The ladder reports the small-signal
// magnitude estimate with zero phase.
func (f *Filter) FrequencyResponse(freqs []float64) []FilterResponse {
	switch f.cfg.Topology {
	case StateVariable:
		return f.measureSVF(freqs)
	case Ladder:
		return f.estimateLadder(freqs)
	default:
		return filter.Sweep(f.Coefficients(), freqs, f.cfg.SampleRate)
	}
}

func (f *Filter) measureSVF(freqs []float64) []FilterResponse {
	svf := engine.NewStateVariable(f.cfg.SampleRate, monoChannels)
	svf.SetCutoff(f.effectiveCutoff())
	svf.SetResonance(f.params[ParamResonance])
	svf.SetMorph(f.params[ParamMorph])
	svf.SetDrive(0)

	impulse := make([]float64, measureImpulseLength)
	impulse[0] = 1
	svf.ProcessBlock(impulse)

	bins := filter.MeasureResponse(impulse, f.cfg.SampleRate)
	out := make([]FilterResponse, len(freqs))
	for i, freq := range freqs {
		k := int(math.Round(freq / f.cfg.SampleRate * measureImpulseLength))
		k = max(0, min(k, len(bins)-1))
		out[i] = bins[k]
		out[i].Frequency = freq
	}
	return out
}

func (f *Filter) estimateLadder(freqs []float64) []FilterResponse {
	cfg := engine.DefaultLadderConfig()
	cfg.SampleRate = f.cfg.SampleRate
	l, err := engine.NewLadder(cfg)
	if err != nil {
		return nil
	}
	l.SetCutoff(f.effectiveCutoff())
	l.SetResonance(f.params[ParamResonance])

	out := make([]FilterResponse, len(freqs))
	for i, freq := range freqs {
		out[i] = FilterResponse{Frequency: freq, Magnitude: l.ResponseEstimate(freq)}
	}
	return out
}

// State is a snapshot of the per-channel filter memory. Only the slice of
// the configured topology is populated.
type State struct {
	Topology Topology
	Biquad   []BiquadState
	SVF      []SVFState
	Ladder   []LadderState
}

// Snapshot captures the filter memory of every channel.
func (f *Filter) Snapshot() State {
	s := State{Topology: f.cfg.Topology}
	for i := range f.channels {
		c := &f.channels[i]
		switch {
		case c.biquad != nil:
			s.Biquad = append(s.Biquad, c.biquad.State(0))
		case c.svf != nil:
			s.SVF = append(s.SVF, c.svf.State(0))
		case c.ladder != nil:
			s.Ladder = append(s.Ladder, c.ladder.State())
		}
	}
	return s
}

// Restore loads a snapshot taken from a filter with the same topology and
// channel count. On error the filter memory is unchanged.
func (f *Filter) Restore(s State) error {
	if s.Topology != f.cfg.Topology {
		return fmt.Errorf("%w: snapshot topology %s, filter is %s", ErrInvalidState, s.Topology, f.cfg.Topology)
	}

	var n int
	switch s.Topology {
	case Biquad:
		n = len(s.Biquad)
	case StateVariable:
		n = len(s.SVF)
	case Ladder:
		n = len(s.Ladder)
	}
	if n != len(f.channels) {
		return fmt.Errorf("%w: snapshot has %d channels, filter has %d", ErrInvalidState, n, len(f.channels))
	}

	backup := f.Snapshot()
	if err := f.load(s); err != nil {
		_ = f.load(backup)
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return nil
}

func (f *Filter) load(s State) error {
	var errs []error
	for i := range f.channels {
		c := &f.channels[i]
		switch {
		case c.biquad != nil:
			errs = append(errs, c.biquad.SetState(0, s.Biquad[i]))
		case c.svf != nil:
			errs = append(errs, c.svf.SetState(0, s.SVF[i]))
		case c.ladder != nil:
			errs = append(errs, c.ladder.SetState(s.Ladder[i]))
		}
	}
	return errors.Join(errs...)
}
