package audiofilter

import (
	"fmt"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/pipeline"
	"github.com/tphakala/go-audio-filter/internal/resonance"
)

// biquadStage is the block engine as seen by a channel, independent of
// its sample precision.
type biquadStage interface {
	pipeline.Stage
	pipeline.MemoryReporter
	SetTarget(c filter.Coefficients)
	SetCoefficients(c filter.Coefficients)
	Coefficients() filter.Coefficients
	Metrics() engine.Metrics
	ResetMetrics()
	State(ch int) engine.BiquadState
	SetState(ch int, s engine.BiquadState) error
}

// channel holds the processors of one audio channel. Exactly one of
// biquad, svf and ladder is set.
type channel struct {
	chain *pipeline.Chain

	resonator *resonance.Engine
	biquad    biquadStage
	svf       *engine.StateVariable
	ladder    *engine.Ladder
}

// controlFrame is the control state applied at one refresh boundary.
type controlFrame struct {
	cutoff    float64
	resonance float64
	drive     float64
	morph     float64
	coeffs    filter.Coefficients

	// immediate bypasses coefficient smoothing on the first frame.
	immediate bool
}

// apply pushes a control frame into every processor of the channel.
func (c *channel) apply(fr *controlFrame, res resonance.Parameters, curve SaturationCurve) {
	if c.resonator != nil {
		c.resonator.SetParameters(res)
		c.resonator.SetCutoff(fr.cutoff)
		c.resonator.SetCurve(curve, fr.drive/engine.MaxDrive)
	}

	switch {
	case c.biquad != nil:
		if fr.immediate {
			c.biquad.SetCoefficients(fr.coeffs)
		} else {
			c.biquad.SetTarget(fr.coeffs)
		}
	case c.svf != nil:
		c.svf.SetCutoff(fr.cutoff)
		c.svf.SetResonance(fr.resonance)
		c.svf.SetDrive(fr.drive)
		c.svf.SetMorph(fr.morph)
	case c.ladder != nil:
		c.ladder.SetCutoff(fr.cutoff)
		c.ladder.SetResonance(fr.resonance)
		c.ladder.SetDrive(fr.drive)
	}
}

// newChannels creates the processing chain of every channel:
// resonance (when enabled) followed by the topology.
func newChannels(cfg *Config) ([]channel, error) {
	channels := make([]channel, cfg.Channels)

	for i := range channels {
		c := &channels[i]

		if cfg.Resonance.Enabled {
			c.resonator = newResonator(cfg)
		}

		var topo pipeline.Stage
		switch cfg.Topology {
		case Biquad:
			b, err := newBiquadStage(cfg)
			if err != nil {
				return nil, err
			}
			c.biquad = b
			topo = b
		case StateVariable:
			c.svf = engine.NewStateVariable(cfg.SampleRate, monoChannels)
			topo = c.svf
		case Ladder:
			l, err := newLadder(cfg, i)
			if err != nil {
				return nil, err
			}
			c.ladder = l
			topo = l
		}

		c.chain = pipeline.NewChain()
		if c.resonator != nil {
			c.chain.Append(c.resonator)
		}
		c.chain.Append(topo)
	}

	return channels, nil
}

func newResonator(cfg *Config) *resonance.Engine {
	rc := resonance.DefaultConfig()
	rc.SampleRate = cfg.SampleRate
	rc.SelfOscillation = cfg.Resonance.SelfOscillation
	rc.Curve = cfg.Resonance.Curve
	if cfg.Resonance.Threshold > 0 {
		rc.Threshold = cfg.Resonance.Threshold
	}
	if cfg.Resonance.FeedbackGain > 0 {
		rc.FeedbackGain = cfg.Resonance.FeedbackGain
	}
	return resonance.NewEngine(rc)
}

func newBiquadStage(cfg *Config) (biquadStage, error) {
	perf := GetPerformanceConfig(cfg.Performance)

	if cfg.Float32 {
		e, err := engine.NewHighPerformance[float32](cfg.SampleRate, perf)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return engine.NewStageAdapter(e), nil
	}

	e, err := engine.NewHighPerformance[float64](cfg.SampleRate, perf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return engine.NewStageAdapter(e), nil
}

// newLadder offsets the noise seed per channel so channels decorrelate.
func newLadder(cfg *Config, ch int) (*engine.Ladder, error) {
	lc := engine.DefaultLadderConfig()
	lc.SampleRate = cfg.SampleRate
	lc.Oversampling = cfg.Ladder.Oversampling
	lc.Curve = cfg.Ladder.Curve
	lc.ThermalNoise = cfg.Ladder.ThermalNoise
	lc.Seed = cfg.Ladder.Seed + uint64(ch)

	l, err := engine.NewLadder(lc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return l, nil
}
