package audiofilter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
	"github.com/tphakala/go-audio-filter/internal/morph"
	"github.com/tphakala/go-audio-filter/internal/resonance"
	"github.com/tphakala/go-audio-filter/internal/tracking"
)

// Topology selects the per-channel filter structure.
type Topology int

const (
	// Biquad runs designed second-order coefficients through the block
	// engine. It supports every FilterType and coefficient morphing.
	Biquad Topology = iota

	// StateVariable is a two-stage morphing state-variable filter
	// (lowpass to bandpass to highpass) with input drive.
	StateVariable

	// Ladder is a four-pole ladder lowpass with input saturation, global
	// feedback and optional oversampling.
	Ladder
)

var topologyNames = map[Topology]string{
	Biquad:        "biquad",
	StateVariable: "svf",
	Ladder:        "ladder",
}

func (t Topology) String() string {
	if name, ok := topologyNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// ParseTopology resolves a topology name.
func ParseTopology(s string) (Topology, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range topologyNames {
		if n == name {
			return t, nil
		}
	}
	return Biquad, fmt.Errorf("%w: unknown topology %q", ErrInvalidConfig, s)
}

// Aliases for the design enums so callers do not import internal packages.
type (
	// FilterType is a biquad response shape.
	FilterType = filter.Type

	// MorphMode is a sequence of responses traversed by the Morph parameter.
	MorphMode = morph.Mode

	// SaturationCurve is a waveshaping nonlinearity.
	SaturationCurve = resonance.Curve

	// TrackingCurve reshapes the keyboard tracking ratio.
	TrackingCurve = tracking.Curve

	// PerformancePreset names a block engine configuration.
	PerformancePreset = engine.Preset
)

// Biquad response shapes.
const (
	Lowpass   = filter.Lowpass
	Highpass  = filter.Highpass
	Bandpass  = filter.Bandpass
	Bandstop  = filter.Bandstop
	LowShelf  = filter.LowShelf
	HighShelf = filter.HighShelf
	Peak      = filter.Peak
	Allpass   = filter.Allpass
)

// Morph modes.
const (
	MorphLowpassBandpassHighpass = morph.LowpassBandpassHighpass
	MorphLowpassHighpass         = morph.LowpassHighpass
	MorphBandpassNotch           = morph.BandpassNotch
	MorphShelfPeakShelf          = morph.ShelfPeakShelf
	MorphAllpassBypass           = morph.AllpassBypass
)

// Performance presets.
const (
	PresetMinimal         = engine.Minimal
	PresetBalanced        = engine.Balanced
	PresetAggressive      = engine.Aggressive
	PresetUltraLowLatency = engine.UltraLowLatency
)

// ParseFilterType resolves a biquad response name such as "lowpass".
func ParseFilterType(s string) (FilterType, error) {
	t, err := filter.ParseType(s)
	if err != nil {
		return t, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return t, nil
}

// ParseMorphMode resolves a morph mode name such as "lp-bp-hp".
func ParseMorphMode(s string) (MorphMode, error) {
	m, err := morph.ParseMode(s)
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return m, nil
}

// ParseSaturationCurve resolves a saturation curve name such as "tanh".
func ParseSaturationCurve(s string) (SaturationCurve, error) {
	c, err := resonance.ParseCurve(s)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

// ParsePerformancePreset resolves a preset name such as "balanced".
func ParsePerformancePreset(s string) (PerformancePreset, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range engine.Presets {
		if p.String() == name {
			return p, nil
		}
	}
	return PresetBalanced, fmt.Errorf("%w: unknown performance preset %q", ErrInvalidConfig, s)
}

// Config holds filter configuration.
type Config struct {
	// SampleRate of the processed audio in Hz.
	SampleRate float64

	// Channels is the number of interleaved audio channels.
	Channels int

	// Topology selects the filter structure.
	Topology Topology

	// Type is the biquad response. Ignored by the other topologies and
	// when Morphing is enabled.
	Type FilterType

	// Morphing drives the biquad through MorphMode with the Morph and
	// MorphShape parameters instead of using Type.
	Morphing  bool
	MorphMode MorphMode

	// Resonance configures the optional feedback and self-oscillation
	// stage ahead of the topology.
	Resonance ResonanceConfig

	// Tracking configures keyboard tracking of the cutoff.
	Tracking TrackingConfig

	// Ladder configures the ladder topology.
	Ladder LadderConfig

	// Performance selects block size, SIMD use and coefficient smoothing
	// of the biquad block engine.
	Performance PerformancePreset

	// Float32 runs the biquad block engine in single precision.
	Float32 bool

	// MaxBlockFrames bounds the frames handled per internal pass. Longer
	// buffers are processed in several passes. Zero selects a default.
	MaxBlockFrames int

	// EnableParallel processes channels concurrently within each pass.
	// Has no effect on mono audio.
	EnableParallel bool
}

// ResonanceConfig configures the resonance stage.
type ResonanceConfig struct {
	// Enabled inserts the resonance stage into every channel chain.
	Enabled bool

	// SelfOscillation allows the stage to oscillate at the cutoff once
	// the effective resonance reaches Threshold.
	SelfOscillation bool

	// Threshold of self-oscillation. Zero selects 0.95.
	Threshold float64

	// FeedbackGain scales the feedback register. Zero selects 0.5.
	FeedbackGain float64

	// Curve is the output saturation. Its amount follows the Drive
	// parameter.
	Curve SaturationCurve

	// FrequencyCompensation raises resonance above 440 Hz and lowers it
	// below.
	FrequencyCompensation float64
}

// TrackingConfig configures keyboard tracking.
type TrackingConfig struct {
	// ReferenceNote is the MIDI note at which the cutoff is unchanged.
	// Zero selects middle C (60).
	ReferenceNote int

	Curve TrackingCurve

	// VelocitySensitivity in [0, 1].
	VelocitySensitivity float64

	// Portamento glides the cutoff between notes over GlideTime seconds.
	Portamento bool
	GlideTime  float64
}

// LadderConfig configures the ladder topology.
type LadderConfig struct {
	// Oversampling factor, one of 1, 2, 4 or 8. Zero selects 1.
	Oversampling int

	// Curve is the input saturation.
	Curve SaturationCurve

	// ThermalNoise injects low-level seeded noise after saturation.
	ThermalNoise bool
	Seed         uint64
}

// Common errors returned by the filter.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid filter configuration")

	// ErrInvalidBuffer indicates a buffer whose shape does not match the
	// configuration.
	ErrInvalidBuffer = errors.New("invalid audio buffer")

	// ErrInvalidParameter indicates an unknown parameter or an unusable
	// value.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidState indicates a snapshot that cannot be restored.
	ErrInvalidState = errors.New("invalid filter state")

	// ErrQueueFull indicates the control queue is full. The update was
	// not delivered and may be retried.
	ErrQueueFull = errors.New("parameter queue full")
)

// DefaultConfig returns a stereo biquad lowpass at 44.1 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate:  RateCD,
		Channels:    stereoChannels,
		Topology:    Biquad,
		Type:        Lowpass,
		MorphMode:   MorphLowpassBandpassHighpass,
		Performance: PresetBalanced,
		Resonance: ResonanceConfig{
			SelfOscillation: true,
		},
		Tracking: TrackingConfig{
			ReferenceNote: tracking.DefaultReferenceNote,
		},
		Ladder: LadderConfig{
			Oversampling: 1,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate || !mathutil.IsFinite(c.SampleRate) {
		return fmt.Errorf("%w: sample rate must be %v-%v Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if _, ok := topologyNames[c.Topology]; !ok {
		return fmt.Errorf("%w: unknown topology %d", ErrInvalidConfig, int(c.Topology))
	}

	if c.Type < Lowpass || c.Type > Allpass {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidConfig, int(c.Type))
	}

	if c.Morphing && (c.MorphMode < MorphLowpassBandpassHighpass || c.MorphMode > MorphAllpassBypass) {
		return fmt.Errorf("%w: unknown morph mode %d", ErrInvalidConfig, int(c.MorphMode))
	}

	if c.Performance < PresetMinimal || c.Performance > PresetUltraLowLatency {
		return fmt.Errorf("%w: unknown performance preset %d", ErrInvalidConfig, int(c.Performance))
	}

	if c.MaxBlockFrames < 0 {
		return fmt.Errorf("%w: max block frames must not be negative", ErrInvalidConfig)
	}

	if err := c.Resonance.validate(); err != nil {
		return err
	}

	if err := c.Tracking.validate(); err != nil {
		return err
	}

	return c.Ladder.validate()
}

func (r *ResonanceConfig) validate() error {
	if r.Threshold < 0 || r.Threshold > resonanceAmountLimit {
		return fmt.Errorf("%w: resonance threshold must be 0-%v", ErrInvalidConfig, resonanceAmountLimit)
	}
	if r.FeedbackGain < 0 || !mathutil.IsFinite(r.FeedbackGain) {
		return fmt.Errorf("%w: feedback gain must not be negative", ErrInvalidConfig)
	}
	if r.Curve < resonance.Tanh || r.Curve > resonance.BlendedCubic {
		return fmt.Errorf("%w: unknown saturation curve %d", ErrInvalidConfig, int(r.Curve))
	}
	if !mathutil.IsFinite(r.FrequencyCompensation) {
		return fmt.Errorf("%w: frequency compensation must be finite", ErrInvalidConfig)
	}
	return nil
}

func (t *TrackingConfig) validate() error {
	if t.ReferenceNote < 0 || t.ReferenceNote > maxMIDIValue {
		return fmt.Errorf("%w: reference note must be 0-%d", ErrInvalidConfig, maxMIDIValue)
	}
	if t.VelocitySensitivity < 0 || t.VelocitySensitivity > 1 {
		return fmt.Errorf("%w: velocity sensitivity must be 0-1", ErrInvalidConfig)
	}
	if t.GlideTime < 0 || !mathutil.IsFinite(t.GlideTime) {
		return fmt.Errorf("%w: glide time must not be negative", ErrInvalidConfig)
	}
	if t.Curve < tracking.Linear || t.Curve > tracking.SCurve {
		return fmt.Errorf("%w: unknown tracking curve %d", ErrInvalidConfig, int(t.Curve))
	}
	return nil
}

func (l *LadderConfig) validate() error {
	switch l.Oversampling {
	case 0, 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: oversampling factor must be one of {1,2,4,8}", ErrInvalidConfig)
	}
	if l.Curve < resonance.Tanh || l.Curve > resonance.BlendedCubic {
		return fmt.Errorf("%w: unknown saturation curve %d", ErrInvalidConfig, int(l.Curve))
	}
	return nil
}

// GetPerformanceConfig returns the block engine settings of a preset.
func GetPerformanceConfig(preset PerformancePreset) engine.PerformanceConfig {
	return preset.Config()
}
