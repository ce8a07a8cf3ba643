package tracking

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Config holds the tracking settings.
type Config struct {
	SampleRate float64

	// ReferenceNote is the MIDI note at which the cutoff is unchanged.
	ReferenceNote int

	Curve Curve

	// Amount in percent, -100 to 100. Negative values invert tracking.
	Amount float64

	// VelocitySensitivity in [0, 1].
	VelocitySensitivity float64

	MinFrequency float64
	MaxFrequency float64

	// Portamento enables the log-domain glide.
	Portamento bool

	// GlideTime in seconds.
	GlideTime float64
}

// DefaultConfig returns linear full tracking around middle C without
// portamento.
func DefaultConfig() Config {
	return Config{
		SampleRate:    defaultSampleRate,
		ReferenceNote: DefaultReferenceNote,
		Curve:         Linear,
		Amount:        maxAmount,
		MinFrequency:  DefaultMinFrequency,
		MaxFrequency:  DefaultMaxFrequency,
		GlideTime:     defaultGlideTime,
	}
}

// Info is a diagnostic snapshot of the tracking state.
type Info struct {
	Note             int
	Velocity         int
	PitchBend        float64
	NoteActive       bool
	GlidePhase       float64
	CurrentFrequency float64
}

// Engine tracks the last played note. Not safe for concurrent use.
type Engine struct {
	cfg Config

	note     int
	velocity int
	bend     float64
	active   bool

	glidePhase float64
	logStart   float64
	current    float64
}

// NewEngine creates a tracking engine.
func NewEngine(cfg Config) *Engine {
	e := &Engine{note: cfg.ReferenceNote, velocity: defaultVelocity, glidePhase: 1}
	e.SetConfig(cfg)
	return e
}

// SetConfig replaces the configuration, clamping out-of-range fields.
func (e *Engine) SetConfig(cfg Config) {
	if cfg.SampleRate <= 0 || !mathutil.IsFinite(cfg.SampleRate) {
		cfg.SampleRate = defaultSampleRate
	}
	cfg.ReferenceNote = clampNote(cfg.ReferenceNote)
	cfg.Amount = mathutil.Clamp(cfg.Amount, -maxAmount, maxAmount)
	cfg.VelocitySensitivity = mathutil.Clamp01(cfg.VelocitySensitivity)
	if cfg.MinFrequency <= 0 {
		cfg.MinFrequency = DefaultMinFrequency
	}
	if cfg.MaxFrequency <= cfg.MinFrequency {
		cfg.MaxFrequency = DefaultMaxFrequency
	}
	if cfg.GlideTime < 0 || !mathutil.IsFinite(cfg.GlideTime) {
		cfg.GlideTime = 0
	}
	e.cfg = cfg
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetAmount sets the tracking amount in percent.
func (e *Engine) SetAmount(percent float64) {
	e.cfg.Amount = mathutil.Clamp(percent, -maxAmount, maxAmount)
}

// NoteOn makes note the tracked note and restarts the glide from the
// current frequency.
func (e *Engine) NoteOn(note, velocity int) {
	e.note = clampNote(note)
	e.velocity = clampNote(velocity)
	e.active = true
	e.glidePhase = 0
	if e.current > 0 {
		e.logStart = math.Log(e.current)
	}
}

// NoteOff releases note if it is the tracked note.
func (e *Engine) NoteOff(note int) {
	if clampNote(note) == e.note {
		e.active = false
	}
}

// PitchBend sets the bend in [-1, 1], a range of two semitones.
func (e *Engine) PitchBend(amount float64) {
	if !mathutil.IsFinite(amount) {
		amount = 0
	}
	e.bend = mathutil.Clamp(amount, -1, 1)
}

// NoteActive reports whether a note is held.
func (e *Engine) NoteActive() bool {
	return e.active
}

// Offset returns the semitone distance of the bent note from the
// reference note.
func (e *Engine) Offset() float64 {
	return float64(e.note-e.cfg.ReferenceNote) + e.bend*bendRangeSemitones
}

// TrackedFrequency maps base to the cutoff for the current note without
// portamento.
func (e *Engine) TrackedFrequency(base float64) float64 {
	ratio := Ratio(e.cfg.Curve, e.Offset())
	tracked := base * (1 + e.cfg.Amount/maxAmount*(ratio-1))

	if e.cfg.VelocitySensitivity > 0 {
		frac := float64(e.velocity) / maxMIDIValue
		tracked *= 1 + e.cfg.VelocitySensitivity*(frac-0.5)*2
	}
	return mathutil.Clamp(tracked, e.cfg.MinFrequency, e.cfg.MaxFrequency)
}

// Advance moves the glide n samples toward the tracked frequency for base
// and returns the resulting cutoff.
func (e *Engine) Advance(base float64, n int) float64 {
	target := e.TrackedFrequency(base)

	if !e.cfg.Portamento || e.cfg.GlideTime == 0 || e.current <= 0 {
		e.current = target
		e.glidePhase = 1
		return target
	}

	if e.glidePhase < 1 {
		e.glidePhase = math.Min(1, e.glidePhase+float64(n)/(e.cfg.GlideTime*e.cfg.SampleRate))
	}
	if e.glidePhase >= 1 {
		e.current = target
		return target
	}

	curve := 1 - mathutil.FastExp(-e.glidePhase*glideSteepness)
	logTarget := math.Log(target)
	e.current = math.Exp(e.logStart + (logTarget-e.logStart)*curve)
	return e.current
}

// Current returns the last frequency produced by Advance.
func (e *Engine) Current() float64 {
	return e.current
}

// Reset releases the note and clears bend and glide state.
func (e *Engine) Reset() {
	e.note = e.cfg.ReferenceNote
	e.velocity = defaultVelocity
	e.bend = 0
	e.active = false
	e.glidePhase = 1
	e.logStart = 0
	e.current = 0
}

// Info returns a diagnostic snapshot.
func (e *Engine) Info() Info {
	return Info{
		Note:             e.note,
		Velocity:         e.velocity,
		PitchBend:        e.bend,
		NoteActive:       e.active,
		GlidePhase:       e.glidePhase,
		CurrentFrequency: e.current,
	}
}

func clampNote(v int) int {
	return max(0, min(v, maxMIDIValue))
}
