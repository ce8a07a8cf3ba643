package tracking

// Curve constants
const (
	exponentialSpan   = 48.0 // Semitones normalized to 1 by the exponential and log curves
	exponentialWeight = 0.5
	logarithmicWeight = 0.3
	sCurveSpan        = 24.0
	sCurveWeight      = 0.4
)

// MIDI constants
const (
	maxMIDIValue       = 127
	defaultVelocity    = 100
	bendRangeSemitones = 2.0
)

// Defaults
const (
	DefaultReferenceNote = 60
	DefaultMinFrequency  = 20.0
	DefaultMaxFrequency  = 20000.0
	maxAmount            = 100.0
	defaultSampleRate    = 44100.0
	defaultGlideTime     = 0.1
	glideSteepness       = 4.0 // Exponent scale of the glide curve
)
