package resonance

// Saturation constants
const (
	saturationDriveRange = 3.0 // Extra drive at amount 1
	asymmetry            = 0.3
	tubePositiveKnee     = 0.7
	tubeNegativeKnee     = 0.9
)

// Resonance mapping constants
const (
	modulationScale   = 0.5   // Weight of the modulation input
	compensationScale = 0.1   // Weight of log2(freq/440) compensation
	referenceHz       = 440.0 // Frequency with zero compensation
	maxResonance      = 1.2
)

// Self-oscillation constants
const (
	oscillationAmplitudeScale = 2.0
	inputDuckScale            = 0.8  // Input attenuation per unit of oscillation amplitude
	minOscillationAmplitude   = 0.05 // Amplitude held at the threshold itself
)

// Limiter and watchdog constants
const (
	limiterOvershoot  = 0.1 // Soft overshoot allowance above the limiter threshold
	watchdogMagnitude = 2.0 // Feedback or oscillator magnitude counted as runaway
	watchdogLimit     = 10  // Consecutive runaway samples tolerated
)

// Defaults
const (
	DefaultThreshold    = 0.95
	DefaultFeedbackGain = 0.5
	DefaultLimiter      = 0.95
	DefaultDamping      = 1.0
	defaultSampleRate   = 44100.0
	defaultCutoff       = 1000.0
)

// feedbackWeights are applied to the four-tap feedback register, newest first.
var feedbackWeights = [4]float64{0.6, 0.3, 0.1, 0}
