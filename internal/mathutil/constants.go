package mathutil

// Frequency clamping and warping
const (
	nyquistFraction    = 0.5  // Nyquist as a fraction of the sample rate
	maxNyquistFraction = 0.99 // Highest usable cutoff relative to Nyquist
	minCutoffHz        = 1.0  // Lowest usable cutoff in Hz
	warpScale          = 2.0  // Bilinear warp factor in 2*tan(pi*f/fs)
)

// Resonance to Q mapping
const (
	minQ = 0.5  // Q at resonance 0
	maxQ = 40.0 // Q at resonance 1
)

// Pitch constants
const (
	semitonesPerOctave = 12.0
	referenceNote      = 69.0  // MIDI A4
	referencePitchHz   = 440.0 // A4 in Hz
)

// Level conversion
const (
	dbAmplitudeDivisor = 20.0
	// MinDB is returned by GainToDB for silent or invalid gains.
	MinDB = -240.0
)

// Numeric guards
const (
	denormalThreshold = 1e-20
	fastExpMin        = -80.0 // Below this FastExp returns exactly 0
)
