package morph

// Curve shaping constants
const (
	shapeSplit        = 0.5 // Shape value where the curve family switches
	shapeExponentBase = 0.5 // Exponent of the power curve at shape 0
)

// Stability constants
const (
	stabilityRadius    = 0.98 // Pole radius bound at stability factor 1
	minStabilityFactor = 0.1
	maxStabilityFactor = 1.0
)

// Smoothing defaults
const (
	defaultTimeConstant = 0.01           // 10 ms
	defaultUpdateRate   = 44100.0 / 64.0 // One refresh per 64 samples at 44.1 kHz
)
