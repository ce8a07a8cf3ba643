package filter

// Design constants
const (
	// shelfGainDivisor converts dB to the RBJ amplitude A = 10^(dB/40).
	shelfGainDivisor = 40.0

	// bandwidthLnFactor is ln(2)/2 in the RBJ bandwidth form of alpha.
	bandwidthLnFactor = 0.34657359027997264

	// butterworthQ is 1/sqrt(2).
	butterworthQ = 0.7071067811865476

	// defaultSampleRate is substituted for non-positive sample rates.
	defaultSampleRate = 44100.0
)

// Validation constants
const (
	// coefficientLimit bounds every term in ClampCoefficients.
	coefficientLimit = 100.0

	// passthroughTolerance is the identity comparison tolerance.
	passthroughTolerance = 1e-6

	// maxStableRadius is the pole radius enforced on designs whose
	// normalized terms end up on or outside the unit circle.
	maxStableRadius = 0.9999
)

// Measurement constants
const (
	minMeasureLength = 2
)
