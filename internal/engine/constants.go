package engine

// UpdateInterval is the number of samples between coefficient refreshes.
// Parameter changes take effect at the next multiple of this interval.
const UpdateInterval = 64

// Parameter ranges shared by the topology processors
const (
	MinCutoff = 20.0
	MaxCutoff = 20000.0
	MaxDrive  = 10.0

	defaultCutoff     = 1000.0
	defaultDrive      = 1.0
	defaultSampleRate = 44100.0
	minDrive          = 1e-3 // Below this the drive stage is bypassed
)

// State-variable constants
const (
	svfStages          = 2
	svfStabilityMargin = 0.95 // Fraction of the stability bound used for freq
)

// Ladder constants
const (
	ladderPoles         = 4
	ladderFeedbackScale = 4.0   // Resonance 1 maps to loop gain 4
	antiAliasFraction   = 0.225 // Anti-alias corner as a fraction of the base rate
	antiAliasQ          = 0.7071067811865476
	defaultNoiseLevel   = 1e-4
	noiseSeedMix        = 0x9e3779b97f4a7c15 // Second PCG word derived from the seed
)

// Vector path constants
const (
	biquadHistory  = 2 // Samples of input history prefixed to each block
	unrollLanes    = 4 // Recursive samples per loop iteration
	minVectorBlock = 4 // Shorter blocks take the scalar path

	smoothingFactor    = 0.5  // Per-refresh approach toward staged coefficients
	smoothingTolerance = 1e-9 // Distance at which smoothing snaps to target
)

// Byte sizes for float types.
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)
