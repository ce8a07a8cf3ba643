package main

// Processing buffer
const (
	// Frames per chunk. Parameter sweeps advance once per chunk.
	bufferFrames = 4096
)

// Sample format constants
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	wavFormatPCM = 1
)

// CLI defaults
const (
	defaultTopology = "biquad"
	defaultType     = "lowpass"
	defaultPreset   = "balanced"
	defaultCurve    = "tanh"
	defaultCutoff   = 1000.0
	defaultDrive    = 1.0

	minRequiredArgs  = 2
	percentScale     = 100
	progressInterval = 10 // Print progress every N%
)
