package audiofilter

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2  // Stereo channel count (used by interleave functions)
	maxChannels    = 32 // Maximum supported channel count
)

// Sample rate limits
const (
	minSampleRate = 8000.0
	maxSampleRate = 384000.0
)

// Buffer and memory constants
const (
	defaultBlockFrames = 4096 // Frames per internal pass when MaxBlockFrames is 0
	bytesPerFloat64    = 8    // Size of float64 in bytes
)

// Parameter defaults
const (
	defaultCutoff = 1000.0
	defaultDrive  = 1.0

	maxGainDB = 24.0
	maxTrack  = 100.0
)

// MIDI decoding
const (
	maxMIDIValue      = 127
	midiStatusMask    = 0xF0
	midiNoteOff       = 0x80
	midiNoteOn        = 0x90
	midiPitchBend     = 0xE0
	midiControlChange = 0xB0
	midiModWheel      = 1
	midiDataBits      = 7
	midiPitchBendZero = 8192.0 // 14-bit centre value
)

// Resonance stage limits
const (
	resonanceAmountLimit = 1.2
)

// Response measurement of nonlinear topologies
const (
	measureImpulseLength = 8192
)
