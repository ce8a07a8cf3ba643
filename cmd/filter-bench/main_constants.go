package main

// Default command-line flag values
const (
	defaultSampleRate = 44100.0 // CD quality sample rate
	defaultCutoff     = 1000.0
	defaultResonance  = 0.5
	defaultSamples    = 1 << 16
	defaultType       = "lowpass"
)

// Demo sample rates
const (
	sampleRateCD    = 44100.0 // CD quality
	sampleRateDAT   = 48000.0 // DAT/DVD
	sampleRateHiRes = 96000.0 // Hi-res audio
)

// Demo channel configurations
const (
	monoChannels   = 1
	stereoChannels = 2
	surround5_1    = 6
	surround7_1    = 8
)

// Demo signal parameters
const (
	demoSeconds   = 1
	testFrequency = 440.0
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
)
