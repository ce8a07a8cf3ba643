package audiofilter

import (
	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// NewMono creates a single-channel filter of the given topology with
// default settings.
func NewMono(sampleRate float64, topology Topology) (*Filter, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.Channels = monoChannels
	cfg.Topology = topology
	return New(&cfg)
}

// NewStereo creates a two-channel filter of the given topology with
// default settings.
func NewStereo(sampleRate float64, topology Topology) (*Filter, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.Topology = topology
	return New(&cfg)
}

// NewBiquad creates a mono biquad filter of type t at cutoff Hz.
func NewBiquad(sampleRate float64, t FilterType, cutoff, resonance float64) (*Filter, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.Channels = monoChannels
	cfg.Type = t

	f, err := New(&cfg)
	if err != nil {
		return nil, err
	}
	if err := f.SetParameter(ParamCutoff, cutoff); err != nil {
		return nil, err
	}
	if err := f.SetParameter(ParamResonance, resonance); err != nil {
		return nil, err
	}
	return f, nil
}

// FilterMono is a convenience function for one-shot mono filtering. It
// returns a filtered copy of input.
func FilterMono(input []float64, sampleRate float64, t FilterType, cutoff, resonance float64) ([]float64, error) {
	f, err := NewBiquad(sampleRate, t, cutoff, resonance)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(input))
	copy(out, input)
	if err := f.ProcessMono(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterStereo is a convenience function for one-shot stereo filtering.
// Both channels run through their own filter state.
func FilterStereo(left, right []float64, sampleRate float64, t FilterType, cutoff, resonance float64) (leftOut, rightOut []float64, err error) {
	leftOut, err = FilterMono(left, sampleRate, t, cutoff, resonance)
	if err != nil {
		return nil, nil, err
	}

	rightOut, err = FilterMono(right, sampleRate, t, cutoff, resonance)
	if err != nil {
		return nil, nil, err
	}

	return leftOut, rightOut, nil
}

// InterleaveStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveStereo(left, right []float64) []float64 {
	minLen := min(len(left), len(right))
	result := make([]float64, minLen*stereoChannels)
	simdops.Float64Ops().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveStereo(interleaved []float64) (left, right []float64) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float64, numSamples)
	right = make([]float64, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}

// BenchmarkResult reports one performance preset's measured throughput.
type BenchmarkResult = engine.BenchmarkResult

// Benchmark filters a 440 Hz test tone of the given length through the
// block engine under every performance preset, using the coefficients of
// a filter of type t at cutoff Hz.
func Benchmark(sampleRate float64, t FilterType, cutoff, resonance float64, samples int) ([]BenchmarkResult, error) {
	c := filter.Calculate(t, filter.Config{SampleRate: sampleRate, Cutoff: cutoff, Resonance: resonance})
	return engine.Benchmark[float64](c, sampleRate, samples)
}

// =============================================================================
// Float32 API
// =============================================================================
//
// The helpers below accept float32 audio. Filter state is carried in
// float64; the biquad block engine itself runs in float32 when
// Config.Float32 is set, which doubles SIMD lane count.

// BenchmarkFloat32 is Benchmark with the block engine in float32.
func BenchmarkFloat32(sampleRate float64, t FilterType, cutoff, resonance float64, samples int) ([]BenchmarkResult, error) {
	c := filter.Calculate(t, filter.Config{SampleRate: sampleRate, Cutoff: cutoff, Resonance: resonance})
	return engine.Benchmark[float32](c, sampleRate, samples)
}

// FilterMonoFloat32 is FilterMono for float32 audio. The block engine runs
// in single precision.
func FilterMonoFloat32(input []float32, sampleRate float64, t FilterType, cutoff, resonance float64) ([]float32, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.Channels = monoChannels
	cfg.Type = t
	cfg.Float32 = true

	f, err := New(&cfg)
	if err != nil {
		return nil, err
	}
	if err := f.SetParameter(ParamCutoff, cutoff); err != nil {
		return nil, err
	}
	if err := f.SetParameter(ParamResonance, resonance); err != nil {
		return nil, err
	}

	work := make([]float64, len(input))
	for i, v := range input {
		work[i] = float64(v)
	}
	if err := f.ProcessMono(work); err != nil {
		return nil, err
	}

	out := make([]float32, len(work))
	for i, v := range work {
		out[i] = float32(v)
	}
	return out, nil
}

// InterleaveStereoFloat32 converts two mono float32 channels to
// interleaved stereo.
func InterleaveStereoFloat32(left, right []float32) []float32 {
	minLen := min(len(left), len(right))
	result := make([]float32, minLen*stereoChannels)
	simdops.Float32Ops().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveStereoFloat32 converts interleaved stereo float32 to two mono
// channels.
func DeinterleaveStereoFloat32(interleaved []float32) (left, right []float32) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float32, numSamples)
	right = make([]float32, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
