// Package audiofilter provides a real-time morphing audio filter in pure Go.
//
// The filter combines RBJ biquad coefficient design, continuous morphing
// between responses with pole stabilization, a resonance and
// self-oscillation stage, keyboard tracking of the cutoff and two
// nonlinear topologies: a two-stage state-variable filter and a four-pole
// ladder.
//
// # Features
//
//   - Eight biquad responses: lowpass, highpass, bandpass, bandstop, low and
//     high shelf, peak and allpass
//   - Morph modes that sweep between responses while keeping poles inside
//     the unit circle
//   - State-variable (lowpass to bandpass to highpass) and ladder topologies
//     with drive, saturation curves and ladder oversampling
//   - Resonance feedback with self-oscillation, a soft limiter and a runaway
//     watchdog
//   - Keyboard tracking with four curves, velocity sensitivity, pitch bend
//     and log-domain portamento
//   - SIMD block engine (AVX2/SSE/NEON) via github.com/tphakala/simd with a
//     bit-compatible scalar path
//   - Lock-free parameter and MIDI updates from a control goroutine
//
// # Quick Start
//
// For one-shot filtering:
//
//	output, err := audiofilter.FilterMono(input, 44100, audiofilter.Lowpass, 800, 0.3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming with a reusable filter:
//
//	cfg := audiofilter.DefaultConfig()
//	cfg.Topology = audiofilter.StateVariable
//	f, err := audiofilter.New(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Control goroutine
//	_ = f.SetParameter(audiofilter.ParamCutoff, 1200)
//	_ = f.NoteOn(64, 100)
//
//	// Audio goroutine
//	for buf := range buffers {
//	    if err := f.Process(buf); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Parameters
//
// Parameters are addressed by [ParamID] or by name through [Filter.Parameters]
// and [Filter.LoadParameters]. Values are clamped to their range and applied
// at the start of the next processed block. Coefficients are refreshed
// every 64 samples; the biquad block engine additionally smooths
// coefficient changes under the Balanced preset.
//
// # Performance Presets
//
//   - [PresetMinimal]: 64-sample blocks, scalar path, no smoothing.
//   - [PresetBalanced]: 256-sample blocks, SIMD, smoothing.
//   - [PresetAggressive]: 1024-sample blocks, SIMD, no smoothing.
//   - [PresetUltraLowLatency]: 16-sample blocks, SIMD, no smoothing.
//
// # Thread Safety
//
// A Filter has one audio goroutine, which calls Process and the state and
// status methods, and at most one control goroutine, which calls
// SetParameter, LoadParameters and the MIDI methods. SetActive and
// IsActive are safe from any goroutine.
package audiofilter
