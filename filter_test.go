package audiofilter

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/testutil"
)

const testRate = 44100.0

func newFilter(t *testing.T, mut func(*Config)) *Filter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Channels = monoChannels
	if mut != nil {
		mut(&cfg)
	}
	f, err := New(&cfg)
	require.NoError(t, err)
	return f
}

func noise(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// toneGain measures a fresh run of f at freq. f is reset before and
// after so repeated calls are independent.
func toneGain(t *testing.T, f *Filter, freq float64) float64 {
	t.Helper()
	f.Reset()
	defer f.Reset()
	return testutil.ToneGain(func(in []float64) []float64 {
		out := slices.Clone(in)
		require.NoError(t, f.ProcessMono(out))
		return out
	}, freq, testRate, 16384)
}

// =============================================================================
// Configuration
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.SampleRate = 1000 }},
		{"sample rate NaN", func(c *Config) { c.SampleRate = math.NaN() }},
		{"no channels", func(c *Config) { c.Channels = 0 }},
		{"too many channels", func(c *Config) { c.Channels = maxChannels + 1 }},
		{"unknown topology", func(c *Config) { c.Topology = Topology(7) }},
		{"unknown filter type", func(c *Config) { c.Type = FilterType(42) }},
		{"unknown morph mode", func(c *Config) { c.Morphing = true; c.MorphMode = MorphMode(9) }},
		{"unknown preset", func(c *Config) { c.Performance = PerformancePreset(9) }},
		{"negative block", func(c *Config) { c.MaxBlockFrames = -1 }},
		{"resonance threshold", func(c *Config) { c.Resonance.Threshold = 2 }},
		{"negative feedback", func(c *Config) { c.Resonance.FeedbackGain = -1 }},
		{"reference note", func(c *Config) { c.Tracking.ReferenceNote = 200 }},
		{"velocity sensitivity", func(c *Config) { c.Tracking.VelocitySensitivity = 1.5 }},
		{"negative glide", func(c *Config) { c.Tracking.GlideTime = -0.1 }},
		{"oversampling", func(c *Config) { c.Ladder.Oversampling = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = New(&cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate(), "default config")
}

func TestNew_FillsDefaults(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	f := newFilter(t, func(c *Config) {
		c.Ladder.Oversampling = 0
		c.Tracking.ReferenceNote = 0
		c.MaxBlockFrames = 0
	})
	cfg := f.Config()
	assert.Equal(t, 1, cfg.Ladder.Oversampling)
	assert.Equal(t, 60, cfg.Tracking.ReferenceNote)
	assert.Equal(t, defaultBlockFrames, cfg.MaxBlockFrames)
	assert.True(t, f.IsActive())
	assert.Positive(t, f.GetMemoryUsage())
}

func TestParseTopology(t *testing.T) {
	for _, topo := range []Topology{Biquad, StateVariable, Ladder} {
		got, err := ParseTopology(" " + topo.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, topo, got)
	}

	_, err := ParseTopology("comb")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "Topology(9)", Topology(9).String())
}

// =============================================================================
// Buffer validation
// =============================================================================

func TestProcess_ShapeErrors(t *testing.T) {
	f := newFilter(t, func(c *Config) { c.Channels = stereoChannels })
	stereo := &audio.Format{NumChannels: 2, SampleRate: RateCD}

	tests := []struct {
		name string
		buf  *audio.FloatBuffer
	}{
		{"nil buffer", nil},
		{"nil format", &audio.FloatBuffer{Data: make([]float64, 4)}},
		{"channel mismatch", &audio.FloatBuffer{Format: &audio.Format{NumChannels: 1}, Data: make([]float64, 4)}},
		{"partial frame", &audio.FloatBuffer{Format: stereo, Data: []float64{1, 2, 3}}},
		{"sample rate mismatch", &audio.FloatBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: RateDAT}, Data: make([]float64, 4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before []float64
			if tt.buf != nil {
				before = slices.Clone(tt.buf.Data)
			}

			err := f.Process(tt.buf)
			require.ErrorIs(t, err, ErrInvalidBuffer)
			if tt.buf != nil {
				assert.Equal(t, before, tt.buf.Data, "data must be untouched")
			}
		})
	}

	assert.Zero(t, f.Metrics().SamplesProcessed, "no state touched")
	require.ErrorIs(t, f.ProcessMono(make([]float64, 8)), ErrInvalidBuffer)
	require.ErrorIs(t, f.ProcessStereo(make([]float64, 8), make([]float64, 7)), ErrInvalidBuffer)
	require.ErrorIs(t, f.ProcessInterleaved(make([]float64, 3)), ErrInvalidBuffer)

	mono := newFilter(t, nil)
	require.ErrorIs(t, mono.ProcessStereo(make([]float64, 8), make([]float64, 8)), ErrInvalidBuffer)
}

func TestProcess_EmptyAndUnsetRate(t *testing.T) {
	f := newFilter(t, nil)
	require.NoError(t, f.Process(&audio.FloatBuffer{Format: &audio.Format{NumChannels: 1}}))

	buf := &audio.FloatBuffer{Format: &audio.Format{NumChannels: 1}, Data: testutil.Sine(440, testRate, 0.5, 512)}
	require.NoError(t, f.Process(buf), "zero sample rate is accepted")
	testutil.AssertNoNaNOrInf(t, buf.Data)
}

// =============================================================================
// Processing
// =============================================================================

func TestBiquad_LowpassAttenuates(t *testing.T) {
	f := newFilter(t, nil)
	require.NoError(t, f.SetParameter(ParamCutoff, 500))

	assert.Greater(t, toneGain(t, f, 100), 0.9)
	assert.Less(t, toneGain(t, f, 8000), 0.05)
}

func TestBiquad_MeasuredMatchesResponse(t *testing.T) {
	for _, typ := range []FilterType{Lowpass, Highpass, Bandpass, Peak} {
		t.Run(typ.String(), func(t *testing.T) {
			f := newFilter(t, func(c *Config) {
				c.Type = typ
				c.Performance = PresetMinimal
			})
			require.NoError(t, f.SetParameter(ParamCutoff, 2000))
			require.NoError(t, f.SetParameter(ParamGain, 6))

			for _, freq := range []float64{300, 2000, 6000} {
				measured := toneGain(t, f, freq)
				want := f.FrequencyResponse([]float64{freq})[0].Magnitude
				assert.InDelta(t, want, measured, 0.02, "%v Hz", freq)
			}
		})
	}
}

func TestMorphing_EndsMatchDesign(t *testing.T) {
	f := newFilter(t, func(c *Config) {
		c.Morphing = true
		c.MorphMode = MorphLowpassHighpass
	})
	require.NoError(t, f.SetParameter(ParamCutoff, 1000))

	assert.Greater(t, toneGain(t, f, 100), 0.9, "position 0 is lowpass")
	assert.Less(t, toneGain(t, f, 10000), 0.05)

	require.NoError(t, f.SetParameter(ParamMorph, 1))
	assert.Less(t, toneGain(t, f, 100), 0.05, "position 1 is highpass")
	assert.Greater(t, toneGain(t, f, 10000), 0.9)
}

func TestMorphing_BypassMixesDryPath(t *testing.T) {
	f := newFilter(t, func(c *Config) {
		c.Morphing = true
		c.MorphMode = MorphLowpassHighpass
	})
	require.NoError(t, f.SetParameter(ParamCutoff, 1000))
	assert.Less(t, toneGain(t, f, 10000), 0.05)

	require.NoError(t, f.SetParameter(ParamMorphBypass, 1))
	assert.InDelta(t, 1.0, toneGain(t, f, 10000), 0.05, "full bypass passes the stopband")
}

func TestTopologies_StayFinite(t *testing.T) {
	for _, topo := range []Topology{Biquad, StateVariable, Ladder} {
		t.Run(topo.String(), func(t *testing.T) {
			f := newFilter(t, func(c *Config) {
				c.Topology = topo
				c.Resonance.Enabled = true
			})
			require.NoError(t, f.LoadParameters(map[string]float64{
				"cutoff":    18000,
				"resonance": 1,
				"drive":     engine.MaxDrive,
				"morph":     0.5,
			}))

			buf := noise(7, 8192)
			require.NoError(t, f.ProcessMono(buf))
			testutil.AssertNoNaNOrInf(t, buf)
		})
	}
}

func TestSelfOscillation_RingsAtCutoff(t *testing.T) {
	f := newFilter(t, func(c *Config) {
		c.Type = Allpass
		c.Resonance.Enabled = true
		c.Resonance.SelfOscillation = true
	})
	require.NoError(t, f.SetParameter(ParamCutoff, 1000))
	require.NoError(t, f.SetParameter(ParamResonance, 1))

	buf := make([]float64, 16384)
	require.NoError(t, f.ProcessMono(buf))

	assert.Greater(t, testutil.RMS(buf[8192:]), 0.01, "oscillates from silence")
	assert.InDelta(t, 1000, testutil.DominantFrequency(buf[8192:], testRate), 10)
	assert.Equal(t, "self-oscillating", f.Status().Resonance.State.String())
}

func newResonanceFilter(t *testing.T) *Filter {
	t.Helper()
	f := newFilter(t, func(c *Config) {
		c.Resonance.Enabled = true
		c.Resonance.FrequencyCompensation = 0
	})
	require.NoError(t, f.SetParameter(ParamResonance, 0.4))
	return f
}

func effectiveResonance(t *testing.T, f *Filter) float64 {
	t.Helper()
	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	return f.Status().Resonance.EffectiveResonance
}

func TestResonance_ScaledByNoteVelocity(t *testing.T) {
	f := newResonanceFilter(t)
	assert.InDelta(t, 0.4, effectiveResonance(t, f), 1e-12, "full scale without a note")

	require.NoError(t, f.NoteOn(60, 64))
	assert.InDelta(t, 0.4*64/127, effectiveResonance(t, f), 1e-12)

	require.NoError(t, f.NoteOff(60))
	assert.InDelta(t, 0.4, effectiveResonance(t, f), 1e-12, "released")
}

func TestResonance_FollowsModulation(t *testing.T) {
	f := newResonanceFilter(t)

	require.NoError(t, f.SetParameter(ParamModulation, -0.5))
	assert.InDelta(t, 0.15, effectiveResonance(t, f), 1e-12)

	require.NoError(t, f.HandleMIDI(0xB0, 1, 127))
	assert.InDelta(t, 0.9, effectiveResonance(t, f), 1e-12, "mod wheel at full scale")
}

func TestProcess_InterleavedMatchesPlanar(t *testing.T) {
	left := testutil.Sine(300, testRate, 0.5, 5000)
	right := noise(3, 5000)

	mut := func(c *Config) {
		c.Channels = stereoChannels
		c.MaxBlockFrames = 1000
	}
	a := newFilter(t, mut)
	b := newFilter(t, mut)

	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: RateCD},
		Data:   InterleaveStereo(left, right),
	}
	require.NoError(t, a.Process(buf))

	l, r := slices.Clone(left), slices.Clone(right)
	require.NoError(t, b.ProcessStereo(l, r))

	// Pass boundaries split the vector path differently, so compare to
	// rounding rather than bit for bit.
	gotL, gotR := DeinterleaveStereo(buf.Data)
	testutil.AssertSlicesInDelta(t, l, gotL, 1e-9)
	testutil.AssertSlicesInDelta(t, r, gotR, 1e-9)
}

func TestProcess_MultichannelLayout(t *testing.T) {
	const channels = 3
	f := newFilter(t, func(c *Config) {
		c.Channels = channels
		c.MaxBlockFrames = 100
	})

	// Channel 1 carries a signal, the others stay silent.
	data := make([]float64, 3000*channels)
	for i := range 3000 {
		data[i*channels+1] = math.Sin(float64(i) * 0.05)
	}
	require.NoError(t, f.ProcessInterleaved(data))

	var energy [channels]float64
	for i, v := range data {
		energy[i%channels] += v * v
	}
	assert.Zero(t, energy[0])
	assert.Positive(t, energy[1])
	assert.Zero(t, energy[2])
}

func TestProcess_PassSizeDoesNotMatter(t *testing.T) {
	in := noise(11, 10000)

	run := func(block int) []float64 {
		f := newFilter(t, func(c *Config) {
			c.Channels = stereoChannels
			c.MaxBlockFrames = block
		})
		require.NoError(t, f.SetParameter(ParamCutoff, 3000))
		data := slices.Clone(in)
		require.NoError(t, f.ProcessInterleaved(data))
		return data
	}

	testutil.AssertSlicesInDelta(t, run(0), run(100), 1e-9)
}

// =============================================================================
// Parameters
// =============================================================================

func TestSetParameter(t *testing.T) {
	f := newFilter(t, nil)

	require.NoError(t, f.SetParameter(ParamCutoff, 1e6))
	assert.Equal(t, 20000.0, f.Parameter(ParamCutoff), "clamped")

	require.NoError(t, f.SetParameter(ParamResonance, -3))
	assert.Zero(t, f.Parameter(ParamResonance))

	assert.ErrorIs(t, f.SetParameter(ParamDrive, math.NaN()), ErrInvalidParameter)
	assert.ErrorIs(t, f.SetParameter(ParamID(99), 1), ErrInvalidParameter)
	assert.Zero(t, f.Parameter(ParamID(-1)))

	// Audio side sees the change only after the next block.
	assert.Equal(t, defaultCutoff, f.Status().Parameters["cutoff"])
	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	assert.Equal(t, 20000.0, f.Status().Parameters["cutoff"])
}

func TestParameters_RoundTrip(t *testing.T) {
	f := newFilter(t, nil)
	preset := map[string]float64{
		"cutoff":       2500,
		"resonance":    0.4,
		"drive":        2,
		"morph":        0.25,
		"morph_shape":  0.75,
		"tracking":     -50,
		"gain":         3,
		"modulation":   -0.5,
		"morph_bypass": 0.1,
	}
	require.NoError(t, f.LoadParameters(preset))
	assert.Equal(t, preset, f.Parameters())

	g := newFilter(t, nil)
	err := g.LoadParameters(map[string]float64{"cutoff": 800, "bogus": 1})
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, 800.0, g.Parameter(ParamCutoff), "known names still applied")
}

func TestParams(t *testing.T) {
	specs := Params()
	require.Len(t, specs, int(numParams))
	for i, s := range specs {
		assert.Equal(t, ParamID(i), s.ID)
		id, err := ParseParamID(s.Name)
		require.NoError(t, err)
		assert.Equal(t, s.ID, id)
		assert.Equal(t, s.Default, s.Clamp(s.Default))
	}
	assert.Equal(t, "ParamID(42)", ParamID(42).String())
}

func TestValidateParameters(t *testing.T) {
	var seen []string
	err := ValidateParameters(map[string]float64{
		"resonance": 2,
		"cutoff":    440,
		"drive":     math.Inf(1),
		"zzz":       0,
	}, func(e *ParameterError) { seen = append(seen, e.Name) })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, []string{"drive", "resonance", "zzz"}, seen, "sorted by name")

	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "drive", perr.Name)

	assert.NoError(t, ValidateParameters(map[string]float64{"cutoff": 440, "gain": -24}, nil))
}

func TestQueueFull(t *testing.T) {
	f := newFilter(t, nil)

	var err error
	for i := 0; err == nil && i < 10000; i++ {
		err = f.SetParameter(ParamCutoff, float64(100+i))
	}
	require.ErrorIs(t, err, ErrQueueFull)

	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	assert.NoError(t, f.SetParameter(ParamCutoff, 500), "drained by processing")
}

// =============================================================================
// MIDI and tracking
// =============================================================================

func TestHandleMIDI(t *testing.T) {
	f := newFilter(t, nil)
	block := make([]float64, 64)

	require.NoError(t, f.HandleMIDI(0x91, 72, 100))
	require.NoError(t, f.ProcessMono(block))
	info := f.Status().Tracking
	assert.Equal(t, 72, info.Note)
	assert.Equal(t, 100, info.Velocity)
	assert.True(t, info.NoteActive)

	require.NoError(t, f.HandleMIDI(0x90, 72, 0))
	require.NoError(t, f.ProcessMono(block))
	assert.False(t, f.Status().Tracking.NoteActive, "velocity 0 releases")

	require.NoError(t, f.HandleMIDI(0xE0, 0x00, 0x40))
	require.NoError(t, f.ProcessMono(block))
	assert.Zero(t, f.Status().Tracking.PitchBend, "centre")

	require.NoError(t, f.HandleMIDI(0xE0, 0x00, 0x00))
	require.NoError(t, f.ProcessMono(block))
	assert.Equal(t, -1.0, f.Status().Tracking.PitchBend)

	require.NoError(t, f.HandleMIDI(0xB0, 1, 127))
	require.NoError(t, f.ProcessMono(block))
	assert.Equal(t, 1.0, f.Status().Parameters["modulation"], "mod wheel")

	require.NoError(t, f.HandleMIDI(0xB0, 7, 0), "other controllers ignored")
	require.NoError(t, f.ProcessMono(block))
	assert.Equal(t, 1.0, f.Status().Parameters["modulation"])
	assert.ErrorIs(t, f.PitchBend(math.NaN()), ErrInvalidParameter)
}

func TestTracking_FollowsNote(t *testing.T) {
	f := newFilter(t, nil)
	require.NoError(t, f.SetParameter(ParamCutoff, 1000))
	require.NoError(t, f.SetParameter(ParamTracking, 100))
	require.NoError(t, f.NoteOn(72, 100))
	require.NoError(t, f.ProcessMono(make([]float64, 64)))

	assert.InDelta(t, 2000, f.Status().Cutoff, 1e-6, "an octave up doubles the cutoff")

	require.NoError(t, f.NoteOn(48, 100))
	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	assert.InDelta(t, 500, f.Status().Cutoff, 1e-6)

	require.NoError(t, f.SetParameter(ParamTracking, 0))
	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	assert.InDelta(t, 1000, f.Status().Cutoff, 1e-9, "no tracking")
}

func TestTracking_PortamentoGlides(t *testing.T) {
	f := newFilter(t, func(c *Config) {
		c.Tracking.Portamento = true
		c.Tracking.GlideTime = 0.1
	})
	require.NoError(t, f.SetParameter(ParamTracking, 100))
	require.NoError(t, f.ProcessMono(make([]float64, 64)))
	start := f.Status().Cutoff

	require.NoError(t, f.NoteOn(72, 100))
	require.NoError(t, f.ProcessMono(make([]float64, 64*10)))
	mid := f.Status().Cutoff
	testutil.AssertInRange(t, mid, start+1, 2*start-1, "still gliding")

	require.NoError(t, f.ProcessMono(make([]float64, int(0.2*testRate))))
	assert.InDelta(t, 2*start, f.Status().Cutoff, 1e-6, "glide completes")
}

// =============================================================================
// State
// =============================================================================

func TestReset_Deterministic(t *testing.T) {
	for _, topo := range []Topology{Biquad, StateVariable, Ladder} {
		t.Run(topo.String(), func(t *testing.T) {
			f := newFilter(t, func(c *Config) {
				c.Topology = topo
				c.Morphing = true
			})
			require.NoError(t, f.SetParameter(ParamResonance, 0.7))
			require.NoError(t, f.SetParameter(ParamMorph, 0.3))

			in := noise(5, 3000)
			first := slices.Clone(in)
			require.NoError(t, f.ProcessMono(first))

			f.Reset()
			second := slices.Clone(in)
			require.NoError(t, f.ProcessMono(second))

			assert.Equal(t, first, second)
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	for _, topo := range []Topology{Biquad, StateVariable, Ladder} {
		t.Run(topo.String(), func(t *testing.T) {
			f := newFilter(t, func(c *Config) {
				c.Channels = stereoChannels
				c.Topology = topo
				c.Performance = PresetMinimal
			})
			require.NoError(t, f.ProcessInterleaved(noise(1, 2048)))

			snap := f.Snapshot()
			assert.Equal(t, topo, snap.Topology)

			block := noise(2, 1024)
			first := slices.Clone(block)
			require.NoError(t, f.ProcessInterleaved(first))

			require.NoError(t, f.Restore(snap))
			second := slices.Clone(block)
			require.NoError(t, f.ProcessInterleaved(second))

			assert.Equal(t, first, second)
		})
	}
}

func TestRestore_Errors(t *testing.T) {
	f := newFilter(t, func(c *Config) { c.Channels = stereoChannels })
	require.NoError(t, f.ProcessInterleaved(noise(1, 512)))
	before := f.Snapshot()

	err := f.Restore(State{Topology: Ladder, Ladder: make([]LadderState, 2)})
	assert.ErrorIs(t, err, ErrInvalidState, "topology mismatch")

	err = f.Restore(State{Topology: Biquad, Biquad: make([]BiquadState, 1)})
	assert.ErrorIs(t, err, ErrInvalidState, "channel mismatch")

	bad := State{Topology: Biquad, Biquad: []BiquadState{{X1: 0.5}, {Y1: math.NaN()}}}
	err = f.Restore(bad)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, errors.Is(err, engine.ErrNonFiniteState), "cause is kept")
	assert.Equal(t, before, f.Snapshot(), "failed restore leaves state unchanged")
}

// =============================================================================
// Activation, status and response
// =============================================================================

func TestSetActive(t *testing.T) {
	f := newFilter(t, nil)
	require.NoError(t, f.ProcessMono(noise(1, 1024)))

	f.SetActive(false)
	assert.False(t, f.IsActive())
	assert.False(t, f.Status().IsActive)

	in := noise(2, 512)
	buf := slices.Clone(in)
	require.NoError(t, f.ProcessMono(buf))
	assert.Equal(t, in, buf, "bypassed")

	f.SetActive(true)
	require.NoError(t, f.ProcessMono(make([]float64, 0)))
	for _, s := range f.Snapshot().Biquad {
		assert.Equal(t, BiquadState{}, s, "re-activation clears history")
	}
}

func TestStatus(t *testing.T) {
	f := newFilter(t, func(c *Config) { c.Resonance.Enabled = true })
	require.NoError(t, f.SetParameter(ParamCutoff, 1500))
	require.NoError(t, f.ProcessMono(noise(1, 4410)))

	st := f.Status()
	assert.True(t, st.IsActive)
	assert.Equal(t, Biquad, st.Topology)
	assert.Equal(t, 1500.0, st.Cutoff)
	assert.Equal(t, 1500.0, st.Parameters["cutoff"])
	assert.Equal(t, int64(4410), st.Performance.SamplesProcessed)
	assert.Equal(t, int64(1), st.Performance.Blocks)
	assert.Positive(t, st.Performance.AudioTime)
	assert.True(t, filter.IsStable(st.Coefficients))

	f.ResetMetrics()
	assert.Zero(t, f.Metrics().SamplesProcessed)
}

func TestFrequencyResponse(t *testing.T) {
	freqs := []float64{50, 10000}

	for _, topo := range []Topology{Biquad, StateVariable, Ladder} {
		t.Run(topo.String(), func(t *testing.T) {
			f := newFilter(t, func(c *Config) { c.Topology = topo })
			require.NoError(t, f.SetParameter(ParamCutoff, 1000))
			require.NoError(t, f.ProcessMono(make([]float64, 64)))

			resp := f.FrequencyResponse(freqs)
			require.Len(t, resp, len(freqs))
			assert.Equal(t, 50.0, resp[0].Frequency)
			assert.Greater(t, resp[0].Magnitude, 0.9, "passband")
			assert.Less(t, resp[1].Magnitude, 0.05, "stopband")
		})
	}
}

func TestFrequencyResponse_BiquadIsAnalytic(t *testing.T) {
	f := newFilter(t, func(c *Config) { c.Type = Bandpass })
	require.NoError(t, f.ProcessMono(make([]float64, 64)))

	c := f.Coefficients()
	for _, r := range f.FrequencyResponse(filter.LogFrequencies(20, 20000, 16)) {
		assert.InDelta(t, filter.MagnitudeResponse(c, r.Frequency, testRate), r.Magnitude, 1e-12)
	}
}

func TestParseNames(t *testing.T) {
	typ, err := ParseFilterType("notch")
	require.NoError(t, err)
	assert.Equal(t, Bandstop, typ)

	mode, err := ParseMorphMode("shelf-peak-shelf")
	require.NoError(t, err)
	assert.Equal(t, MorphShelfPeakShelf, mode)

	curve, err := ParseSaturationCurve("Tube")
	require.NoError(t, err)
	assert.Equal(t, SaturationCurve(5), curve)

	preset, err := ParsePerformancePreset("ultra-low-latency")
	require.NoError(t, err)
	assert.Equal(t, PresetUltraLowLatency, preset)

	for _, parse := range []func(string) error{
		func(s string) error { _, err := ParseFilterType(s); return err },
		func(s string) error { _, err := ParseMorphMode(s); return err },
		func(s string) error { _, err := ParseSaturationCurve(s); return err },
		func(s string) error { _, err := ParsePerformancePreset(s); return err },
	} {
		assert.ErrorIs(t, parse("nope"), ErrInvalidConfig)
	}
}
