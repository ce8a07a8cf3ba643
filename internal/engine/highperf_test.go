package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/simdops"
	"github.com/tphakala/go-audio-filter/internal/testutil"
)

func newEngine[F simdops.Float](t testing.TB, cfg PerformanceConfig) *HighPerformance[F] {
	t.Helper()
	e, err := NewHighPerformance[F](44100, cfg)
	require.NoError(t, err)
	return e
}

// =============================================================================
// Vector vs scalar equivalence
// =============================================================================

// TestHighPerformance_VectorMatchesScalar runs the same signal through both
// paths with block lengths that exercise the unrolled loop and its tail.
func TestHighPerformance_VectorMatchesScalar(t *testing.T) {
	c := filter.Calculate(filter.Peak, filter.Config{SampleRate: 44100, Cutoff: 3000, Resonance: 0.7, GainDB: 9})
	in := testutil.Sine(1234, 44100, 0.8, 4099)

	for _, block := range []int{1, 3, 4, 5, 7, 64, 100, 1000} {
		vec := newEngine[float64](t, PerformanceConfig{BlockSize: block, EnableSIMD: true})
		sca := newEngine[float64](t, PerformanceConfig{BlockSize: block})
		vec.SetCoefficients(c)
		sca.SetCoefficients(c)

		a := append([]float64(nil), in...)
		b := append([]float64(nil), in...)
		vec.ProcessBuffer(a)
		sca.ProcessBuffer(b)
		testutil.AssertSlicesInDelta(t, b, a, 1e-9, "block %d", block)
	}
}

func TestHighPerformance_MatchesBiquadSection(t *testing.T) {
	c := lowpass(44100, 700, 0.5)
	e := newEngine[float64](t, Balanced.Config())
	e.SetCoefficients(c)
	ref := NewBiquadSection(c)

	in := testutil.Sine(500, 44100, 0.5, 3000)
	want := append([]float64(nil), in...)
	ref.ProcessBlock(want)

	got := append([]float64(nil), in...)
	e.ProcessBuffer(got)
	testutil.AssertSlicesInDelta(t, want, got, 1e-9)
}

func TestHighPerformance_Float32TracksFloat64(t *testing.T) {
	c := lowpass(44100, 2000, 0.3)
	e64 := newEngine[float64](t, Aggressive.Config())
	e32 := newEngine[float32](t, Aggressive.Config())
	e64.SetCoefficients(c)
	e32.SetCoefficients(c)

	in := testutil.Sine(440, 44100, 0.5, 2048)
	a := append([]float64(nil), in...)
	b := testutil.ToFloat32(in)
	e64.ProcessBuffer(a)
	e32.ProcessBuffer(b)

	for i := range a {
		assert.InDelta(t, a[i], float64(b[i]), 1e-4, "sample %d", i)
	}
}

func TestHighPerformance_ProcessSampleMatchesBuffer(t *testing.T) {
	c := lowpass(44100, 1500, 0.2)
	a := newEngine[float64](t, Balanced.Config())
	b := newEngine[float64](t, Balanced.Config())
	a.SetCoefficients(c)
	b.SetCoefficients(c)

	in := testutil.Sine(800, 44100, 0.5, 300)
	buf := append([]float64(nil), in...)
	a.ProcessBuffer(buf)
	for i, x := range in {
		assert.InDelta(t, buf[i], b.ProcessSample(x), 1e-9)
	}
}

// =============================================================================
// Throttled coefficient refresh
// =============================================================================

func TestHighPerformance_SetTargetWaitsForBoundary(t *testing.T) {
	e := newEngine[float64](t, Minimal.Config())
	first := lowpass(44100, 1000, 0)
	second := lowpass(44100, 4000, 0)
	e.SetCoefficients(first)

	e.ProcessBuffer(make([]float64, 10))
	e.SetTarget(second)

	e.ProcessBuffer(make([]float64, UpdateInterval-10))
	assert.Equal(t, first, e.Coefficients())

	e.ProcessBuffer(make([]float64, 1))
	assert.Equal(t, second, e.Coefficients())
}

func TestHighPerformance_SmoothingConverges(t *testing.T) {
	e := newEngine[float64](t, Balanced.Config())
	first := lowpass(44100, 1000, 0)
	second := lowpass(44100, 6000, 0)
	e.SetCoefficients(first)
	e.SetTarget(second)

	e.ProcessBuffer(make([]float64, 1))
	mid := e.Coefficients()
	assert.NotEqual(t, second, mid, "smoothing does not jump")
	assert.InDelta(t, (first.B0+second.B0)/2, mid.B0, 1e-15)

	e.ProcessBuffer(make([]float64, UpdateInterval*64))
	assert.Equal(t, second, e.Coefficients())
}

// =============================================================================
// Stereo, health and metrics
// =============================================================================

func TestHighPerformance_StereoIndependent(t *testing.T) {
	e := newEngine[float64](t, Balanced.Config())
	e.SetCoefficients(lowpass(44100, 1000, 0.4))

	left := testutil.Sine(300, 44100, 0.5, 1000)
	right := make([]float64, 1000)
	require.NoError(t, e.ProcessStereoBuffer(left, right))
	testutil.AssertAllInRange(t, right, 0, 0)
	assert.Greater(t, testutil.Peak(left), 0.1)

	assert.Error(t, e.ProcessStereoBuffer(make([]float64, 3), make([]float64, 4)))
}

func TestHighPerformance_NonFiniteResetsChannel(t *testing.T) {
	e := newEngine[float64](t, Balanced.Config())
	e.SetCoefficients(lowpass(44100, 1000, 0.4))

	buf := testutil.Sine(300, 44100, 0.5, 64)
	buf[10] = math.NaN()
	e.ProcessBuffer(buf)
	testutil.AssertAllInRange(t, buf, 0, 0)
	assert.Equal(t, BiquadState{}, e.State(0))

	next := testutil.Sine(300, 44100, 0.5, 64)
	e.ProcessBuffer(next)
	testutil.AssertNoNaNOrInf(t, next)
}

func TestHighPerformance_Metrics(t *testing.T) {
	e := newEngine[float64](t, Balanced.Config())
	e.SetCoefficients(filter.Identity())

	buf := testutil.DC(0.5, 4410)
	e.ProcessBuffer(buf)
	require.NoError(t, e.ProcessStereoBuffer(testutil.DC(0.5, 100), testutil.DC(0.5, 100)))

	m := e.Metrics()
	assert.Equal(t, int64(4410+200), m.SamplesProcessed)
	assert.Equal(t, int64(2), m.Blocks)
	assert.InDelta(t, 0.1+100.0/44100, m.AudioTime.Seconds(), 1e-6)
	assert.InDelta(t, 0.5, m.OutputRMS, 1e-12)
	assert.GreaterOrEqual(t, m.CPUUsage(), 0.0)

	e.ResetMetrics()
	assert.Equal(t, Metrics{}, e.Metrics())
	assert.Zero(t, Metrics{}.Throughput())
}

func TestHighPerformance_StateRoundTrip(t *testing.T) {
	e := newEngine[float32](t, Balanced.Config())
	s := BiquadState{X1: 0.25, X2: -0.5, Y1: 0.125, Y2: 1}
	require.NoError(t, e.SetState(1, s))
	assert.Equal(t, s, e.State(1))
	assert.ErrorIs(t, e.SetState(0, BiquadState{X1: math.Inf(1)}), ErrNonFiniteState)

	e.Reset()
	assert.Equal(t, BiquadState{}, e.State(1))
}

func TestNewHighPerformance_Errors(t *testing.T) {
	_, err := NewHighPerformance[float64](0, Balanced.Config())
	assert.Error(t, err)
	_, err = NewHighPerformance[float64](44100, PerformanceConfig{})
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	for _, p := range Presets {
		assert.NoError(t, p.Config().Validate(), "preset %s", p)
		assert.NotEqual(t, "unknown", p.String())
	}
	assert.False(t, Minimal.Config().EnableSIMD)
	assert.Less(t, UltraLowLatency.Config().BlockSize, Balanced.Config().BlockSize)
}

func TestBenchmark(t *testing.T) {
	results, err := Benchmark[float64](lowpass(44100, 1000, 0.2), 44100, 8192)
	require.NoError(t, err)
	require.Len(t, results, len(Presets))
	for i, r := range results {
		assert.Equal(t, Presets[i], r.Preset)
		assert.Equal(t, int64(8192), r.Samples)
		assert.GreaterOrEqual(t, r.CPUUsage, 0.0)
	}
}

func TestStageAdapter(t *testing.T) {
	c := lowpass(44100, 900, 0.3)
	e := newEngine[float32](t, UltraLowLatency.Config())
	e.SetCoefficients(c)
	s := NewStageAdapter(e)

	ref := NewBiquadSection(c)
	in := testutil.Sine(440, 44100, 0.5, 500)
	want := append([]float64(nil), in...)
	ref.ProcessBlock(want)

	got := append([]float64(nil), in...)
	s.ProcessBlock(got)
	testutil.AssertSlicesInDelta(t, want, got, 1e-4)
	assert.Positive(t, s.GetMemoryUsage())
}
