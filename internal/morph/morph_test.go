package morph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-filter/internal/filter"
)

func testFilterConfig() filter.Config {
	return filter.Config{SampleRate: 48000, Cutoff: 1200, Resonance: 0.3, GainDB: 6}
}

func assertCoeffsInDelta(t *testing.T, want, got filter.Coefficients, delta float64, msg string) {
	t.Helper()
	w, g := want.Terms(), got.Terms()
	for i := range w {
		assert.InDelta(t, w[i], g[i], delta, "%s: term %d", msg, i)
	}
}

// =============================================================================
// Shape
// =============================================================================

func TestShape_Endpoints(t *testing.T) {
	for _, s := range []float64{0, 0.1, 0.25, 0.49, 0.5, 0.75, 1} {
		assert.InDelta(t, 0, Shape(0, s), 1e-15, "shape %v at 0", s)
		assert.InDelta(t, 1, Shape(1, s), 1e-15, "shape %v at 1", s)
	}
}

func TestShape_Curves(t *testing.T) {
	assert.InDelta(t, 0.3, Shape(0.3, 0), 1e-15, "shape 0 is linear")
	assert.InDelta(t, 0.09, Shape(0.3, 0.5), 1e-15, "shape 0.5 is quadratic")
	assert.InDelta(t, 3*0.09-2*0.027, Shape(0.3, 1), 1e-15, "shape 1 is the S-curve")

	// Shape 0.25 blends x with x^1 by 0.5, which is still x.
	assert.InDelta(t, 0.3, Shape(0.3, 0.25), 1e-12)

	// Inputs outside [0, 1] are clamped.
	assert.InDelta(t, 1, Shape(2, 0.7), 1e-15)
	assert.InDelta(t, 0, Shape(-1, 0.7), 1e-15)
}

func TestShape_MonotonicInPosition(t *testing.T) {
	for _, s := range []float64{0, 0.2, 0.5, 0.8, 1} {
		prev := -1.0
		for i := 0; i <= 100; i++ {
			v := Shape(float64(i)/100, s)
			assert.GreaterOrEqual(t, v, prev, "shape %v not monotonic at %d", s, i)
			prev = v
		}
	}
}

// =============================================================================
// Blend and modes
// =============================================================================

func TestBlend_Segments(t *testing.T) {
	a := filter.Coefficients{B0: 0}
	b := filter.Coefficients{B0: 1}
	c := filter.Coefficients{B0: 3}
	points := []filter.Coefficients{a, b, c}

	assert.InDelta(t, 0, Blend(points, 0).B0, 1e-15)
	assert.InDelta(t, 0.5, Blend(points, 0.25).B0, 1e-15)
	assert.InDelta(t, 1, Blend(points, 0.5).B0, 1e-15)
	assert.InDelta(t, 2, Blend(points, 0.75).B0, 1e-15)
	assert.InDelta(t, 3, Blend(points, 1).B0, 1e-15)

	assert.Equal(t, filter.Identity(), Blend(nil, 0.5))
	assert.Equal(t, a, Blend([]filter.Coefficients{a}, 0.9))
}

// TestEngine_Endpoints verifies position 0 reproduces the first response
// and position 1 the last one for every mode.
func TestEngine_Endpoints(t *testing.T) {
	cfg := testFilterConfig()

	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			ecfg := DefaultConfig()
			ecfg.Mode = mode
			ecfg.Smoothing = false
			e := NewEngine(ecfg)

			points := mode.Points(cfg)
			require.GreaterOrEqual(t, len(points), 2)

			p := DefaultParameters()
			p.Position = 0
			assertCoeffsInDelta(t, points[0], e.Process(cfg, p), 1e-5, "position 0")

			p.Position = 1
			assertCoeffsInDelta(t, points[len(points)-1], e.Process(cfg, p), 1e-5, "position 1")
		})
	}
}

func TestEngine_AllpassBypassEndIsIdentity(t *testing.T) {
	ecfg := DefaultConfig()
	ecfg.Mode = AllpassBypass
	e := NewEngine(ecfg)

	p := DefaultParameters()
	p.Position = 1
	got := e.Process(testFilterConfig(), p)
	assertCoeffsInDelta(t, filter.Identity(), got, 1e-12, "bypass end")
	assert.True(t, filter.IsPassthrough(got))
}

func TestEngine_BypassAmount(t *testing.T) {
	ecfg := DefaultConfig()
	ecfg.Smoothing = false
	e := NewEngine(ecfg)

	p := DefaultParameters()
	p.BypassAmount = 1
	assertCoeffsInDelta(t, filter.Identity(), e.Process(testFilterConfig(), p), 1e-15, "full bypass")

	p.BypassAmount = 0.5
	lp := e.Target(testFilterConfig(), DefaultParameters())
	half := e.Process(testFilterConfig(), p)
	assert.InDelta(t, (lp.B0+1)/2, half.B0, 1e-12)
}

func TestEngine_StabilityCorrection(t *testing.T) {
	// Maximum resonance puts the poles close to the unit circle.
	cfg := filter.Config{SampleRate: 48000, Cutoff: 500, Resonance: 1}
	require.Greater(t, filter.PoleRadius(filter.Calculate(filter.Lowpass, cfg)), 0.98)

	ecfg := DefaultConfig()
	ecfg.Smoothing = false
	e := NewEngine(ecfg)

	for _, pos := range []float64{0, 0.3, 0.5, 0.8, 1} {
		p := DefaultParameters()
		p.Position = pos
		c := e.Process(cfg, p)
		assert.LessOrEqual(t, filter.PoleRadius(c), 0.98+1e-9, "position %v", pos)
	}

	p := DefaultParameters()
	p.StabilityFactor = 0.5
	assert.LessOrEqual(t, filter.PoleRadius(e.Process(cfg, p)), 0.49+1e-9)

	ecfg.StabilityCorrection = false
	e.SetConfig(ecfg)
	assert.Greater(t, filter.PoleRadius(e.Process(cfg, DefaultParameters())), 0.98)
}

// =============================================================================
// Smoothing
// =============================================================================

func TestSmoothingFactor(t *testing.T) {
	assert.InDelta(t, 1-math.Exp(-1/(0.01*1000)), SmoothingFactor(0.01, 1000), 1e-15)
	assert.Less(t, SmoothingFactor(1, 1000), SmoothingFactor(0.001, 1000))
}

func TestEngine_SmoothingConverges(t *testing.T) {
	cfg := testFilterConfig()
	e := NewEngine(DefaultConfig())

	start := e.Process(cfg, DefaultParameters())
	assert.Equal(t, e.Target(cfg, DefaultParameters()), start, "first call snaps to target")

	p := DefaultParameters()
	p.Position = 1
	target := e.Target(cfg, p)

	first := e.Process(cfg, p)
	assert.NotEqual(t, target, first, "smoothed output lags the target")
	assert.Greater(t, math.Abs(first.B0-start.B0), 0.0)

	for range 2000 {
		e.Process(cfg, p)
	}
	assertCoeffsInDelta(t, target, e.Current(), 1e-9, "converged")

	e.Reset()
	assert.Equal(t, filter.Identity(), e.Current())
	assert.Equal(t, start, e.Process(cfg, DefaultParameters()), "reset snaps again")
}

func TestEngine_SmoothedOutputStaysStable(t *testing.T) {
	cfg := filter.Config{SampleRate: 44100, Cutoff: 3000, Resonance: 0.9}
	e := NewEngine(DefaultConfig())

	for i := range 400 {
		p := DefaultParameters()
		p.Position = math.Abs(math.Sin(float64(i) * 0.05))
		p.Shape = float64(i%10) / 10
		c := e.Process(cfg, p)
		require.True(t, filter.IsStable(c), "step %d unstable: %+v", i, c)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("wobble")
	assert.Error(t, err)
	assert.Equal(t, "Mode(42)", Mode(42).String())
}
