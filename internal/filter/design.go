package filter

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Calculate computes normalized, bounded and stable coefficients for the
// given response. It never fails: out-of-range inputs are clamped before
// any trigonometry runs.
func Calculate(t Type, cfg Config) Coefficients {
	c := ClampCoefficients(Design(t, cfg).Coefficients())
	if !IsStable(c) {
		c = StabilizeCoefficients(c, maxStableRadius)
	}
	return c
}

// CalculateMorphed computes both responses and blends all terms linearly
// by t clamped to [0, 1].
func CalculateMorphed(a, b Type, t float64, cfg Config) Coefficients {
	return Lerp(Calculate(a, cfg), Calculate(b, cfg), mathutil.Clamp01(t))
}

// WarpedOmega returns the pre-warped digital frequency 2*tan(pi*f/fs) of the
// clamped cutoff in cfg.
func WarpedOmega(cfg Config) float64 {
	fs := sampleRateOrDefault(cfg.SampleRate)
	return mathutil.WarpFrequency(mathutil.ClampCutoff(cfg.Cutoff, fs), fs)
}

// Q returns the quality factor derived from cfg.Resonance.
func Q(cfg Config) float64 {
	return mathutil.ResonanceToQ(cfg.Resonance)
}

// Design returns the raw, unnormalized RBJ terms for the response.
func Design(t Type, cfg Config) Raw {
	// K = tan(w0/2); cos and sin of w0 follow from the warped frequency.
	k := WarpedOmega(cfg) / 2
	k2 := k * k
	cw := (1 - k2) / (1 + k2)
	sw := 2 * k / (1 + k2)

	alpha := sw / (2 * Q(cfg))
	if cfg.Bandwidth > 0 && usesBandwidth(t) {
		w0 := 2 * math.Atan(k)
		alpha = sw * math.Sinh(bandwidthLnFactor*cfg.Bandwidth*w0/sw)
	}

	switch t {
	case Lowpass:
		return lowpassRaw(cw, alpha)
	case Highpass:
		return Raw{
			B0: (1 + cw) / 2,
			B1: -(1 + cw),
			B2: (1 + cw) / 2,
			A0: 1 + alpha,
			A1: -2 * cw,
			A2: 1 - alpha,
		}
	case Bandpass:
		return Raw{
			B0: alpha,
			B1: 0,
			B2: -alpha,
			A0: 1 + alpha,
			A1: -2 * cw,
			A2: 1 - alpha,
		}
	case Bandstop:
		return Raw{
			B0: 1,
			B1: -2 * cw,
			B2: 1,
			A0: 1 + alpha,
			A1: -2 * cw,
			A2: 1 - alpha,
		}
	case Peak:
		a := shelfAmplitude(cfg.GainDB)
		return Raw{
			B0: 1 + alpha*a,
			B1: -2 * cw,
			B2: 1 - alpha*a,
			A0: 1 + alpha/a,
			A1: -2 * cw,
			A2: 1 - alpha/a,
		}
	case LowShelf:
		a := shelfAmplitude(cfg.GainDB)
		beta := 2 * math.Sqrt(a) * alpha
		return Raw{
			B0: a * ((a + 1) - (a-1)*cw + beta),
			B1: 2 * a * ((a - 1) - (a+1)*cw),
			B2: a * ((a + 1) - (a-1)*cw - beta),
			A0: (a + 1) + (a-1)*cw + beta,
			A1: -2 * ((a - 1) + (a+1)*cw),
			A2: (a + 1) + (a-1)*cw - beta,
		}
	case HighShelf:
		a := shelfAmplitude(cfg.GainDB)
		beta := 2 * math.Sqrt(a) * alpha
		return Raw{
			B0: a * ((a + 1) + (a-1)*cw + beta),
			B1: -2 * a * ((a - 1) + (a+1)*cw),
			B2: a * ((a + 1) + (a-1)*cw - beta),
			A0: (a + 1) - (a-1)*cw + beta,
			A1: 2 * ((a - 1) - (a+1)*cw),
			A2: (a + 1) - (a-1)*cw - beta,
		}
	case Allpass:
		return Raw{
			B0: 1 - alpha,
			B1: -2 * cw,
			B2: 1 + alpha,
			A0: 1 + alpha,
			A1: -2 * cw,
			A2: 1 - alpha,
		}
	default:
		return Raw{B0: 1, A0: 1}
	}
}

// DesignLowpassQ designs a lowpass with an explicit Q instead of the
// resonance curve. Used for anti-alias filtering around oversampling.
func DesignLowpassQ(freq, q, sampleRate float64) Coefficients {
	fs := sampleRateOrDefault(sampleRate)
	if q <= 0 || !isFinite(q) {
		q = butterworthQ
	}
	w0 := 2 * math.Pi * mathutil.ClampCutoff(freq, fs) / fs
	return lowpassRaw(math.Cos(w0), math.Sin(w0)/(2*q)).Coefficients()
}

func lowpassRaw(cw, alpha float64) Raw {
	return Raw{
		B0: (1 - cw) / 2,
		B1: 1 - cw,
		B2: (1 - cw) / 2,
		A0: 1 + alpha,
		A1: -2 * cw,
		A2: 1 - alpha,
	}
}

func usesBandwidth(t Type) bool {
	return t == Bandpass || t == Bandstop || t == Peak
}

func shelfAmplitude(gainDB float64) float64 {
	if !isFinite(gainDB) {
		return 1
	}
	return math.Pow(10, gainDB/shelfGainDivisor)
}

func sampleRateOrDefault(fs float64) float64 {
	if fs <= 0 || !isFinite(fs) {
		return defaultSampleRate
	}
	return fs
}

func isFinite(v float64) bool {
	return mathutil.IsFinite(v)
}
