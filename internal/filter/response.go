package filter

import (
	"math"
)

// MagnitudeResponse returns |H(e^jw)| at freq for sample rate fs.
func MagnitudeResponse(c Coefficients, freq, fs float64) float64 {
	nr, ni, dr, di := evaluate(c, freq, fs)
	den := math.Hypot(dr, di)
	if den == 0 {
		return math.Inf(1)
	}
	return math.Hypot(nr, ni) / den
}

// PhaseResponse returns arg H(e^jw) in radians, wrapped to [-pi, pi].
func PhaseResponse(c Coefficients, freq, fs float64) float64 {
	nr, ni, dr, di := evaluate(c, freq, fs)
	return wrapPhase(math.Atan2(ni, nr) - math.Atan2(di, dr))
}

// MagnitudeDB returns the magnitude response in decibels.
func MagnitudeDB(c Coefficients, freq, fs float64) float64 {
	return 20 * math.Log10(MagnitudeResponse(c, freq, fs))
}

// Sweep evaluates magnitude and phase at every frequency in freqs.
func Sweep(c Coefficients, freqs []float64, fs float64) []Response {
	out := make([]Response, len(freqs))
	for i, f := range freqs {
		out[i] = Response{
			Frequency: f,
			Magnitude: MagnitudeResponse(c, f, fs),
			Phase:     PhaseResponse(c, f, fs),
		}
	}
	return out
}

// LogFrequencies returns n logarithmically spaced frequencies from lo to hi
// inclusive.
func LogFrequencies(lo, hi float64, n int) []float64 {
	if n <= 0 || lo <= 0 || hi <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	ratio := math.Log(hi / lo)
	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}
	return out
}

// evaluate expands numerator and denominator at z = e^{jw} into real and
// imaginary parts.
func evaluate(c Coefficients, freq, fs float64) (nr, ni, dr, di float64) {
	w := 2 * math.Pi * freq / sampleRateOrDefault(fs)
	cos1, sin1 := math.Cos(w), math.Sin(w)
	cos2, sin2 := math.Cos(2*w), math.Sin(2*w)

	nr = c.B0 + c.B1*cos1 + c.B2*cos2
	ni = -(c.B1*sin1 + c.B2*sin2)
	dr = 1 + c.A1*cos1 + c.A2*cos2
	di = -(c.A1*sin1 + c.A2*sin2)
	return nr, ni, dr, di
}

func wrapPhase(p float64) float64 {
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	for p < -math.Pi {
		p += 2 * math.Pi
	}
	return p
}
