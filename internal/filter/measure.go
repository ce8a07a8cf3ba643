package filter

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ImpulseResponse runs a unit impulse through the section with zero
// initial state and returns n output samples.
func ImpulseResponse(c Coefficients, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	var x1, x2, y1, y2 float64
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}
		y := c.B0*x + c.B1*x1 + c.B2*x2 - c.A1*y1 - c.A2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = y
	}
	return out
}

// MeasureResponse transforms a measured impulse response into magnitude and
// phase per FFT bin. It works for any processor, including the nonlinear
// topologies whose analytic response is only an approximation.
func MeasureResponse(impulse []float64, sampleRate float64) []Response {
	n := len(impulse)
	if n < minMeasureLength {
		return nil
	}
	fs := sampleRateOrDefault(sampleRate)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, impulse)

	out := make([]Response, len(coeffs))
	for k, v := range coeffs {
		out[k] = Response{
			Frequency: fft.Freq(k) * fs,
			Magnitude: cmplx.Abs(v),
			Phase:     cmplx.Phase(v),
		}
	}
	return out
}
