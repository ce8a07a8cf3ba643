// Package mathutil provides numeric helpers shared by the filter packages.
package mathutil

import (
	"math"

	approx "github.com/cwbudde/algo-approx"
)

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ClampCutoff limits a cutoff frequency to the open range (1 Hz, 0.99*Nyquist).
// Any input, including NaN and values at or beyond Nyquist, yields a
// frequency that is safe to warp.
func ClampCutoff(freq, sampleRate float64) float64 {
	nyquist := sampleRate * nyquistFraction
	return Clamp(freq, minCutoffHz, nyquist*maxNyquistFraction)
}

// WarpFrequency returns the bilinear pre-warped digital frequency
// 2*tan(pi*f/fs) for a cutoff that has already been clamped.
func WarpFrequency(freq, sampleRate float64) float64 {
	return warpScale * math.Tan(math.Pi*freq/sampleRate)
}

// ResonanceToQ maps a resonance in [0, 1] onto the musical exponential
// Q curve 0.5*(40/0.5)^(r^2).
func ResonanceToQ(resonance float64) float64 {
	r := Clamp01(resonance)
	return minQ * math.Pow(maxQ/minQ, r*r)
}

// SemitoneRatio returns 2^(semitones/12).
func SemitoneRatio(semitones float64) float64 {
	return math.Exp2(semitones / semitonesPerOctave)
}

// NoteToFrequency converts a MIDI note number to Hz (A4 = note 69 = 440 Hz).
func NoteToFrequency(note float64) float64 {
	return referencePitchHz * SemitoneRatio(note-referenceNote)
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/dbAmplitudeDivisor)
}

// GainToDB converts a linear amplitude factor to decibels.
// Non-positive gains map to MinDB.
func GainToDB(gain float64) float64 {
	if gain <= 0 || math.IsNaN(gain) {
		return MinDB
	}
	return dbAmplitudeDivisor * math.Log10(gain)
}

// FastExp approximates e^x for control-rate curves that tolerate
// single-precision error.
func FastExp(x float64) float64 {
	if x < fastExpMin {
		return 0
	}
	return float64(approx.FastExp(float32(x)))
}

// FlushDenormal returns 0 for values small enough to hit denormal
// arithmetic in feedback paths.
func FlushDenormal(v float64) float64 {
	if v > -denormalThreshold && v < denormalThreshold {
		return 0
	}
	return v
}
