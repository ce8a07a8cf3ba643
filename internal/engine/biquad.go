// Package engine implements the per-sample filter topologies and the
// block-oriented biquad engine with its SIMD feed-forward path.
package engine

import (
	"errors"
	"math"

	"github.com/tphakala/go-audio-filter/internal/filter"
)

// ErrNonFiniteState is returned when restoring a state containing NaN or Inf.
var ErrNonFiniteState = errors.New("state contains NaN or Inf")

// BiquadState holds the Direct Form I delay registers.
type BiquadState struct {
	X1, X2 float64
	Y1, Y2 float64
}

// IsFinite reports whether every register is finite.
func (s BiquadState) IsFinite() bool {
	for _, v := range [4]float64{s.X1, s.X2, s.Y1, s.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BiquadSection is a single Direct Form I second-order section.
type BiquadSection struct {
	c filter.Coefficients
	s BiquadState
}

// NewBiquadSection creates a section with coefficients c.
func NewBiquadSection(c filter.Coefficients) *BiquadSection {
	return &BiquadSection{c: c}
}

// SetCoefficients replaces the coefficients. State is kept so that
// parameter changes do not click.
func (b *BiquadSection) SetCoefficients(c filter.Coefficients) {
	b.c = c
}

// Coefficients returns the active coefficients.
func (b *BiquadSection) Coefficients() filter.Coefficients {
	return b.c
}

// ProcessSample filters one sample. A non-finite result resets the section
// and yields 0.
func (b *BiquadSection) ProcessSample(x float64) float64 {
	s := &b.s
	y := b.c.B0*x + b.c.B1*s.X1 + b.c.B2*s.X2 - b.c.A1*s.Y1 - b.c.A2*s.Y2

	if math.IsNaN(y) || math.IsInf(y, 0) {
		b.Reset()
		return 0
	}

	s.X2, s.X1 = s.X1, x
	s.Y2, s.Y1 = s.Y1, y
	return y
}

// ProcessBlock filters buf in place.
func (b *BiquadSection) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = b.ProcessSample(x)
	}
}

// Reset zeroes the delay registers.
func (b *BiquadSection) Reset() {
	b.s = BiquadState{}
}

// State returns a copy of the delay registers.
func (b *BiquadSection) State() BiquadState {
	return b.s
}

// SetState restores saved delay registers.
func (b *BiquadSection) SetState(s BiquadState) error {
	if !s.IsFinite() {
		return ErrNonFiniteState
	}
	b.s = s
	return nil
}
