package filter

import (
	"math"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// IsStable reports whether both poles of 1 + A1 z^-1 + A2 z^-2 lie strictly
// inside the unit circle.
func IsStable(c Coefficients) bool {
	if !c.IsFinite() {
		return false
	}
	disc := c.A1*c.A1 - 4*c.A2
	if disc >= 0 {
		sq := math.Sqrt(disc)
		r1 := (-c.A1 + sq) / 2
		r2 := (-c.A1 - sq) / 2
		return math.Abs(r1) < 1 && math.Abs(r2) < 1
	}
	return math.Sqrt(c.A2) < 1
}

// PoleRadius returns the largest pole magnitude of the section.
func PoleRadius(c Coefficients) float64 {
	disc := c.A1*c.A1 - 4*c.A2
	if disc >= 0 {
		sq := math.Sqrt(disc)
		return math.Max(math.Abs((-c.A1+sq)/2), math.Abs((-c.A1-sq)/2))
	}
	// Complex conjugate pair: |p|^2 = A2.
	return math.Sqrt(c.A2)
}

// StabilizeCoefficients scales the poles so their radius does not exceed
// maxRadius. Scaling every pole by s multiplies A1 by s and A2 by s^2,
// which keeps the pole angles.
func StabilizeCoefficients(c Coefficients, maxRadius float64) Coefficients {
	if !c.IsFinite() {
		return Identity()
	}
	r := PoleRadius(c)
	if r <= maxRadius || r == 0 {
		return c
	}
	s := maxRadius / r
	c.A1 *= s
	c.A2 *= s * s
	return c
}

// ClampCoefficients bounds every term to [-100, 100]. NaN terms become 0.
func ClampCoefficients(c Coefficients) Coefficients {
	return Coefficients{
		B0: clampTerm(c.B0),
		B1: clampTerm(c.B1),
		B2: clampTerm(c.B2),
		A1: clampTerm(c.A1),
		A2: clampTerm(c.A2),
	}
}

// IsPassthrough reports whether c equals the identity section within 1e-6.
func IsPassthrough(c Coefficients) bool {
	return math.Abs(c.B0-1) < passthroughTolerance &&
		math.Abs(c.B1) < passthroughTolerance &&
		math.Abs(c.B2) < passthroughTolerance &&
		math.Abs(c.A1) < passthroughTolerance &&
		math.Abs(c.A2) < passthroughTolerance
}

// IsFinite reports whether every term is finite.
func (c Coefficients) IsFinite() bool {
	return isFinite(c.B0) && isFinite(c.B1) && isFinite(c.B2) &&
		isFinite(c.A1) && isFinite(c.A2)
}

// Terms returns the five stored terms in B0, B1, B2, A1, A2 order.
func (c Coefficients) Terms() [5]float64 {
	return [5]float64{c.B0, c.B1, c.B2, c.A1, c.A2}
}

// FromTerms is the inverse of Terms.
func FromTerms(t [5]float64) Coefficients {
	return Coefficients{B0: t[0], B1: t[1], B2: t[2], A1: t[3], A2: t[4]}
}

func clampTerm(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return mathutil.Clamp(v, -coefficientLimit, coefficientLimit)
}
