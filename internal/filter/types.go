// Package filter implements biquad coefficient design and analysis.
//
// Coefficients are produced from RBJ cookbook formulas, normalized so that
// a0 == 1, bounded, and guaranteed stable. The analysis side evaluates the
// transfer function at arbitrary frequencies and checks pole placement.
package filter

import (
	"fmt"
	"strings"
)

// Type enumerates the supported second-order responses.
type Type int

const (
	// Lowpass passes content below the cutoff.
	Lowpass Type = iota
	// Highpass passes content above the cutoff.
	Highpass
	// Bandpass passes a band around the cutoff (0 dB peak gain).
	Bandpass
	// Bandstop rejects a band around the cutoff (notch).
	Bandstop
	// LowShelf boosts or cuts content below the cutoff by GainDB.
	LowShelf
	// HighShelf boosts or cuts content above the cutoff by GainDB.
	HighShelf
	// Peak boosts or cuts a band around the cutoff by GainDB.
	Peak
	// Allpass has unity magnitude and a frequency-dependent phase.
	Allpass
)

// Types lists every supported response in declaration order.
var Types = []Type{Lowpass, Highpass, Bandpass, Bandstop, LowShelf, HighShelf, Peak, Allpass}

var typeNames = map[Type]string{
	Lowpass:   "lowpass",
	Highpass:  "highpass",
	Bandpass:  "bandpass",
	Bandstop:  "bandstop",
	LowShelf:  "lowshelf",
	HighShelf: "highshelf",
	Peak:      "peak",
	Allpass:   "allpass",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a response name. "notch" is accepted for Bandstop.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "notch" {
		return Bandstop, nil
	}
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return Lowpass, fmt.Errorf("unknown filter type %q", s)
}

// Coefficients holds one second-order section with a0 normalized to 1:
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity returns the passthrough section.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Lerp blends every term of a and b by t without clamping t.
func Lerp(a, b Coefficients, t float64) Coefficients {
	return Coefficients{
		B0: a.B0 + (b.B0-a.B0)*t,
		B1: a.B1 + (b.B1-a.B1)*t,
		B2: a.B2 + (b.B2-a.B2)*t,
		A1: a.A1 + (b.A1-a.A1)*t,
		A2: a.A2 + (b.A2-a.A2)*t,
	}
}

// Raw holds the six unnormalized terms of a design formula.
type Raw struct {
	B0, B1, B2 float64
	A0, A1, A2 float64
}

// Normalize divides every term by A0 so the result has A0 == 1.
// A zero or non-finite A0 yields the identity section.
func (r Raw) Normalize() Raw {
	if r.A0 == 0 || !isFinite(r.A0) {
		return Raw{B0: 1, A0: 1}
	}
	inv := 1 / r.A0
	return Raw{
		B0: r.B0 * inv,
		B1: r.B1 * inv,
		B2: r.B2 * inv,
		A0: 1,
		A1: r.A1 * inv,
		A2: r.A2 * inv,
	}
}

// Coefficients normalizes r and drops the implicit A0.
func (r Raw) Coefficients() Coefficients {
	n := r.Normalize()
	return Coefficients{B0: n.B0, B1: n.B1, B2: n.B2, A1: n.A1, A2: n.A2}
}

// Config is the immutable input of a coefficient calculation.
type Config struct {
	// SampleRate in Hz.
	SampleRate float64

	// Cutoff is the corner or center frequency in Hz.
	Cutoff float64

	// Resonance in [0, 1] maps to Q via the exponential musical curve.
	Resonance float64

	// GainDB is used by the shelf and peak responses.
	GainDB float64

	// Bandwidth in octaves. When positive it replaces the Q derived from
	// Resonance for bandpass, bandstop and peak responses.
	Bandwidth float64

	// KeyTracking and MorphAmount are carried for callers that derive the
	// cutoff or blend position from them; Calculate does not read them.
	KeyTracking float64
	MorphAmount float64
}

// Response is one point of a frequency response.
type Response struct {
	Frequency float64 // Hz
	Magnitude float64 // linear
	Phase     float64 // radians in [-pi, pi]
}
