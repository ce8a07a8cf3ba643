// Package morph blends biquad coefficient sets along a morph axis.
//
// A Mode names an ordered sequence of responses. The morph position walks
// through the sequence segment by segment; the blended section is then
// stability corrected, optionally mixed with the identity section and
// optionally smoothed over time.
package morph

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-filter/internal/filter"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Mode selects the response sequence traversed by the morph position.
type Mode int

const (
	// LowpassBandpassHighpass morphs lowpass -> bandpass -> highpass.
	LowpassBandpassHighpass Mode = iota
	// LowpassHighpass morphs lowpass -> highpass.
	LowpassHighpass
	// BandpassNotch morphs bandpass -> bandstop.
	BandpassNotch
	// ShelfPeakShelf morphs low shelf -> peak -> high shelf.
	ShelfPeakShelf
	// AllpassBypass morphs allpass -> identity.
	AllpassBypass
)

// Modes lists every morph mode.
var Modes = []Mode{LowpassBandpassHighpass, LowpassHighpass, BandpassNotch, ShelfPeakShelf, AllpassBypass}

var modeNames = map[Mode]string{
	LowpassBandpassHighpass: "lp-bp-hp",
	LowpassHighpass:         "lp-hp",
	BandpassNotch:           "bp-notch",
	ShelfPeakShelf:          "shelf-peak-shelf",
	AllpassBypass:           "allpass-bypass",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return LowpassBandpassHighpass, fmt.Errorf("unknown morph mode %q", s)
}

// Points returns the coefficient sets the mode passes through, in order.
// The bypass end of AllpassBypass is the identity section.
func (m Mode) Points(cfg filter.Config) []filter.Coefficients {
	switch m {
	case LowpassHighpass:
		return []filter.Coefficients{
			filter.Calculate(filter.Lowpass, cfg),
			filter.Calculate(filter.Highpass, cfg),
		}
	case BandpassNotch:
		return []filter.Coefficients{
			filter.Calculate(filter.Bandpass, cfg),
			filter.Calculate(filter.Bandstop, cfg),
		}
	case ShelfPeakShelf:
		return []filter.Coefficients{
			filter.Calculate(filter.LowShelf, cfg),
			filter.Calculate(filter.Peak, cfg),
			filter.Calculate(filter.HighShelf, cfg),
		}
	case AllpassBypass:
		return []filter.Coefficients{
			filter.Calculate(filter.Allpass, cfg),
			filter.Identity(),
		}
	default:
		return []filter.Coefficients{
			filter.Calculate(filter.Lowpass, cfg),
			filter.Calculate(filter.Bandpass, cfg),
			filter.Calculate(filter.Highpass, cfg),
		}
	}
}

// Parameters are the control-rate morph inputs.
type Parameters struct {
	// Position on the morph axis in [0, 1].
	Position float64

	// Shape in [0, 1] bends the position curve, see Shape.
	Shape float64

	// StabilityFactor scales the allowed pole radius (0.98 * factor).
	StabilityFactor float64

	// BypassAmount in [0, 1] mixes the result with the identity section.
	BypassAmount float64
}

// DefaultParameters returns a linear morph at position 0 with full
// stability headroom.
func DefaultParameters() Parameters {
	return Parameters{StabilityFactor: 1}
}

// Shape bends a morph position x in [0, 1].
//
// For s < 0.5 it blends x with x^(0.5+2s) by 2s. For s >= 0.5 it blends x^2
// with the cubic S-curve 3x^2-2x^3 by 2(s-0.5). Both ends stay fixed:
// Shape(0, s) == 0 and Shape(1, s) == 1.
func Shape(x, s float64) float64 {
	x = mathutil.Clamp01(x)
	s = mathutil.Clamp01(s)

	if s < shapeSplit {
		blend := 2 * s
		curved := math.Pow(x, shapeExponentBase+2*s)
		return x*(1-blend) + curved*blend
	}

	blend := 2 * (s - shapeSplit)
	square := x * x
	sCurve := 3*square - 2*square*x
	return square*(1-blend) + sCurve*blend
}

// Blend walks points by the position x in [0, 1]. With three points the
// first half of the axis covers the first segment and the second half the
// second segment, each renormalized to [0, 1].
func Blend(points []filter.Coefficients, x float64) filter.Coefficients {
	switch len(points) {
	case 0:
		return filter.Identity()
	case 1:
		return points[0]
	}

	x = mathutil.Clamp01(x)
	segments := len(points) - 1
	pos := x * float64(segments)
	idx := int(pos)
	if idx >= segments {
		idx = segments - 1
	}
	return filter.Lerp(points[idx], points[idx+1], pos-float64(idx))
}

// Correct pulls the poles of c back inside 0.98*stabilityFactor when they
// exceed it.
func Correct(c filter.Coefficients, stabilityFactor float64) filter.Coefficients {
	bound := stabilityRadius * mathutil.Clamp(stabilityFactor, minStabilityFactor, maxStabilityFactor)
	return filter.StabilizeCoefficients(c, bound)
}

// MixBypass blends c with the identity section by amount in [0, 1].
func MixBypass(c filter.Coefficients, amount float64) filter.Coefficients {
	amount = mathutil.Clamp01(amount)
	if amount == 0 {
		return c
	}
	return filter.Lerp(c, filter.Identity(), amount)
}
