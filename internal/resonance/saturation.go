// Package resonance models filter feedback, self-oscillation and output
// saturation with a silent instability watchdog.
package resonance

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Curve selects a saturation transfer function.
type Curve int

const (
	// Tanh is the hyperbolic tangent.
	Tanh Curve = iota
	// SoftClip is x/(1+|x|).
	SoftClip
	// Cubic is the polynomial 1.5x-0.5x^3 over the clipped input.
	Cubic
	// Arctan is 2/pi * atan(pi/2 * x).
	Arctan
	// Asymmetric drives the positive half harder than the negative half.
	Asymmetric
	// Tube uses different tanh knees per polarity.
	Tube
	// BlendedCubic mixes Cubic and Tanh equally.
	BlendedCubic
)

// Curves lists every saturation curve.
var Curves = []Curve{Tanh, SoftClip, Cubic, Arctan, Asymmetric, Tube, BlendedCubic}

var curveNames = map[Curve]string{
	Tanh:         "tanh",
	SoftClip:     "softclip",
	Cubic:        "cubic",
	Arctan:       "arctan",
	Asymmetric:   "asymmetric",
	Tube:         "tube",
	BlendedCubic: "blended-cubic",
}

func (c Curve) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Curve(%d)", int(c))
}

// ParseCurve resolves a curve name as printed by String.
func ParseCurve(s string) (Curve, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range curveNames {
		if n == name {
			return c, nil
		}
	}
	return Tanh, fmt.Errorf("unknown saturation curve %q", s)
}

// Saturate applies curve to x. Amount in [0, 1] raises the drive into the
// curve and the wet share of the result; amount 0 returns x unchanged.
func Saturate(curve Curve, x, amount float64) float64 {
	amount = mathutil.Clamp01(amount)
	if amount == 0 {
		return x
	}
	drive := 1 + amount*saturationDriveRange
	shaped := Shape(curve, x*drive)
	return x*(1-amount) + shaped*amount
}

// Shape evaluates the unit-drive transfer function of curve.
func Shape(curve Curve, x float64) float64 {
	switch curve {
	case SoftClip:
		return x / (1 + math.Abs(x))
	case Cubic:
		return cubic(x)
	case Arctan:
		return 2 / math.Pi * math.Atan(math.Pi/2*x)
	case Asymmetric:
		if x >= 0 {
			return math.Tanh(x * (1 + asymmetry))
		}
		return math.Tanh(x * (1 - asymmetry))
	case Tube:
		if x >= 0 {
			return math.Tanh(x*tubePositiveKnee) / tubePositiveKnee
		}
		return math.Tanh(x*tubeNegativeKnee) / tubeNegativeKnee
	case BlendedCubic:
		return 0.5*cubic(x) + 0.5*math.Tanh(x)
	default:
		return math.Tanh(x)
	}
}

func cubic(x float64) float64 {
	x = mathutil.Clamp(x, -1, 1)
	return 1.5*x - 0.5*x*x*x
}

// Limit passes |x| <= threshold unchanged and compresses the excess so the
// output never exceeds threshold*(1+overshoot).
func Limit(x, threshold float64) float64 {
	mag := math.Abs(x)
	if mag <= threshold {
		return x
	}
	headroom := threshold * limiterOvershoot
	out := threshold + headroom*math.Tanh((mag-threshold)/headroom)
	return math.Copysign(out, x)
}
