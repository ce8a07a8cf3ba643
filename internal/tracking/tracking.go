// Package tracking follows the played note with the filter cutoff.
//
// The engine turns note, velocity and pitch bend into a cutoff multiplier
// shaped by one of four curves, scaled by a percentage amount and an
// optional velocity sensitivity. With portamento enabled the tracked
// frequency glides in the log domain toward each new target.
package tracking

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
)

// Curve reshapes the note-to-ratio mapping.
type Curve int

const (
	// Linear tracks one octave of cutoff per octave of pitch.
	Linear Curve = iota
	// Exponential exaggerates tracking away from the reference note.
	Exponential
	// Logarithmic compresses tracking away from the reference note.
	Logarithmic
	// SCurve saturates tracking with tanh.
	SCurve
)

// Curves lists every tracking curve.
var Curves = []Curve{Linear, Exponential, Logarithmic, SCurve}

var curveNames = map[Curve]string{
	Linear:      "linear",
	Exponential: "exponential",
	Logarithmic: "logarithmic",
	SCurve:      "s-curve",
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
	return Linear, fmt.Errorf("unknown tracking curve %q", s)
}

// Ratio maps a semitone offset from the reference note to a frequency
// multiplier under curve.
func Ratio(curve Curve, offset float64) float64 {
	ratio := mathutil.SemitoneRatio(offset)

	switch curve {
	case Exponential:
		norm := offset / exponentialSpan
		return ratio * (1 + norm*math.Abs(norm)*exponentialWeight)
	case Logarithmic:
		norm := offset / exponentialSpan
		sign := 1.0
		if norm < 0 {
			sign = -1
		}
		return ratio * (1 + sign*math.Log1p(math.Abs(norm))*logarithmicWeight)
	case SCurve:
		return ratio * (1 + math.Tanh(2*offset/sCurveSpan)*sCurveWeight)
	default:
		return ratio
	}
}

// NoteToFrequency returns the equal-tempered frequency of a MIDI note with
// A4 (note 69) at 440 Hz.
func NoteToFrequency(note int) float64 {
	return mathutil.NoteToFrequency(float64(note))
}
