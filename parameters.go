package audiofilter

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/tphakala/go-audio-filter/internal/engine"
	"github.com/tphakala/go-audio-filter/internal/mathutil"
	"github.com/tphakala/go-audio-filter/internal/pipeline"
)

// ParamID identifies a control parameter.
type ParamID int

const (
	// ParamCutoff is the base cutoff in Hz, 20-20000.
	ParamCutoff ParamID = iota
	// ParamResonance is the resonance, 0-1.
	ParamResonance
	// ParamDrive is the input drive, 0-10.
	ParamDrive
	// ParamMorph is the morph position, 0-1.
	ParamMorph
	// ParamMorphShape bends the morph position curve, 0-1.
	ParamMorphShape
	// ParamTracking is the keyboard tracking amount in percent, -100 to 100.
	ParamTracking
	// ParamGain is the shelf and peak gain in dB, -24 to 24.
	ParamGain
	// ParamModulation offsets the resonance stage at half weight, -1 to 1.
	ParamModulation
	// ParamMorphBypass mixes the morphed biquad with a pass-through, 0-1.
	ParamMorphBypass

	numParams
)

// ParamSpec describes the range and default of a parameter.
type ParamSpec struct {
	ID      ParamID
	Name    string
	Min     float64
	Max     float64
	Default float64
}

var paramSpecs = [numParams]ParamSpec{
	{ParamCutoff, "cutoff", engine.MinCutoff, engine.MaxCutoff, defaultCutoff},
	{ParamResonance, "resonance", 0, 1, 0},
	{ParamDrive, "drive", 0, engine.MaxDrive, defaultDrive},
	{ParamMorph, "morph", 0, 1, 0},
	{ParamMorphShape, "morph_shape", 0, 1, 0},
	{ParamTracking, "tracking", -maxTrack, maxTrack, 0},
	{ParamGain, "gain", -maxGainDB, maxGainDB, 0},
	{ParamModulation, "modulation", -1, 1, 0},
	{ParamMorphBypass, "morph_bypass", 0, 1, 0},
}

// Params lists every parameter in id order.
func Params() []ParamSpec {
	return slices.Clone(paramSpecs[:])
}

func (id ParamID) String() string {
	if id >= 0 && id < numParams {
		return paramSpecs[id].Name
	}
	return fmt.Sprintf("ParamID(%d)", int(id))
}

// ParseParamID resolves a parameter name.
func ParseParamID(name string) (ParamID, error) {
	for _, s := range paramSpecs {
		if s.Name == name {
			return s.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
}

// Clamp limits v to the parameter range.
func (s ParamSpec) Clamp(v float64) float64 {
	return mathutil.Clamp(v, s.Min, s.Max)
}

func defaultParams() [numParams]float64 {
	var p [numParams]float64
	for i, s := range paramSpecs {
		p[i] = s.Default
	}
	return p
}

// ParameterError describes one rejected parameter value.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidParameter.
func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ErrorHandler receives parameter errors found by ValidateParameters.
type ErrorHandler func(*ParameterError)

// ValidateParameters checks a parameter dictionary without applying it.
// Each problem is passed to handler, when non-nil, in name order. The
// returned error joins every *ParameterError found.
//
// Out-of-range values are reported here even though SetParameter clamps
// them silently.
func ValidateParameters(params map[string]float64, handler ErrorHandler) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if perr := validateParameter(name, params[name]); perr != nil {
			if handler != nil {
				handler(perr)
			}
			errs = append(errs, perr)
		}
	}
	return errors.Join(errs...)
}

func validateParameter(name string, v float64) *ParameterError {
	id, err := ParseParamID(name)
	if err != nil {
		return &ParameterError{Name: name, Value: v, Reason: "unknown parameter"}
	}
	if !mathutil.IsFinite(v) {
		return &ParameterError{Name: name, Value: v, Reason: "value is not finite"}
	}
	s := paramSpecs[id]
	if v < s.Min || v > s.Max {
		return &ParameterError{
			Name:   name,
			Value:  v,
			Reason: fmt.Sprintf("outside range [%v, %v]", s.Min, s.Max),
		}
	}
	return nil
}

// SetParameter clamps v to the range of id and queues it for the audio
// thread. The change takes effect at the start of the next Process call.
// Call from a single control goroutine.
func (f *Filter) SetParameter(id ParamID, v float64) error {
	if id < 0 || id >= numParams {
		return fmt.Errorf("%w: unknown id %d", ErrInvalidParameter, int(id))
	}
	if !mathutil.IsFinite(v) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, id)
	}

	v = paramSpecs[id].Clamp(v)
	f.requested[id] = v
	return f.push(pipeline.ParamUpdate{ID: int(id), Value: v})
}

// Parameter returns the last value set for id on the control side.
func (f *Filter) Parameter(id ParamID) float64 {
	if id < 0 || id >= numParams {
		return 0
	}
	return f.requested[id]
}

// Parameters returns every parameter keyed by name, suitable for preset
// storage.
func (f *Filter) Parameters() map[string]float64 {
	m := make(map[string]float64, numParams)
	for i, s := range paramSpecs {
		m[s.Name] = f.requested[i]
	}
	return m
}

// LoadParameters sets every known parameter in params. Names are applied
// in sorted order. Unknown names and non-finite values are skipped and
// reported in the returned error.
func (f *Filter) LoadParameters(params map[string]float64) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(params)) {
		id, err := ParseParamID(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := f.SetParameter(id, params[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Filter) push(u pipeline.ParamUpdate) error {
	if !f.queue.Push(u) {
		return ErrQueueFull
	}
	return nil
}
