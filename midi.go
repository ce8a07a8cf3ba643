package audiofilter

import (
	"fmt"

	"github.com/tphakala/go-audio-filter/internal/mathutil"
	"github.com/tphakala/go-audio-filter/internal/pipeline"
)

// Queue ids of note events. They follow the parameter ids.
const (
	eventNoteOn = int(numParams) + iota
	eventNoteOff
	eventPitchBend
)

// NoteOn makes note the tracked note. Note and velocity are clamped to
// 0-127. Call from the control goroutine.
func (f *Filter) NoteOn(note, velocity int) error {
	note = clampMIDI(note)
	velocity = clampMIDI(velocity)
	return f.push(pipeline.ParamUpdate{
		ID:    eventNoteOn,
		Value: float64(note<<midiDataBits | velocity),
	})
}

// NoteOff releases note if it is the tracked note.
func (f *Filter) NoteOff(note int) error {
	return f.push(pipeline.ParamUpdate{ID: eventNoteOff, Value: float64(clampMIDI(note))})
}

// PitchBend sets the bend in [-1, 1], two semitones at full scale.
func (f *Filter) PitchBend(amount float64) error {
	if !mathutil.IsFinite(amount) {
		return fmt.Errorf("%w: pitch bend is not finite", ErrInvalidParameter)
	}
	return f.push(pipeline.ParamUpdate{ID: eventPitchBend, Value: mathutil.Clamp(amount, -1, 1)})
}

// HandleMIDI decodes one channel voice message. Note on, note off, pitch
// bend and the modulation wheel are handled on any channel; note on with
// velocity 0 is a note off. Other messages are ignored.
func (f *Filter) HandleMIDI(status, data1, data2 byte) error {
	d1 := int(data1) & maxMIDIValue
	d2 := int(data2) & maxMIDIValue

	switch status & midiStatusMask {
	case midiNoteOn:
		if d2 == 0 {
			return f.NoteOff(d1)
		}
		return f.NoteOn(d1, d2)
	case midiNoteOff:
		return f.NoteOff(d1)
	case midiPitchBend:
		raw := float64(d2<<midiDataBits | d1)
		return f.PitchBend((raw - midiPitchBendZero) / midiPitchBendZero)
	case midiControlChange:
		if d1 == midiModWheel {
			return f.SetParameter(ParamModulation, float64(d2)/maxMIDIValue)
		}
	}
	return nil
}

// applyEvent runs a note event on the audio thread.
func (f *Filter) applyEvent(u pipeline.ParamUpdate) {
	switch u.ID {
	case eventNoteOn:
		v := int(u.Value)
		f.tracker.NoteOn(v>>midiDataBits, v&maxMIDIValue)
	case eventNoteOff:
		f.tracker.NoteOff(int(u.Value))
	case eventPitchBend:
		f.tracker.PitchBend(u.Value)
	}
}

func clampMIDI(v int) int {
	return max(0, min(v, maxMIDIValue))
}
