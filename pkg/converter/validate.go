package converter

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// maxTrack is the highest addressable track index: the track count field in
// the file header is 16 bits.
const maxTrack = 0xFFFE

// Model error kinds. The encode path aggregates every violation it finds
// into a SchemaValidationError; errors.Is sees these kinds through it.
var (
	// ErrInvalidTempo reports a tempo entry that cannot be encoded.
	ErrInvalidTempo = errors.New("invalid tempo")

	// ErrInvalidNote reports a note with out-of-range fields.
	ErrInvalidNote = errors.New("invalid note")
)

// SchemaValidationError aggregates all field violations found in a Song.
type SchemaValidationError struct {
	Violations []error
}

// Error lists every violation, not just the first.
func (e *SchemaValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("schema validation failed: %v", e.Violations[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema validation failed: %d violations:", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.Error())
	}
	return b.String()
}

// Unwrap exposes the individual violations to errors.Is and errors.As.
func (e *SchemaValidationError) Unwrap() []error {
	return e.Violations
}

// validateSong checks the whole schema and reports every violation found.
// It runs before any MIDI byte is produced.
func validateSong(song *Song) error {
	var violations []error

	if song.Resolution < 1 || song.Resolution > 0x7FFF {
		violations = append(violations, fmt.Errorf("resolution must be within 1..32767, got %d", song.Resolution))
	}
	for i, tempo := range song.TempoMap {
		if tempo.BPM <= 0 || math.IsNaN(tempo.BPM) || math.IsInf(tempo.BPM, 0) {
			violations = append(violations, fmt.Errorf("tempo_map[%d]: %w: bpm must be positive, got %v", i, ErrInvalidTempo, tempo.BPM))
		}
		if tempo.Beat < 0 || math.IsNaN(tempo.Beat) || math.IsInf(tempo.Beat, 0) {
			violations = append(violations, fmt.Errorf("tempo_map[%d]: %w: beat must be non-negative, got %v", i, ErrInvalidTempo, tempo.Beat))
		}
	}
	for i, note := range song.Notes {
		if note.Pitch < 0 || note.Pitch > 127 {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: pitch must be within 0..127, got %d", i, ErrInvalidNote, note.Pitch))
		}
		if note.Velocity < 1 || note.Velocity > 127 {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: velocity must be within 1..127, got %d", i, ErrInvalidNote, note.Velocity))
		}
		if note.Channel < 0 || note.Channel > 15 {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: channel must be within 0..15, got %d", i, ErrInvalidNote, note.Channel))
		}
		if note.Track < 0 || note.Track > maxTrack {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: track must be within 0..%d, got %d", i, ErrInvalidNote, maxTrack, note.Track))
		}
		if note.StartBeat < 0 || math.IsNaN(note.StartBeat) || math.IsInf(note.StartBeat, 0) {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: start_beat must be non-negative, got %v", i, ErrInvalidNote, note.StartBeat))
		}
		if note.DurationBeat <= 0 || math.IsNaN(note.DurationBeat) || math.IsInf(note.DurationBeat, 0) {
			violations = append(violations, fmt.Errorf("notes[%d]: %w: duration_beat must be positive, got %v", i, ErrInvalidNote, note.DurationBeat))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &SchemaValidationError{Violations: violations}
}
