// Package converter translates between Standard MIDI File data and a JSON
// note-list representation, preserving timing, pitch, velocity, channel,
// track assignment, and tempo changes across a round trip.
package converter

// Schema defaults applied on the encode path when a field is absent.
const (
	DefaultResolution = 480
	DefaultTempo      = 120.0
	DefaultVelocity   = 100
)

// TempoEvent is one tempo map entry: the sequence runs at BPM beats per
// minute from Beat onward.
type TempoEvent struct {
	Beat float64 `json:"beat"`
	BPM  float64 `json:"bpm"`
}

// Note is a single duration-bearing note, the resolved pairing of one
// note-begin and one note-end on the same track, channel, and pitch. Times
// are in beats: beat = tick / resolution, independent of tempo.
type Note struct {
	Pitch        int     `json:"pitch"`
	StartBeat    float64 `json:"start_beat"`
	DurationBeat float64 `json:"duration_beat"`
	Velocity     int     `json:"velocity"`
	Track        int     `json:"track"`
	Channel      int     `json:"channel"`
}

// Song is the structured representation of a sequence.
type Song struct {
	Resolution int          `json:"resolution"`
	TempoMap   []TempoEvent `json:"tempo_map"`
	Notes      []Note       `json:"notes"`
}
