// Package smf implements the Standard MIDI File byte layout: header and
// track chunks, variable-length quantities, channel voice and meta events,
// and running-status compression.
package smf

// Chunk magic tags
const (
	HeaderMagic = "MThd"
	TrackMagic  = "MTrk"
)

// Status and meta-event type bytes
const (
	statusNoteOff   = 0x80
	statusNoteOn    = 0x90
	statusSysEx     = 0xF0
	statusSysExCont = 0xF7
	statusMeta      = 0xFF

	metaTempo      = 0x51
	metaEndOfTrack = 0x2F
)

// Kind classifies a track event.
type Kind uint8

const (
	// KindNoteOn is a note-begin. A note-on with velocity zero is
	// normalized to KindNoteOff during decoding.
	KindNoteOn Kind = iota + 1
	// KindNoteOff is a note-end.
	KindNoteOff
	// KindTempo is a set-tempo meta event.
	KindTempo
	// KindEndOfTrack is the meta event terminating a track.
	KindEndOfTrack
	// KindOther is any other channel voice, meta, or sysex event, carried
	// opaquely for round-trip fidelity.
	KindOther
)

// Event is a single timed occurrence within a track. Tick is absolute from
// the start of the track. Which fields are meaningful depends on Kind: note
// events use Channel, Note, and Velocity; tempo events use Tempo; opaque
// events keep their full encoded form (status byte onward, delta excluded)
// in Raw.
type Event struct {
	Tick     int64
	Kind     Kind
	Channel  uint8
	Note     uint8
	Velocity uint8
	Tempo    uint32 // microseconds per quarter note
	Raw      []byte
}

// Track is a flat event list ordered by ascending tick.
type Track []Event

// File is a decoded sequence: header fields plus one event list per track
// chunk.
type File struct {
	Format     uint16
	Resolution uint16
	Tracks     []Track
}
