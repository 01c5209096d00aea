package converter

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/james-see/midi2json/pkg/converter/smf"
)

// pendingNote is an unmatched note-begin awaiting its end.
type pendingNote struct {
	tick     int64
	velocity uint8
}

// noteKey identifies the queue a begin/end pair must meet on within a track.
type noteKey struct {
	channel uint8
	pitch   uint8
}

// assembleNotes pairs note-begin and note-end events into notes. Queues are
// FIFO per (channel, pitch) within each track: the earliest unmatched begin
// is closed first, which pairs overlapping same-pitch notes in begin order.
// Stray note-ends are dropped with a warning; begins left open at the end of
// a track are closed at the track's final tick.
func (c *Converter) assembleNotes(f *smf.File) []Note {
	resolution := float64(f.Resolution)
	var notes []Note

	for trackIndex, track := range f.Tracks {
		pending := make(map[noteKey][]pendingNote)
		var finalTick int64

		for _, ev := range track {
			if ev.Tick > finalTick {
				finalTick = ev.Tick
			}
			key := noteKey{channel: ev.Channel, pitch: ev.Note}
			switch ev.Kind {
			case smf.KindNoteOn:
				pending[key] = append(pending[key], pendingNote{tick: ev.Tick, velocity: ev.Velocity})
			case smf.KindNoteOff:
				queue := pending[key]
				if len(queue) == 0 {
					c.log.Warn("stray note-end with no matching begin",
						zap.Int("track", trackIndex),
						zap.Uint8("channel", key.channel),
						zap.Uint8("pitch", key.pitch),
						zap.Int64("tick", ev.Tick))
					continue
				}
				pending[key] = queue[1:]
				notes = append(notes, makeNote(trackIndex, key, queue[0], ev.Tick, resolution))
			}
		}

		for key, queue := range pending {
			for _, begin := range queue {
				c.log.Warn("unterminated note, closing at end of track",
					zap.Int("track", trackIndex),
					zap.Uint8("channel", key.channel),
					zap.Uint8("pitch", key.pitch),
					zap.Int64("tick", begin.tick))
				notes = append(notes, makeNote(trackIndex, key, begin, finalTick, resolution))
			}
		}
	}

	sortNotes(notes)
	return notes
}

// makeNote converts a matched begin/end pair to beat units, flooring the
// duration at one tick.
func makeNote(track int, key noteKey, begin pendingNote, endTick int64, resolution float64) Note {
	if endTick <= begin.tick {
		endTick = begin.tick + 1
	}
	return Note{
		Pitch:        int(key.pitch),
		StartBeat:    float64(begin.tick) / resolution,
		DurationBeat: float64(endTick-begin.tick) / resolution,
		Velocity:     int(begin.velocity),
		Track:        track,
		Channel:      int(key.channel),
	}
}

// sortNotes orders notes for stable output: start beat, then track, channel,
// pitch, and duration.
func sortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.StartBeat != b.StartBeat {
			return a.StartBeat < b.StartBeat
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		if a.Pitch != b.Pitch {
			return a.Pitch < b.Pitch
		}
		return a.DurationBeat < b.DurationBeat
	})
}

// splitNotes expands each note into a begin/end event pair on its track,
// flooring the quantized duration at one tick.
func splitNotes(tracks []smf.Track, notes []Note, resolution int) error {
	res := float64(resolution)
	for i, note := range notes {
		if err := checkNote(note); err != nil {
			return fmt.Errorf("notes[%d]: %w", i, err)
		}
		begin := int64(math.Round(note.StartBeat * res))
		end := int64(math.Round((note.StartBeat + note.DurationBeat) * res))
		if end <= begin {
			end = begin + 1
		}
		tracks[note.Track] = append(tracks[note.Track],
			smf.Event{Tick: begin, Kind: smf.KindNoteOn, Channel: uint8(note.Channel), Note: uint8(note.Pitch), Velocity: uint8(note.Velocity)},
			smf.Event{Tick: end, Kind: smf.KindNoteOff, Channel: uint8(note.Channel), Note: uint8(note.Pitch)},
		)
	}
	return nil
}

// checkNote guards the splitter against out-of-range fields. The encode path
// validates the whole schema up front; this protects direct callers.
func checkNote(note Note) error {
	switch {
	case note.Pitch < 0 || note.Pitch > 127:
		return fmt.Errorf("%w: pitch %d", ErrInvalidNote, note.Pitch)
	case note.Velocity < 1 || note.Velocity > 127:
		return fmt.Errorf("%w: velocity %d", ErrInvalidNote, note.Velocity)
	case note.Channel < 0 || note.Channel > 15:
		return fmt.Errorf("%w: channel %d", ErrInvalidNote, note.Channel)
	case note.Track < 0 || note.Track > maxTrack:
		return fmt.Errorf("%w: track %d", ErrInvalidNote, note.Track)
	case note.StartBeat < 0 || math.IsNaN(note.StartBeat) || math.IsInf(note.StartBeat, 0):
		return fmt.Errorf("%w: start_beat %v", ErrInvalidNote, note.StartBeat)
	case note.DurationBeat <= 0 || math.IsNaN(note.DurationBeat) || math.IsInf(note.DurationBeat, 0):
		return fmt.Errorf("%w: duration_beat %v", ErrInvalidNote, note.DurationBeat)
	}
	return nil
}

// sortTrack orders events by tick; at equal ticks tempo changes come first
// and note-ends precede note-begins so back-to-back notes re-pair cleanly.
func sortTrack(track smf.Track) {
	sort.SliceStable(track, func(i, j int) bool {
		if track[i].Tick != track[j].Tick {
			return track[i].Tick < track[j].Tick
		}
		return kindRank(track[i].Kind) < kindRank(track[j].Kind)
	})
}

func kindRank(kind smf.Kind) int {
	switch kind {
	case smf.KindTempo:
		return 0
	case smf.KindNoteOff:
		return 1
	case smf.KindNoteOn:
		return 2
	}
	return 3
}
