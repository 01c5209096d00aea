package converter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/james-see/midi2json/pkg/converter/smf"
)

// ParseMIDI decodes MIDI bytes into a Song.
func (c *Converter) ParseMIDI(data []byte) (*Song, error) {
	f, err := smf.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	song := &Song{
		Resolution: int(f.Resolution),
		TempoMap:   c.extractTempoMap(f),
		Notes:      c.assembleNotes(f),
	}
	c.log.Debug("parsed MIDI data",
		zap.Int("tracks", len(f.Tracks)),
		zap.Int("notes", len(song.Notes)),
		zap.Int("tempo_events", len(song.TempoMap)))
	return song, nil
}

// GenerateMIDI encodes a Song into MIDI bytes. The whole schema is validated
// before any output is produced, so a failed encode never yields a partial
// file.
func (c *Converter) GenerateMIDI(song *Song) ([]byte, error) {
	if song == nil {
		return nil, errors.New("nil song")
	}
	normalized := c.normalize(song)
	if err := validateSong(normalized); err != nil {
		return nil, err
	}

	tracks, err := buildTracks(normalized)
	if err != nil {
		return nil, err
	}

	format := uint16(0)
	if len(tracks) > 1 {
		format = 1
	}
	out, err := smf.Encode(&smf.File{
		Format:     format,
		Resolution: uint16(normalized.Resolution),
		Tracks:     tracks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	c.log.Debug("generated MIDI data",
		zap.Int("tracks", len(tracks)),
		zap.Int("bytes", len(out)))
	return out, nil
}

// normalize returns a copy of song with schema defaults filled in:
// resolution 480, velocity 100, and the converter's default tempo when the
// tempo map is empty.
func (c *Converter) normalize(song *Song) *Song {
	out := &Song{Resolution: song.Resolution}
	if out.Resolution == 0 {
		out.Resolution = DefaultResolution
	}
	out.TempoMap = append([]TempoEvent(nil), song.TempoMap...)
	if len(out.TempoMap) == 0 {
		out.TempoMap = []TempoEvent{{Beat: 0, BPM: c.defaultTempo}}
	}
	out.Notes = append([]Note(nil), song.Notes...)
	for i := range out.Notes {
		if out.Notes[i].Velocity == 0 {
			out.Notes[i].Velocity = DefaultVelocity
		}
	}
	return out
}

// buildTracks lays out tempo and note events into per-track event lists.
// Tempo events go on track 0; a note's chunk index is its Track field, so a
// round trip preserves track assignment exactly.
func buildTracks(song *Song) ([]smf.Track, error) {
	trackCount := 1
	for _, note := range song.Notes {
		if note.Track+1 > trackCount {
			trackCount = note.Track + 1
		}
	}

	tracks := make([]smf.Track, trackCount)
	tempoEvents, err := buildTempoEvents(song.TempoMap, song.Resolution)
	if err != nil {
		return nil, err
	}
	tracks[0] = append(tracks[0], tempoEvents...)

	if err := splitNotes(tracks, song.Notes, song.Resolution); err != nil {
		return nil, err
	}

	for i := range tracks {
		sortTrack(tracks[i])
	}
	return tracks, nil
}
