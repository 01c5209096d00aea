package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/james-see/midi2json/pkg/converter/smf"
)

// buildMIDI encodes raw track events into a file image for parser input.
func buildMIDI(t *testing.T, resolution uint16, tracks ...smf.Track) []byte {
	t.Helper()
	data, err := smf.Encode(&smf.File{Resolution: resolution, Tracks: tracks})
	require.NoError(t, err)
	return data
}

func TestParseMIDISingleNote(t *testing.T) {
	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
		{Tick: 480, Kind: smf.KindNoteOff, Note: 60},
	})

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, 480, song.Resolution)
	// no tempo event in the file, so the default is supplied
	assert.Equal(t, []TempoEvent{{Beat: 0, BPM: 120}}, song.TempoMap)
	assert.Equal(t, []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100}}, song.Notes)
}

func TestParseMIDIOverlappingNotesPairFIFO(t *testing.T) {
	// Two begins for the same pitch before either end: the first end closes
	// the first begin, the second end closes the second.
	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindNoteOn, Note: 64, Velocity: 100},
		{Tick: 240, Kind: smf.KindNoteOn, Note: 64, Velocity: 90},
		{Tick: 480, Kind: smf.KindNoteOff, Note: 64},
		{Tick: 720, Kind: smf.KindNoteOff, Note: 64},
	})

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, []Note{
		{Pitch: 64, StartBeat: 0, DurationBeat: 1, Velocity: 100},
		{Pitch: 64, StartBeat: 0.5, DurationBeat: 1, Velocity: 90},
	}, song.Notes)
}

func TestParseMIDITempoChange(t *testing.T) {
	// A tempo event after tick 0 leaves the opening stretch at the default.
	data := buildMIDI(t, 480, smf.Track{
		{Tick: 960, Kind: smf.KindTempo, Tempo: 600000},
	})

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, []TempoEvent{
		{Beat: 0, BPM: 120},
		{Beat: 2, BPM: 100},
	}, song.TempoMap)
}

func TestParseMIDIStrayNoteEndTolerated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	conv := New(WithLogger(zap.New(core)))

	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindNoteOff, Note: 60},
		{Tick: 0, Kind: smf.KindNoteOn, Note: 62, Velocity: 100},
		{Tick: 480, Kind: smf.KindNoteOff, Note: 62},
	})

	song, err := conv.ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, []Note{{Pitch: 62, StartBeat: 0, DurationBeat: 1, Velocity: 100}}, song.Notes)
	assert.Equal(t, 1, logs.FilterMessage("stray note-end with no matching begin").Len())
}

func TestParseMIDIUnterminatedNoteClosed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	conv := New(WithLogger(zap.New(core)))

	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
		{Tick: 960, Kind: smf.KindEndOfTrack},
	})

	song, err := conv.ParseMIDI(data)
	require.NoError(t, err)

	// closed at the final tick of the track
	assert.Equal(t, []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 2, Velocity: 100}}, song.Notes)
	assert.Equal(t, 1, logs.FilterMessage("unterminated note, closing at end of track").Len())
}

func TestParseMIDIZeroDurationFloorsToOneTick(t *testing.T) {
	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
		{Tick: 0, Kind: smf.KindNoteOff, Note: 60},
	})

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	require.Len(t, song.Notes, 1)
	assert.Equal(t, 1.0/480, song.Notes[0].DurationBeat)
}

func TestParseMIDIIgnoresUnrelatedEvents(t *testing.T) {
	data := buildMIDI(t, 480, smf.Track{
		{Tick: 0, Kind: smf.KindOther, Raw: []byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}},
		{Tick: 0, Kind: smf.KindOther, Raw: []byte{0xC0, 0x05}},
		{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
		{Tick: 120, Kind: smf.KindOther, Raw: []byte{0xB0, 0x40, 0x7F}},
		{Tick: 480, Kind: smf.KindNoteOff, Note: 60},
	})

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100}}, song.Notes)
}

func TestParseMIDINotesSorted(t *testing.T) {
	// Later track carries the earlier note; output is ordered by start beat.
	data := buildMIDI(t, 480,
		smf.Track{
			{Tick: 960, Kind: smf.KindNoteOn, Note: 72, Velocity: 80},
			{Tick: 1440, Kind: smf.KindNoteOff, Note: 72},
		},
		smf.Track{
			{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
			{Tick: 480, Kind: smf.KindNoteOff, Note: 60},
		},
	)

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, []Note{
		{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100, Track: 1},
		{Pitch: 72, StartBeat: 2, DurationBeat: 1, Velocity: 80, Track: 0},
	}, song.Notes)
}

func TestParseMIDIRejectsMalformedInput(t *testing.T) {
	_, err := New().ParseMIDI([]byte("MThX not a midi file"))
	require.Error(t, err)
	assert.ErrorIs(t, err, smf.ErrTruncatedChunk)
	assert.Contains(t, err.Error(), "failed to parse MIDI")
}

func TestGenerateMIDIAppliesDefaults(t *testing.T) {
	conv := New(WithDefaultTempo(90))
	song := &Song{Notes: []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1}}}

	data, err := conv.GenerateMIDI(song)
	require.NoError(t, err)

	decoded, err := conv.ParseMIDI(data)
	require.NoError(t, err)

	assert.Equal(t, DefaultResolution, decoded.Resolution)
	require.Len(t, decoded.TempoMap, 1)
	assert.InDelta(t, 90.0, decoded.TempoMap[0].BPM, 1e-4)
	require.Len(t, decoded.Notes, 1)
	assert.Equal(t, DefaultVelocity, decoded.Notes[0].Velocity)

	// the caller's song is left untouched
	assert.Equal(t, 0, song.Resolution)
	assert.Nil(t, song.TempoMap)
	assert.Equal(t, 0, song.Notes[0].Velocity)
}

func TestGenerateMIDIEmptySong(t *testing.T) {
	data, err := New().GenerateMIDI(&Song{})
	require.NoError(t, err)

	song, err := New().ParseMIDI(data)
	require.NoError(t, err)

	assert.Empty(t, song.Notes)
	assert.Equal(t, []TempoEvent{{Beat: 0, BPM: 120}}, song.TempoMap)
}

func TestGenerateMIDINilSong(t *testing.T) {
	_, err := New().GenerateMIDI(nil)
	require.Error(t, err)
}

func TestGenerateMIDITrackLayout(t *testing.T) {
	song := &Song{
		Resolution: 480,
		TempoMap:   []TempoEvent{{Beat: 0, BPM: 120}},
		Notes:      []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100, Track: 2}},
	}

	data, err := New().GenerateMIDI(song)
	require.NoError(t, err)

	f, err := smf.Decode(data)
	require.NoError(t, err)

	require.Len(t, f.Tracks, 3)
	assert.Equal(t, uint16(1), f.Format)

	// tempo lives on track 0, the note on its own chunk index
	assert.Equal(t, smf.KindTempo, f.Tracks[0][0].Kind)
	var kinds []smf.Kind
	for _, ev := range f.Tracks[2] {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []smf.Kind{smf.KindNoteOn, smf.KindNoteOff, smf.KindEndOfTrack}, kinds)
}

func TestGenerateMIDISingleTrackIsFormatZero(t *testing.T) {
	data, err := New().GenerateMIDI(&Song{
		Notes: []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100}},
	})
	require.NoError(t, err)

	f, err := smf.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), f.Format)
	assert.Len(t, f.Tracks, 1)
}

func TestEncodeDecodeIdempotence(t *testing.T) {
	conv := New()
	original := &Song{
		Resolution: 960,
		TempoMap:   []TempoEvent{{Beat: 0, BPM: 120}, {Beat: 4, BPM: 100}},
		Notes: []Note{
			{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100, Track: 0, Channel: 0},
			{Pitch: 64, StartBeat: 0.5, DurationBeat: 2, Velocity: 90, Track: 1, Channel: 3},
			{Pitch: 64, StartBeat: 1, DurationBeat: 2, Velocity: 80, Track: 1, Channel: 3},
			{Pitch: 72, StartBeat: 8, DurationBeat: 0.5, Velocity: 127, Track: 2, Channel: 15},
		},
	}

	data, err := conv.GenerateMIDI(original)
	require.NoError(t, err)

	decoded, err := conv.ParseMIDI(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	// a second pass through the binary form changes nothing
	data2, err := conv.GenerateMIDI(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestDecodeEncodeRoundTripPreservesNotes(t *testing.T) {
	conv := New()
	data := buildMIDI(t, 480,
		smf.Track{
			{Tick: 0, Kind: smf.KindTempo, Tempo: 500000},
			{Tick: 0, Kind: smf.KindNoteOn, Note: 60, Velocity: 100},
			{Tick: 480, Kind: smf.KindNoteOff, Note: 60},
		},
		smf.Track{
			{Tick: 240, Kind: smf.KindNoteOn, Channel: 9, Note: 72, Velocity: 64},
			{Tick: 960, Kind: smf.KindNoteOff, Channel: 9, Note: 72},
		},
	)

	first, err := conv.ParseMIDI(data)
	require.NoError(t, err)

	encoded, err := conv.GenerateMIDI(first)
	require.NoError(t, err)

	second, err := conv.ParseMIDI(encoded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
