package converter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected Style
		wantErr  bool
	}{
		{"", StylePretty, false},
		{"pretty", StylePretty, false},
		{"compact", StyleCompact, false},
		{"PRETTY", "", true},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			style, err := ParseStyle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, style)
		})
	}
}

func TestGenerateJSONStyles(t *testing.T) {
	song := &Song{
		Resolution: 480,
		TempoMap:   []TempoEvent{{Beat: 0, BPM: 120}},
		Notes:      []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100}},
	}

	pretty, err := New().GenerateJSON(song)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pretty), "{\n    \"resolution\": 480"),
		"pretty output should be indented with four spaces, got: %s", pretty)

	compact, err := New(WithStyle(StyleCompact)).GenerateJSON(song)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")
	assert.Less(t, len(compact), len(pretty))

	// both styles parse back to the same song
	for _, data := range [][]byte{pretty, compact} {
		parsed, err := New().ParseJSON(data)
		require.NoError(t, err)
		assert.Equal(t, song, parsed)
	}
}

func TestGenerateJSONEmitsEmptyArrays(t *testing.T) {
	data, err := New(WithStyle(StyleCompact)).GenerateJSON(&Song{Resolution: 480})
	require.NoError(t, err)
	assert.Equal(t, `{"resolution":480,"tempo_map":[],"notes":[]}`, string(data))
}

func TestParseJSONErrors(t *testing.T) {
	_, err := New().ParseJSON([]byte(`{"resolution": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestParseJSONIgnoresUnknownFields(t *testing.T) {
	song, err := New().ParseJSON([]byte(`{"resolution": 96, "title": "take five", "notes": []}`))
	require.NoError(t, err)
	assert.Equal(t, 96, song.Resolution)
	assert.Empty(t, song.Notes)
}

func TestMIDIToJSONRoundTrip(t *testing.T) {
	conv := New(WithStyle(StyleCompact))
	song := &Song{
		Resolution: 480,
		TempoMap:   []TempoEvent{{Beat: 0, BPM: 120}},
		Notes: []Note{
			{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100},
			{Pitch: 67, StartBeat: 1, DurationBeat: 0.5, Velocity: 80, Channel: 4},
		},
	}

	midiData, err := conv.GenerateMIDI(song)
	require.NoError(t, err)

	jsonData, err := conv.MIDIToJSON(midiData)
	require.NoError(t, err)

	midiAgain, err := conv.JSONToMIDI(jsonData)
	require.NoError(t, err)
	assert.Equal(t, midiData, midiAgain)
}
