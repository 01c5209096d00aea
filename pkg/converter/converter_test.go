package converter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"test.MID", FormatMIDI},
		{"test.json", FormatJSON},
		{"test.txt", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"JSON object", []byte(`{"resolution": 480}`), FormatJSON},
		{"JSON with leading whitespace", []byte("  \n\t{\"notes\": []}"), FormatJSON},
		{"short data", []byte{0x00, 0x01}, FormatUnknown},
		{"other binary", []byte{0x3C, 0x01, 0x3E, 0x02, 0x40, 0x03}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestConverterDefaults(t *testing.T) {
	conv := New()

	if conv.defaultTempo != DefaultTempo {
		t.Errorf("default tempo = %v, want %v", conv.defaultTempo, DefaultTempo)
	}
	if conv.style != StylePretty {
		t.Errorf("default style = %v, want %v", conv.style, StylePretty)
	}
	if conv.log == nil {
		t.Error("logger should default to a no-op logger, not nil")
	}
}

func TestConverterOptions(t *testing.T) {
	conv := New(WithDefaultTempo(90), WithStyle(StyleCompact))

	if conv.defaultTempo != 90 {
		t.Errorf("defaultTempo = %v, want 90", conv.defaultTempo)
	}
	if conv.style != StyleCompact {
		t.Errorf("style = %v, want %v", conv.style, StyleCompact)
	}

	conv = New(WithDefaultTempo(0))
	if conv.defaultTempo != DefaultTempo {
		t.Errorf("defaultTempo = %v, want the %v default kept", conv.defaultTempo, DefaultTempo)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	conv := New()

	song := &Song{
		Resolution: 480,
		TempoMap:   []TempoEvent{{Beat: 0, BPM: 120}},
		Notes:      []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1, Velocity: 100}},
	}
	midiData, err := conv.GenerateMIDI(song)
	if err != nil {
		t.Fatalf("GenerateMIDI() error: %v", err)
	}

	midiPath := filepath.Join(dir, "input.mid")
	if err := os.WriteFile(midiPath, midiData, 0644); err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(dir, "output.json")
	if err := conv.ConvertFile(midiPath, jsonPath); err != nil {
		t.Fatalf("ConvertFile() to JSON error: %v", err)
	}

	roundTripPath := filepath.Join(dir, "roundtrip.mid")
	if err := conv.ConvertFile(jsonPath, roundTripPath); err != nil {
		t.Fatalf("ConvertFile() to MIDI error: %v", err)
	}

	got, err := os.ReadFile(roundTripPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(midiData) {
		t.Error("round-tripped MIDI differs from the original bytes")
	}
}

func TestConvertFileDetectsInputByContent(t *testing.T) {
	dir := t.TempDir()
	conv := New()

	midiData, err := conv.GenerateMIDI(&Song{Notes: []Note{{Pitch: 60, StartBeat: 0, DurationBeat: 1}}})
	if err != nil {
		t.Fatal(err)
	}

	// no extension on the input file
	inputPath := filepath.Join(dir, "recording")
	if err := os.WriteFile(inputPath, midiData, 0644); err != nil {
		t.Fatal(err)
	}

	if err := conv.ConvertFile(inputPath, filepath.Join(dir, "out.json")); err != nil {
		t.Errorf("ConvertFile() error: %v", err)
	}
}

func TestConvertFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	conv := New()

	inputPath := filepath.Join(dir, "input.json")
	if err := os.WriteFile(inputPath, []byte(`{"resolution": 480}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := conv.ConvertFile(inputPath, filepath.Join(dir, "out.json")); err == nil {
		t.Error("expected error for json -> json")
	}
	if err := conv.ConvertFile(inputPath, filepath.Join(dir, "out.txt")); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestConvertFileNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	conv := New()

	inputPath := filepath.Join(dir, "broken.mid")
	if err := os.WriteFile(inputPath, []byte("MThX garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	outputPath := filepath.Join(dir, "out.json")
	if err := conv.ConvertFile(inputPath, outputPath); err == nil {
		t.Fatal("expected a decode error")
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("output file must not exist after a failed conversion")
	}
}

func TestGetSupportedConversions(t *testing.T) {
	conversions := GetSupportedConversions()

	if len(conversions) != 2 {
		t.Fatalf("GetSupportedConversions() returned %d conversions, want 2", len(conversions))
	}

	expected := []string{
		"midi -> json",
		"json -> midi",
	}
	for i, exp := range expected {
		if conversions[i] != exp {
			t.Errorf("conversions[%d] = %q, want %q", i, conversions[i], exp)
		}
	}
}
