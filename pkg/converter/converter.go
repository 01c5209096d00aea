package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/james-see/midi2json/pkg/converter/smf"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == smf.HeaderMagic {
		return FormatMIDI
	}

	// JSON documents open with an object brace
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}

	return FormatUnknown
}

// Converter handles conversions between the MIDI and JSON representations.
// A Converter is stateless across calls; every conversion works on its own
// local state.
type Converter struct {
	log          *zap.Logger
	defaultTempo float64
	style        Style
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger used for non-fatal diagnostics
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDefaultTempo sets the tempo used when an input has no tempo events.
// Zero keeps the package default
func WithDefaultTempo(bpm float64) Option {
	return func(c *Converter) {
		if bpm != 0 {
			c.defaultTempo = bpm
		}
	}
}

// WithStyle sets the JSON output style
func WithStyle(style Style) Option {
	return func(c *Converter) { c.style = style }
}

// New creates a new Converter
func New(opts ...Option) *Converter {
	c := &Converter{
		log:          zap.NewNop(),
		defaultTempo: DefaultTempo,
		style:        StylePretty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MIDIToJSON converts MIDI data to the JSON note-list representation
func (c *Converter) MIDIToJSON(midiData []byte) ([]byte, error) {
	song, err := c.ParseMIDI(midiData)
	if err != nil {
		return nil, err
	}
	return c.GenerateJSON(song)
}

// JSONToMIDI converts a JSON note list to MIDI data
func (c *Converter) JSONToMIDI(jsonData []byte) ([]byte, error) {
	song, err := c.ParseJSON(jsonData)
	if err != nil {
		return nil, err
	}
	return c.GenerateMIDI(song)
}

// ConvertFile converts a file from one format to the other, detecting the
// directions from the file names (and input content as a fallback). The
// output file is only written after the conversion fully succeeds.
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	var outputData []byte
	switch {
	case inputFormat == FormatMIDI && outputFormat == FormatJSON:
		outputData, err = c.MIDIToJSON(data)
	case inputFormat == FormatJSON && outputFormat == FormatMIDI:
		outputData, err = c.JSONToMIDI(data)
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"midi -> json",
		"json -> midi",
	}
}
