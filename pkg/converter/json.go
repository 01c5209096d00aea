package converter

import (
	"encoding/json"
	"fmt"
)

// Style selects the JSON output formatting.
type Style string

const (
	StylePretty  Style = "pretty"
	StyleCompact Style = "compact"
)

// ParseStyle maps a flag or query value to a Style. An empty value selects
// the pretty style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StylePretty, "":
		return StylePretty, nil
	case StyleCompact:
		return StyleCompact, nil
	}
	return "", fmt.Errorf("unknown output style %q (want pretty or compact)", s)
}

// ParseJSON decodes JSON bytes into a Song. Field validation happens on the
// encode path, so a parsed Song can hold out-of-range values.
func (c *Converter) ParseJSON(data []byte) (*Song, error) {
	var song Song
	if err := json.Unmarshal(data, &song); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &song, nil
}

// GenerateJSON encodes a Song using the converter's output style. The
// tempo_map and notes fields are always emitted as arrays, never null.
func (c *Converter) GenerateJSON(song *Song) ([]byte, error) {
	out := *song
	if out.TempoMap == nil {
		out.TempoMap = []TempoEvent{}
	}
	if out.Notes == nil {
		out.Notes = []Note{}
	}

	var data []byte
	var err error
	if c.style == StyleCompact {
		data, err = json.Marshal(&out)
	} else {
		data, err = json.MarshalIndent(&out, "", "    ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	return data, nil
}
