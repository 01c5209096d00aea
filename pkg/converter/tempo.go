package converter

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/james-see/midi2json/pkg/converter/smf"
)

const microsPerMinute = 60000000.0

// extractTempoMap collects tempo metas from every track into a beat-indexed
// map: merged ascending by tick, duplicate ticks dropped keeping the first,
// and the default tempo prepended when the stream has none at tick zero.
func (c *Converter) extractTempoMap(f *smf.File) []TempoEvent {
	type tempoAt struct {
		tick   int64
		micros uint32
	}
	var raw []tempoAt
	for trackIndex, track := range f.Tracks {
		for _, ev := range track {
			if ev.Kind != smf.KindTempo {
				continue
			}
			if ev.Tempo == 0 {
				c.log.Warn("ignoring tempo event with zero microseconds per quarter",
					zap.Int("track", trackIndex),
					zap.Int64("tick", ev.Tick))
				continue
			}
			raw = append(raw, tempoAt{tick: ev.Tick, micros: ev.Tempo})
		}
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].tick < raw[j].tick })

	resolution := float64(f.Resolution)
	tempoMap := make([]TempoEvent, 0, len(raw)+1)
	if len(raw) == 0 || raw[0].tick > 0 {
		tempoMap = append(tempoMap, TempoEvent{Beat: 0, BPM: c.defaultTempo})
	}
	for i, entry := range raw {
		if i > 0 && entry.tick == raw[i-1].tick {
			continue
		}
		tempoMap = append(tempoMap, TempoEvent{
			Beat: float64(entry.tick) / resolution,
			BPM:  microsPerMinute / float64(entry.micros),
		})
	}
	return tempoMap
}

// buildTempoEvents converts tempo map entries back into tempo meta events,
// sorted by beat. Entries must be encodable in a three-byte tempo payload.
func buildTempoEvents(tempoMap []TempoEvent, resolution int) ([]smf.Event, error) {
	entries := append([]TempoEvent(nil), tempoMap...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Beat < entries[j].Beat })

	events := make([]smf.Event, 0, len(entries))
	for _, entry := range entries {
		if entry.BPM <= 0 || math.IsNaN(entry.BPM) || math.IsInf(entry.BPM, 0) {
			return nil, fmt.Errorf("%w: bpm must be positive, got %v", ErrInvalidTempo, entry.BPM)
		}
		micros := math.Round(microsPerMinute / entry.BPM)
		if micros < 1 || micros > 0xFFFFFF {
			return nil, fmt.Errorf("%w: bpm %v is outside the encodable range", ErrInvalidTempo, entry.BPM)
		}
		events = append(events, smf.Event{
			Tick:  int64(math.Round(entry.Beat * float64(resolution))),
			Kind:  smf.KindTempo,
			Tempo: uint32(micros),
		})
	}
	return events, nil
}
