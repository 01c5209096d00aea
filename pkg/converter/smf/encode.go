package smf

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes f into a complete file image. Events within each track
// must be ordered by ascending tick. Each track body is serialized first so
// its chunk header carries the exact byte length.
func Encode(f *File) ([]byte, error) {
	if f.Resolution == 0 || f.Resolution&0x8000 != 0 {
		return nil, fmt.Errorf("%w: resolution %d", ErrUnsupportedDivision, f.Resolution)
	}
	if len(f.Tracks) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d tracks", ErrValueOutOfRange, len(f.Tracks))
	}
	format := f.Format
	if len(f.Tracks) > 1 && format == 0 {
		format = 1
	}

	out := []byte(HeaderMagic)
	out = binary.BigEndian.AppendUint32(out, 6)
	out = binary.BigEndian.AppendUint16(out, format)
	out = binary.BigEndian.AppendUint16(out, uint16(len(f.Tracks)))
	out = binary.BigEndian.AppendUint16(out, f.Resolution)

	for i, track := range f.Tracks {
		body, err := encodeTrack(track)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		out = append(out, TrackMagic...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}
	return out, nil
}

// encodeTrack serializes one track body: delta-prefixed events with
// running-status compression, always terminated by an end-of-track meta.
func encodeTrack(track Track) ([]byte, error) {
	var body []byte
	var prev int64
	var running byte
	var err error

	for _, ev := range track {
		if ev.Tick < prev {
			return nil, fmt.Errorf("%w: tick %d after %d, events must be ordered", ErrValueOutOfRange, ev.Tick, prev)
		}
		delta := ev.Tick - prev
		if delta > maxVarint {
			return nil, fmt.Errorf("%w: delta time %d", ErrValueOutOfRange, delta)
		}
		body, err = appendVarint(body, uint32(delta))
		if err != nil {
			return nil, err
		}
		prev = ev.Tick

		switch ev.Kind {
		case KindNoteOn:
			body, running = appendVoice(body, running, statusNoteOn|ev.Channel&0x0F, ev.Note, ev.Velocity)
		case KindNoteOff:
			body, running = appendVoice(body, running, statusNoteOff|ev.Channel&0x0F, ev.Note, ev.Velocity)
		case KindTempo:
			if ev.Tempo == 0 || ev.Tempo > 0xFFFFFF {
				return nil, fmt.Errorf("%w: tempo %d microseconds per quarter", ErrValueOutOfRange, ev.Tempo)
			}
			running = 0
			body = append(body, statusMeta, metaTempo, 3, byte(ev.Tempo>>16), byte(ev.Tempo>>8), byte(ev.Tempo))
		case KindEndOfTrack:
			// always the last event; anything after it is dropped
			return append(body, statusMeta, metaEndOfTrack, 0), nil
		case KindOther:
			if len(ev.Raw) == 0 || ev.Raw[0]&0x80 == 0 {
				return nil, fmt.Errorf("smf: opaque event at tick %d missing its status byte", ev.Tick)
			}
			if ev.Raw[0] < 0xF0 {
				if ev.Raw[0] == running {
					body = append(body, ev.Raw[1:]...)
				} else {
					body = append(body, ev.Raw...)
					running = ev.Raw[0]
				}
			} else {
				running = 0
				body = append(body, ev.Raw...)
			}
		default:
			return nil, fmt.Errorf("smf: event kind %d at tick %d is not encodable", ev.Kind, ev.Tick)
		}
	}

	// no explicit end-of-track event: append one at the final tick
	body, err = appendVarint(body, 0)
	if err != nil {
		return nil, err
	}
	return append(body, statusMeta, metaEndOfTrack, 0), nil
}

// appendVoice writes a channel voice event, omitting the status byte when it
// matches the running status.
func appendVoice(dst []byte, running, status byte, data ...byte) ([]byte, byte) {
	if status != running {
		dst = append(dst, status)
	}
	return append(dst, data...), status
}
