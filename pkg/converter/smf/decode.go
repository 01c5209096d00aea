package smf

import (
	"encoding/binary"
	"fmt"
)

// decoder is a cursor over an in-memory buffer. All decode state lives here
// or in locals of the track walk, so nothing leaks across tracks or calls.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrTruncatedChunk)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedChunk, n, len(d.buf)-d.pos)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readUint16() (uint16, error) {
	b, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) readUint32() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Decode parses a complete file image: an MThd header chunk followed by the
// declared number of MTrk chunks.
func Decode(data []byte) (*File, error) {
	d := &decoder{buf: data}

	magic, err := d.readBytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != HeaderMagic {
		return nil, fmt.Errorf("%w: bad header magic %q", ErrTruncatedChunk, magic)
	}
	headerLen, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if headerLen != 6 {
		return nil, fmt.Errorf("%w: header length %d, want 6", ErrTruncatedChunk, headerLen)
	}
	format, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	trackCount, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	division, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	if division&0x8000 != 0 {
		return nil, fmt.Errorf("%w: 0x%04X", ErrUnsupportedDivision, division)
	}
	if division == 0 {
		return nil, fmt.Errorf("%w: zero resolution", ErrUnsupportedDivision)
	}

	f := &File{
		Format:     format,
		Resolution: division,
		Tracks:     make([]Track, 0, trackCount),
	}
	for i := 0; i < int(trackCount); i++ {
		magic, err := d.readBytes(4)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		if string(magic) != TrackMagic {
			return nil, fmt.Errorf("track %d: %w: bad track magic %q", i, ErrTruncatedChunk, magic)
		}
		bodyLen, err := d.readUint32()
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		body, err := d.readBytes(int(bodyLen))
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		track, err := decodeTrack(body)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		f.Tracks = append(f.Tracks, track)
	}
	return f, nil
}

// decodeTrack walks one track body. The tick counter and running status are
// local to the walk; meta and sysex events clear running status. The loop
// ends at the end-of-track meta, skipping any declared bytes after it.
func decodeTrack(body []byte) (Track, error) {
	d := &decoder{buf: body}
	var track Track
	var tick int64
	var running byte

	for d.pos < len(d.buf) {
		delta, err := d.varint()
		if err != nil {
			return nil, err
		}
		tick += int64(delta)

		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		status := b
		if b&0x80 == 0 {
			if running == 0 {
				return nil, fmt.Errorf("%w: data byte 0x%02X with no running status", ErrTruncatedChunk, b)
			}
			status = running
			d.pos-- // the byte is the event's first data byte
		}

		switch {
		case status == statusMeta:
			running = 0
			start := d.pos - 1
			metaType, err := d.readByte()
			if err != nil {
				return nil, err
			}
			length, err := d.varint()
			if err != nil {
				return nil, err
			}
			payload, err := d.readBytes(int(length))
			if err != nil {
				return nil, err
			}
			switch metaType {
			case metaEndOfTrack:
				return append(track, Event{Tick: tick, Kind: KindEndOfTrack}), nil
			case metaTempo:
				if len(payload) != 3 {
					return nil, fmt.Errorf("%w: tempo meta with %d-byte payload, want 3", ErrTruncatedChunk, len(payload))
				}
				micros := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
				track = append(track, Event{Tick: tick, Kind: KindTempo, Tempo: micros})
			default:
				raw := append([]byte(nil), d.buf[start:d.pos]...)
				track = append(track, Event{Tick: tick, Kind: KindOther, Raw: raw})
			}

		case status == statusSysEx || status == statusSysExCont:
			running = 0
			start := d.pos - 1
			length, err := d.varint()
			if err != nil {
				return nil, err
			}
			if _, err := d.readBytes(int(length)); err != nil {
				return nil, err
			}
			raw := append([]byte(nil), d.buf[start:d.pos]...)
			track = append(track, Event{Tick: tick, Kind: KindOther, Raw: raw})

		case status >= 0x80 && status < 0xF0:
			running = status
			data, err := d.readBytes(voiceDataLen(status))
			if err != nil {
				return nil, err
			}
			ev := Event{Tick: tick}
			switch {
			case status&0xF0 == statusNoteOn && data[1] > 0:
				ev.Kind = KindNoteOn
				ev.Channel = status & 0x0F
				ev.Note, ev.Velocity = data[0], data[1]
			case status&0xF0 == statusNoteOn, status&0xF0 == statusNoteOff:
				ev.Kind = KindNoteOff
				ev.Channel = status & 0x0F
				ev.Note, ev.Velocity = data[0], data[1]
			default:
				// channel stays in the raw bytes for opaque events
				ev.Kind = KindOther
				ev.Raw = append([]byte{status}, data...)
			}
			track = append(track, ev)

		default:
			// 0xF1-0xF6, 0xF8-0xFE: system messages that do not belong in a file
			return nil, fmt.Errorf("%w: unexpected status byte 0x%02X", ErrTruncatedChunk, status)
		}
	}
	return track, nil
}

// voiceDataLen returns the data byte count for a channel voice status:
// program change and channel pressure take one byte, the rest take two.
func voiceDataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}
