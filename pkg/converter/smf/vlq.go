package smf

import "fmt"

// maxVarint is the largest value a four-byte variable-length quantity can
// carry (28 payload bits).
const maxVarint = 1<<28 - 1

// appendVarint appends the minimal variable-length encoding of v: big-endian
// seven-bit groups with the continuation bit set on all but the last byte.
func appendVarint(dst []byte, v uint32) ([]byte, error) {
	if v > maxVarint {
		return dst, fmt.Errorf("%w: %d exceeds the four-byte variable-length limit", ErrValueOutOfRange, v)
	}
	var groups [4]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	for i := n - 1; i > 0; i-- {
		dst = append(dst, groups[i]|0x80)
	}
	return append(dst, groups[0]), nil
}

// varint reads a variable-length quantity at the cursor, consuming at most
// four bytes.
func (d *decoder) varint() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		if d.pos >= len(d.buf) {
			return 0, fmt.Errorf("%w: buffer ended mid-quantity", ErrMalformedVarint)
		}
		b := d.buf[d.pos]
		d.pos++
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: no terminating byte within four bytes", ErrMalformedVarint)
}
