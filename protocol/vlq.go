// Variable-length quantity codec for measurement frames
// Values are encoded most-significant group first, 7 bits per byte, with
// the high bit marking a continuation
package protocol

import "errors"

var (
	// ErrTruncated reports a VLQ cut off before its final byte.
	ErrTruncated = errors.New("truncated VLQ")
	// ErrVLQRange reports a VLQ that decodes beyond 32 bits.
	ErrVLQRange = errors.New("VLQ exceeds 32 bits")
)

// MaxVLQLen is the longest encoding of a uint32: five 7-bit groups.
const MaxVLQLen = 5

// AppendUvarint appends the VLQ encoding of v to dst.
func AppendUvarint(dst []byte, v uint32) []byte {
	if v >= 1<<28 {
		dst = append(dst, byte(v>>28)&0x7F|0x80)
	}
	if v >= 1<<21 {
		dst = append(dst, byte(v>>21)&0x7F|0x80)
	}
	if v >= 1<<14 {
		dst = append(dst, byte(v>>14)&0x7F|0x80)
	}
	if v >= 1<<7 {
		dst = append(dst, byte(v>>7)&0x7F|0x80)
	}
	return append(dst, byte(v)&0x7F)
}

// Uvarint decodes a VLQ from the front of data, returning the value and
// the number of bytes consumed.
func Uvarint(data []byte) (uint32, int, error) {
	var v uint32
	for i, b := range data {
		if i >= MaxVLQLen {
			return 0, 0, ErrVLQRange
		}
		if i == MaxVLQLen-1 && v > (1<<32-1)>>7 {
			return 0, 0, ErrVLQRange
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}
