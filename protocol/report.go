// Measurement report framing for the MCU-to-host link
//
// Frame layout:
//
//	sync (0x7E) | length | payload | crc16 hi | crc16 lo
//
// length counts payload bytes only; the CRC covers length and payload.
// Payload: seq byte, flags byte, VLQ ticks, VLQ tickrate.
package protocol

import "errors"

const (
	// FrameSync marks the start of a frame in the byte stream.
	FrameSync = 0x7E

	// frame bytes beyond the payload: sync, length, two CRC bytes
	frameOverhead = 4

	// MaxFrameLen bounds a complete frame: 2 fixed payload bytes plus two
	// VLQ fields at worst-case width.
	MaxFrameLen = frameOverhead + 2 + 2*MaxVLQLen
)

// Report flags
const (
	// FlagOverflow marks a measurement whose epoch overflowed; Ticks is
	// meaningless when set.
	FlagOverflow = 1 << 0
)

var (
	// ErrNoFrame reports a buffer holding no sync byte at all.
	ErrNoFrame = errors.New("no frame sync in buffer")
	// ErrIncomplete reports a frame whose tail has not arrived yet.
	ErrIncomplete = errors.New("incomplete frame")
	// ErrBadFrame reports a frame that failed CRC or payload validation.
	ErrBadFrame = errors.New("bad frame")
)

// Report carries one elapsed-time measurement from the MCU to the host.
type Report struct {
	Seq      uint8
	Flags    uint8
	Ticks    uint32
	Tickrate uint32
}

// Overflowed reports whether the measurement's epoch overflowed.
func (r Report) Overflowed() bool {
	return r.Flags&FlagOverflow != 0
}

// AppendReport appends the framed encoding of r to dst.
func AppendReport(dst []byte, r Report) []byte {
	payload := make([]byte, 0, MaxFrameLen-frameOverhead)
	payload = append(payload, r.Seq, r.Flags)
	payload = AppendUvarint(payload, r.Ticks)
	payload = AppendUvarint(payload, r.Tickrate)

	body := make([]byte, 0, 1+len(payload))
	body = append(body, byte(len(payload)))
	body = append(body, payload...)
	crc := CRC16(body)

	dst = append(dst, FrameSync)
	dst = append(dst, body...)
	return append(dst, byte(crc>>8), byte(crc))
}

// ParseReport extracts the first complete frame from buf. The returned
// count is how many leading bytes the caller should drop from its buffer:
// everything up to and including the parsed (or rejected) frame, or the
// garbage in front of a sync byte when more data is still needed.
func ParseReport(buf []byte) (Report, int, error) {
	start := 0
	for start < len(buf) && buf[start] != FrameSync {
		start++
	}
	if start == len(buf) {
		return Report{}, start, ErrNoFrame
	}
	if len(buf)-start < 2 {
		return Report{}, start, ErrIncomplete
	}

	plen := int(buf[start+1])
	if plen > MaxFrameLen-frameOverhead {
		// Resync one byte past the bogus sync.
		return Report{}, start + 1, ErrBadFrame
	}
	end := start + frameOverhead + plen
	if len(buf) < end {
		return Report{}, start, ErrIncomplete
	}

	body := buf[start+1 : end-2]
	wantCRC := uint16(buf[end-2])<<8 | uint16(buf[end-1])
	if CRC16(body) != wantCRC {
		return Report{}, start + 1, ErrBadFrame
	}

	r, err := parsePayload(body[1:])
	if err != nil {
		return Report{}, start + 1, ErrBadFrame
	}
	return r, end, nil
}

func parsePayload(p []byte) (Report, error) {
	if len(p) < 2 {
		return Report{}, ErrBadFrame
	}
	r := Report{Seq: p[0], Flags: p[1]}
	rest := p[2:]

	ticks, n, err := Uvarint(rest)
	if err != nil {
		return Report{}, err
	}
	rest = rest[n:]

	rate, n, err := Uvarint(rest)
	if err != nil {
		return Report{}, err
	}
	if len(rest[n:]) != 0 {
		return Report{}, ErrBadFrame
	}

	r.Ticks = ticks
	r.Tickrate = rate
	return r, nil
}
