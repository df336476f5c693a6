// Host-side consumer of the MCU measurement stream
package monitor

import (
	"errors"
	"fmt"
	"io"

	"tickhal/core"
	"tickhal/protocol"
)

// Monitor extracts measurement reports from a raw byte stream, tolerating
// garbage and corrupt frames between valid ones.
type Monitor struct {
	r   io.Reader
	buf []byte

	// Dropped counts frames rejected for framing or CRC errors.
	Dropped int
}

// New wraps a byte stream (normally an open serial port) in a Monitor.
func New(r io.Reader) *Monitor {
	return &Monitor{r: r, buf: make([]byte, 0, 4*protocol.MaxFrameLen)}
}

// Next returns the next valid report, reading more data as needed. It
// returns the reader's error (io.EOF included) once the stream ends.
func (m *Monitor) Next() (protocol.Report, error) {
	for {
		rep, n, err := protocol.ParseReport(m.buf)
		m.buf = m.buf[n:]
		switch {
		case err == nil:
			return rep, nil
		case errors.Is(err, protocol.ErrBadFrame):
			m.Dropped++
			continue
		}

		// Need more bytes.
		chunk := make([]byte, 256)
		k, rerr := m.r.Read(chunk)
		m.buf = append(m.buf, chunk[:k]...)
		if k == 0 && rerr != nil {
			return protocol.Report{}, rerr
		}
	}
}

// Measurement units the monitor can render.
const (
	UnitMicros = "micros"
	UnitMillis = "millis"
	UnitSecs   = "secs"
)

// ConvertReport renders a report's tick count in the requested unit,
// rounded down. Reports flagged as overflowed, and tick counts too large
// for the unit, fail with core.ErrOverflow.
func ConvertReport(rep protocol.Report, unit string) (uint32, error) {
	if rep.Overflowed() {
		return 0, core.ErrOverflow
	}
	switch unit {
	case UnitMicros:
		return core.TicksToMicros(rep.Ticks, rep.Tickrate)
	case UnitMillis:
		return core.TicksToMillis(rep.Ticks, rep.Tickrate)
	case UnitSecs:
		return core.TicksToSecs(rep.Ticks, rep.Tickrate)
	}
	return 0, fmt.Errorf("unknown unit %q", unit)
}

// Seconds renders a report's tick count as fractional seconds, for rate
// math that needs sub-unit precision.
func Seconds(rep protocol.Report) (float64, error) {
	if rep.Overflowed() {
		return 0, core.ErrOverflow
	}
	return float64(rep.Ticks) / float64(rep.Tickrate), nil
}
