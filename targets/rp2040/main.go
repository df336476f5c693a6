//go:build rp2040 || rp2350

// Event-measure demo: times how long a button is held and streams each
// measurement to the host as a framed report over USB CDC.
package main

import (
	"machine"

	"tickhal/core"
	"tickhal/protocol"
)

const buttonPin = machine.GP15

func main() {
	src := initSystemTimer()
	counter := core.NewTickCounter(src)

	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	var seq uint8
	frame := make([]byte, 0, protocol.MaxFrameLen)
	for {
		waitPin(buttonPin, true)
		counter.Start()
		waitPin(buttonPin, false)

		rep := protocol.Report{Seq: seq, Tickrate: src.Tickrate()}
		ticks, err := counter.ElapsedTicks()
		if err != nil {
			rep.Flags |= protocol.FlagOverflow
		} else {
			rep.Ticks = ticks
		}

		frame = protocol.AppendReport(frame[:0], rep)
		machine.Serial.Write(frame)
		seq++
	}
}

// waitPin busy-polls until the pin reads the wanted level.
func waitPin(pin machine.Pin, level bool) {
	for pin.Get() != level {
	}
}
