// tickmon streams elapsed-time measurement reports from an attached MCU
// and prints them in the configured unit, optionally with a flow rate
// derived from the interval between pulses.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"tickhal/core"
	"tickhal/host/monitor"
	"tickhal/host/serial"
	"tickhal/protocol"
)

var (
	configPath = flag.String("config", "", "Path to tickmon.yaml")
	device     = flag.String("device", "", "Serial device path (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := monitor.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *device != "" {
		cfg.Device = *device
	}

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: 100,
	})
	if err != nil {
		log.Fatalf("open %s: %v", cfg.Device, err)
	}
	defer port.Close()

	log.Printf("listening on %s (unit=%s)", cfg.Device, cfg.Unit)
	if err := run(port, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(port io.Reader, cfg monitor.Config) error {
	mon := monitor.New(port)
	for {
		rep, err := mon.Next()
		if errors.Is(err, io.EOF) {
			log.Printf("stream closed (%d frames dropped)", mon.Dropped)
			return nil
		}
		if err != nil {
			return err
		}
		printReport(os.Stdout, rep, cfg)
	}
}

func printReport(w io.Writer, rep protocol.Report, cfg monitor.Config) {
	value, err := monitor.ConvertReport(rep, cfg.Unit)
	if errors.Is(err, core.ErrOverflow) {
		fmt.Fprintf(w, "#%03d OVERFLOW\n", rep.Seq)
		return
	}
	if err != nil {
		fmt.Fprintf(w, "#%03d error: %v\n", rep.Seq, err)
		return
	}

	if cfg.FlowPerPulse > 0 {
		secs, _ := monitor.Seconds(rep)
		if secs > 0 {
			fmt.Fprintf(w, "#%03d %d %s  flow=%.3f/s\n",
				rep.Seq, value, cfg.Unit, cfg.FlowPerPulse/secs)
			return
		}
	}
	fmt.Fprintf(w, "#%03d %d %s\n", rep.Seq, value, cfg.Unit)
}
