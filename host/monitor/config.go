package monitor

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors tickmon.yaml
type Config struct {
	Device       string  `yaml:"device"`
	Baud         int     `yaml:"baud"`
	Unit         string  `yaml:"unit"`           // micros, millis or secs
	FlowPerPulse float64 `yaml:"flow_per_pulse"` // 0 disables flow-rate output
}

func defaultConfig() Config {
	return Config{
		Device: "/dev/ttyACM0",
		Baud:   115200,
		Unit:   UnitMicros,
	}
}

// LoadConfig reads YAML and overrides defaults; empty path = defaults only.
// An unreadable or malformed file is an error, not a silent fallback.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	// sanity clamps
	if cfg.Baud <= 0 {
		cfg.Baud = 115200
	}
	switch cfg.Unit {
	case UnitMicros, UnitMillis, UnitSecs:
	default:
		cfg.Unit = UnitMicros
	}
	if cfg.FlowPerPulse < 0 {
		cfg.FlowPerPulse = 0
	}

	return cfg, nil
}
