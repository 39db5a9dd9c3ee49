package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
// The calibration defaults must match the firmware build they were measured
// against: 200 full steps × 4 microsteps on a 4 mm lead screw.
const (
	DefaultBaudRate          = 115200
	DefaultReadTimeout       = 100 * time.Millisecond
	DefaultForceFactor       = 2.217e-04 // raw ADC value × factor = Newton
	DefaultStepsPerMM        = 200.0
	DefaultPreloadN          = 10.0
	DefaultModulusMinPct     = 0.05
	DefaultModulusMaxPct     = 0.25
	DefaultBroadcastInterval = 1 * time.Second
)

// Config is the top-level configuration for both the acquisition and the
// analysis tools. Fields map 1:1 to config.example.yaml.
type Config struct {
	Link        LinkConfig        `yaml:"link"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Monitor     MonitorConfig     `yaml:"monitor"`
}

// LinkConfig holds the serial connection settings.
type LinkConfig struct {
	// Port is the serial device, e.g. /dev/ttyACM0 or COM7.
	Port string `yaml:"port"`

	// Baud is the line rate; must match the firmware.
	Baud int `yaml:"baud"`

	// ReadTimeout bounds a single blocking read so the reader stays
	// responsive to shutdown.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// CalibrationConfig holds the raw-to-engineering-unit conversion constants.
type CalibrationConfig struct {
	// ForceFactor converts the raw load cell value to Newtons.
	ForceFactor float64 `yaml:"force_factor"`

	// StepsPerMM converts the stepper position to crosshead displacement.
	StepsPerMM float64 `yaml:"steps_per_mm"`
}

// AnalysisConfig holds the post-processing parameters.
type AnalysisConfig struct {
	// PreloadN is the force threshold confirming grip engagement; samples
	// before the first one at or above it are trimmed.
	PreloadN float64 `yaml:"preload_n"`

	// ModulusMinPct and ModulusMaxPct bound the strain window (in percent)
	// used for the elastic modulus fit.
	ModulusMinPct float64 `yaml:"modulus_min_pct"`
	ModulusMaxPct float64 `yaml:"modulus_max_pct"`

	// ComplianceTable is the path to the machine compliance lookup file.
	ComplianceTable string `yaml:"compliance_table"`
}

// MonitorConfig holds the optional HTTP monitoring endpoint settings.
type MonitorConfig struct {
	// HTTPPort is the listen port for /api/v1/status, /metrics and /ws/live.
	// Zero disables the monitor server.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the live hub pushes a snapshot
	// to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Link: LinkConfig{
			Baud:        DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
		},
		Calibration: CalibrationConfig{
			ForceFactor: DefaultForceFactor,
			StepsPerMM:  DefaultStepsPerMM,
		},
		Analysis: AnalysisConfig{
			PreloadN:      DefaultPreloadN,
			ModulusMinPct: DefaultModulusMinPct,
			ModulusMaxPct: DefaultModulusMaxPct,
		},
		Monitor: MonitorConfig{
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Link.Port == "" {
		return fmt.Errorf("link.port is required")
	}
	if cfg.Link.Baud <= 0 {
		return fmt.Errorf("link.baud must be positive")
	}
	if cfg.Link.ReadTimeout <= 0 {
		return fmt.Errorf("link.read_timeout must be positive")
	}
	if cfg.Calibration.ForceFactor <= 0 {
		return fmt.Errorf("calibration.force_factor must be positive")
	}
	if cfg.Calibration.StepsPerMM <= 0 {
		return fmt.Errorf("calibration.steps_per_mm must be positive")
	}
	if cfg.Analysis.PreloadN < 0 {
		return fmt.Errorf("analysis.preload_n must not be negative")
	}
	if cfg.Analysis.ModulusMinPct >= cfg.Analysis.ModulusMaxPct {
		return fmt.Errorf("analysis.modulus_min_pct must be below modulus_max_pct")
	}
	if cfg.Monitor.HTTPPort < 0 || cfg.Monitor.HTTPPort > 65535 {
		return fmt.Errorf("monitor.http_port out of range")
	}
	if cfg.Monitor.BroadcastInterval <= 0 {
		return fmt.Errorf("monitor.broadcast_interval must be positive")
	}
	return nil
}
