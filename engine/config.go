package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the engine's tunable knobs. Defaults are fine for normal
// play; a romantic.yaml next to the binary overrides them.
type Config struct {
	// MoveOverheadMs is reserved per move for protocol and I/O jitter.
	MoveOverheadMs int `yaml:"move_overhead_ms"`
	// MinThinkMs is the floor for any computed time budget.
	MinThinkMs int `yaml:"min_think_ms"`
	// DefaultMovesToGo is the conservative horizon used when the clock gives
	// no explicit movestogo.
	DefaultMovesToGo int `yaml:"default_moves_to_go"`
	// BookPath points at a CSV opening book; empty disables book probing.
	BookPath string `yaml:"book_path"`
	// ValidateStack turns on fingerprint checking on every undo. Meant for
	// development and the test harness, not for rated play.
	ValidateStack bool `yaml:"validate_stack"`
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		MoveOverheadMs:   30,
		MinThinkMs:       5,
		DefaultMovesToGo: 40,
		LogLevel:         "info",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// a malformed one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.MoveOverheadMs < 0 || cfg.MinThinkMs < 0 || cfg.DefaultMovesToGo <= 0 {
		return DefaultConfig(), fmt.Errorf("parsing %s: negative or zero time settings", path)
	}
	return cfg, nil
}
