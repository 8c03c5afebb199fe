// Package config holds the sequencer's runtime configuration, populated
// from CLI flags and an optional board profile file.
package config

import (
	"fmt"
	"os"

	"github.com/ledsync/ledsync/internal/gpio"
)

// Config holds every setting the orchestrator needs for a playback run.
// Populated by cmd/ledsync from CLI flags, then validated before use.
type Config struct {
	// MusicDir is the directory song audio and pattern files live in.
	MusicDir string

	// Board identifies which Pi generation's GPIO base address to mmap.
	Board gpio.BoardGeneration

	// Pins lists the GPIO line for each of the 8 pattern mask bits, MSB
	// first. Defaults to pattern.PinMap.
	Pins []int

	// UDPAddr is an address for songsource.ReceiveUDP to listen on for
	// remote song selection requests, e.g. "0.0.0.0:5005". cmd/ledsync
	// only stores it; nothing in this module starts a listener from it.
	UDPAddr string

	// LogPath, if non-empty, is the directory run reports and raw CSVs are
	// written to. Empty means reports are only printed to stdout.
	LogPath string

	// Verbose enables debug-level structured logging.
	Verbose bool

	// UseHardware selects the malgo-backed audio device and the real GPIO
	// mmap backend. False uses the in-memory stub backends, for running on
	// a development host with no sound card or GPIO.
	UseHardware bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MusicDir:    "/home/pi/music",
		Board:       gpio.BoardBCM2711,
		Pins:        []int{22, 5, 6, 26, 23, 24, 25, 16},
		UDPAddr:     "",
		LogPath:     "",
		Verbose:     false,
		UseHardware: false,
	}
}

// Validate checks that the configuration is internally consistent and that
// referenced directories exist.
func (c *Config) Validate() error {
	if c.MusicDir == "" {
		return fmt.Errorf("config: music directory must be set")
	}
	if info, err := os.Stat(c.MusicDir); err != nil || !info.IsDir() {
		return fmt.Errorf("config: music directory %q is not accessible: %w", c.MusicDir, err)
	}
	if len(c.Pins) != 8 {
		return fmt.Errorf("config: expected 8 pins, got %d", len(c.Pins))
	}
	return nil
}

// BoardGenerationFromString parses a board generation flag value, matching
// the original build-time RPI2/RPI3/RPI4 macros as runtime strings.
func BoardGenerationFromString(s string) (gpio.BoardGeneration, error) {
	switch s {
	case "bcm2835", "pi1", "zero":
		return gpio.BoardBCM2835, nil
	case "bcm2836", "bcm2837", "pi2", "pi3":
		return gpio.BoardBCM2836_7, nil
	case "bcm2711", "pi4":
		return gpio.BoardBCM2711, nil
	default:
		return 0, fmt.Errorf("config: unknown board generation %q", s)
	}
}
