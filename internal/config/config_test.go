package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledsync/ledsync/internal/gpio"
)

func TestDefaultConfig_HasEightPins(t *testing.T) {
	cfg := DefaultConfig()
	assert.Len(t, cfg.Pins, 8)
	assert.Equal(t, gpio.BoardBCM2711, cfg.Board)
}

func TestValidate_RejectsMissingMusicDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MusicDir = filepath.Join(t.TempDir(), "does-not-exist")
	assert.Error(t, cfg.Validate())
}

func TestValidate_AcceptsExistingDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MusicDir = t.TempDir()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsWrongPinCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MusicDir = t.TempDir()
	cfg.Pins = []int{1, 2, 3}
	assert.Error(t, cfg.Validate())
}

func TestBoardGenerationFromString(t *testing.T) {
	cases := map[string]gpio.BoardGeneration{
		"pi1":     gpio.BoardBCM2835,
		"zero":    gpio.BoardBCM2835,
		"pi2":     gpio.BoardBCM2836_7,
		"pi3":     gpio.BoardBCM2836_7,
		"bcm2837": gpio.BoardBCM2836_7,
		"pi4":     gpio.BoardBCM2711,
		"bcm2711": gpio.BoardBCM2711,
	}
	for input, want := range cases {
		got, err := BoardGenerationFromString(input)
		require.NoErrorf(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, err := BoardGenerationFromString("pi5")
	assert.Error(t, err)
}

func TestLoadProfile_OverridesBoardAndPins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := "board: pi3\npins: [1, 2, 3, 4, 5, 6, 7, 8]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadProfile(path, cfg))

	assert.Equal(t, gpio.BoardBCM2836_7, cfg.Board)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, cfg.Pins)
}

func TestLoadProfile_RejectsWrongPinCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := "pins: [1, 2, 3]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	assert.Error(t, LoadProfile(path, cfg))
}

func TestLoadProfile_MissingFileIsError(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"), cfg))
}
