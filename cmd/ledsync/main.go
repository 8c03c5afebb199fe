// Command ledsync plays an audio file while driving GPIO LEDs from a
// matching pattern file, synchronized to a shared wall clock.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/ledsync/ledsync/internal/audiodevice"
	"github.com/ledsync/ledsync/internal/config"
	"github.com/ledsync/ledsync/internal/gpio"
	"github.com/ledsync/ledsync/internal/orchestrator"
	"github.com/ledsync/ledsync/internal/rtsched"
)

func main() {
	app := cli.NewApp()
	app.Name = "ledsync"
	app.Usage = "ledsync [options] <song>"
	app.Description = "Plays a song while driving GPIO LEDs from a matching pattern file"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v, verbose",
			Usage: "enable debug-level logging",
		},
		cli.StringFlag{
			Name:  "m, music-dir",
			Usage: "directory holding song audio and pattern files",
			Value: "/home/pi/music",
		},
		cli.StringFlag{
			Name:  "board",
			Usage: "GPIO board generation: pi1/zero, pi2/pi3, or pi4",
			Value: "pi4",
		},
		cli.StringFlag{
			Name:  "log-dir",
			Usage: "directory to write the run report and raw CSVs to",
		},
		cli.StringFlag{
			Name:  "udp-addr",
			Usage: "address for remote song-selection requests (stored in the config; this command starts no listener)",
		},
		cli.BoolFlag{
			Name:  "hardware",
			Usage: "use the real audio device and memory-mapped GPIO instead of in-memory stubs",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("ledsync exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		slog.SetDefault(slog.New(handler))
	}

	cfg := config.DefaultConfig()
	cfg.MusicDir = c.String("music-dir")
	cfg.LogPath = c.String("log-dir")
	cfg.UDPAddr = c.String("udp-addr")
	cfg.Verbose = c.Bool("verbose")
	cfg.UseHardware = c.Bool("hardware")

	board, err := config.BoardGenerationFromString(c.String("board"))
	if err != nil {
		return err
	}
	cfg.Board = board

	if err := cfg.Validate(); err != nil {
		return err
	}

	device, closeDevice, err := newDevice(cfg)
	if err != nil {
		return fmt.Errorf("cmd/ledsync: set up audio device: %w", err)
	}
	defer closeDevice()

	gpioWriter, closeGPIO, err := newGPIOWriter(cfg)
	if err != nil {
		return fmt.Errorf("cmd/ledsync: set up gpio: %w", err)
	}
	defer closeGPIO()

	if err := rtsched.Apply(rtsched.PriorityAudio); err != nil {
		slog.Warn("cmd/ledsync: could not apply real-time scheduling", "error", err)
	}

	ctx, stop := orchestrator.SignalContext(context.Background())
	defer stop()

	session := orchestrator.NewSession(cfg, device, gpioWriter)

	songName := c.Args().First()
	if songName == "" {
		songName, err = promptForSong(cfg.MusicDir)
		if err != nil {
			return err
		}
	}

	result, err := session.Play(ctx, songName)
	if err != nil {
		return fmt.Errorf("cmd/ledsync: play %q: %w", songName, err)
	}
	if err := result.Report.Render(os.Stdout); err != nil {
		slog.Warn("cmd/ledsync: could not render report", "error", err)
	}

	return errors.Join(result.LEDWriterErr, result.AudioWriterErr)
}

// newDevice builds the configured audio device and returns a cleanup
// function that closes it.
func newDevice(cfg *config.Config) (audiodevice.Device, func(), error) {
	if !cfg.UseHardware {
		d := audiodevice.NewStub()
		return d, func() { _ = d.Close() }, nil
	}
	d, err := newHardwareDevice()
	if err != nil {
		return nil, func() {}, err
	}
	return d, func() { _ = d.Close() }, nil
}

// newGPIOWriter builds the configured GPIO register writer and returns a
// cleanup function that unmaps it, if it was a real mapping.
func newGPIOWriter(cfg *config.Config) (gpio.RegisterWriter, func(), error) {
	if !cfg.UseHardware {
		return gpio.NewStubWriter(), func() {}, nil
	}
	mapper, err := gpio.Open(cfg.Board, cfg.Pins)
	if err != nil {
		return nil, func() {}, err
	}
	return mapper, func() { _ = mapper.Close() }, nil
}

// promptForSong shows a simple stdin menu of available songs when none was
// given on the command line, a thin stand-in for the reference
// implementation's interactive song menu.
func promptForSong(musicDir string) (string, error) {
	entries, err := os.ReadDir(musicDir)
	if err != nil {
		return "", fmt.Errorf("cmd/ledsync: list music directory: %w", err)
	}

	var names []string
	seen := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(entry.Name())
		if !strings.HasSuffix(ext, ".wav") && !strings.HasSuffix(ext, ".mp3") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".wav")
		name = strings.TrimSuffix(name, ".mp3")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("cmd/ledsync: no songs found in %s", musicDir)
	}

	fmt.Println("Available songs:")
	for i, name := range names {
		fmt.Printf("  %d) %s\n", i+1, name)
	}
	fmt.Print("Pick a song: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("cmd/ledsync: read song choice: %w", err)
	}
	choice := strings.TrimSpace(line)

	for i, name := range names {
		if choice == name || choice == fmt.Sprintf("%d", i+1) {
			return name, nil
		}
	}
	return "", fmt.Errorf("cmd/ledsync: %q is not a valid choice", choice)
}
