// Package songsource locates a song's audio and pattern files on disk and
// listens for remote song-selection requests.
package songsource

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
)

// MaxSongNameLen bounds an incoming song name the same way the reference
// UDP listener's MAX_SONG_NAME does.
const MaxSongNameLen = 64

// UDPPort is the default port song-selection datagrams arrive on.
const UDPPort = 5005

// audioExtensions are tried in order when locating a song's audio file.
var audioExtensions = []string{".wav", ".mp3"}

// Locate finds the audio file and pattern file for baseName inside
// musicDir. The audio file may be either a .wav or .mp3; the pattern file
// is always "<baseName>.txt".
func Locate(musicDir, baseName string) (audioPath, patternPath string, err error) {
	for _, ext := range audioExtensions {
		candidate := filepath.Join(musicDir, baseName+ext)
		if _, statErr := os.Stat(candidate); statErr == nil {
			audioPath = candidate
			break
		}
	}
	if audioPath == "" {
		return "", "", fmt.Errorf("songsource: no audio file for %q in %s", baseName, musicDir)
	}

	patternPath = filepath.Join(musicDir, baseName+".txt")
	if _, statErr := os.Stat(patternPath); statErr != nil {
		return "", "", fmt.Errorf("songsource: no pattern file for %q in %s", baseName, musicDir)
	}

	return audioPath, patternPath, nil
}

// ReceiveUDP listens on addr for newline-free song name datagrams (as sent
// by a remote control app requesting a song change) and returns a channel
// of song names. The channel is closed when ctx is canceled.
func ReceiveUDP(ctx context.Context, addr string) (<-chan string, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("songsource: listen %s: %w", addr, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		buf := make([]byte, MaxSongNameLen)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("songsource: udp read error", "error", err)
				return
			}
			name := string(buf[:n])
			select {
			case out <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
