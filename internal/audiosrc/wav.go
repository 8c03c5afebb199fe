package audiosrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// WavStream serves frames from a WAV file's data chunk, bypassing the ring
// buffer entirely. OpenWav memory-maps the file and decodes the whole data
// chunk into an in-memory int16 slice once, at open time; reads index into
// that slice and do not touch the mapping itself.
type WavStream struct {
	mapping    []byte
	pcm        []int16 // PCM samples decoded from the data chunk, interleaved by channel
	sampleRate int
	channels   int
	totalFrame int
	framesRead int
}

// OpenWav memory-maps path and locates its PCM data chunk. Only 16-bit PCM
// WAV files are supported, matching the reference loader.
func OpenWav(path string) (*WavStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiosrc: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("audiosrc: stat %s: %w", path, err)
	}

	mapping, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("audiosrc: mmap %s: %w", path, err)
	}

	// Best-effort: lock the mapping so playback never pays for a page
	// fault. A failure here (no CAP_IPC_LOCK, memlock rlimit too low) is
	// not fatal, matching the reference loader's "continuing anyway".
	if err := unix.Mlock(mapping); err != nil {
		slog.Warn("audiosrc: mlock WAV mapping failed, continuing anyway", "path", path, "error", err)
	}

	s, err := parseWav(mapping)
	if err != nil {
		unix.Munmap(mapping)
		return nil, fmt.Errorf("audiosrc: %s: %w", path, err)
	}
	s.mapping = mapping
	return s, nil
}

func parseWav(data []byte) (*WavStream, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate    uint32
		numChannels   uint16
		bitsPerSample uint16
		audioFormat   uint16
		dataOffset    int
		dataSize      uint32
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := data[offset : offset+4]
		chunkSize := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if body+16 > len(data) {
				return nil, fmt.Errorf("fmt chunk too small")
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			numChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case bytes.Equal(chunkID, []byte("data")):
			dataOffset = body
			dataSize = chunkSize
		}

		offset = body + int(chunkSize) + int(chunkSize&1) // chunks are word-aligned
		if chunkID[0] == 'd' && dataOffset != 0 {
			break
		}
	}

	if dataOffset == 0 {
		return nil, fmt.Errorf("no data chunk found")
	}
	if audioFormat != 1 || bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported WAV format (need PCM 16-bit)")
	}
	if numChannels == 0 {
		return nil, fmt.Errorf("invalid channel count")
	}

	end := dataOffset + int(dataSize)
	if end > len(data) {
		end = len(data) - (len(data)-dataOffset)%2
	}

	pcm := bytesToInt16(data[dataOffset:end])
	totalFrames := len(pcm) / int(numChannels)

	return &WavStream{
		pcm:        pcm,
		sampleRate: int(sampleRate),
		channels:   int(numChannels),
		totalFrame: totalFrames,
	}, nil
}

// bytesToInt16 decodes a little-endian byte slice into a newly allocated
// slice of int16 samples, one sample at a time; the result does not alias b.
func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
	}
	return out
}

func (s *WavStream) Format() Format    { return FormatWav }
func (s *WavStream) SampleRate() int   { return s.sampleRate }
func (s *WavStream) Channels() int     { return s.channels }
func (s *WavStream) AvailableFrames() int {
	return s.totalFrame - s.framesRead
}

// ReadFrames copies out of the PCM samples decoded at open time; no
// decoding or buffering happens per read.
func (s *WavStream) ReadFrames(buf []int16) (int, error) {
	framesLeft := s.totalFrame - s.framesRead
	if framesLeft == 0 {
		return 0, ErrFinished
	}

	wantFrames := len(buf) / s.channels
	if wantFrames > framesLeft {
		wantFrames = framesLeft
	}
	if wantFrames == 0 {
		return 0, nil
	}

	start := s.framesRead * s.channels
	samples := wantFrames * s.channels
	copy(buf[:samples], s.pcm[start:start+samples])

	s.framesRead += wantFrames
	return wantFrames, nil
}

// RemainingFrames implements audiosrc.FrameCounter: a WAV's total frame
// count is known exactly from the header, so the audio writer can stop
// before a residual partial cycle instead of draining frame by frame.
func (s *WavStream) RemainingFrames() int {
	return s.AvailableFrames()
}

// Close unmaps the backing file.
func (s *WavStream) Close() error {
	if s.mapping == nil {
		return nil
	}
	_ = unix.Munlock(s.mapping) // best-effort, mirrors the best-effort Mlock in OpenWav
	err := unix.Munmap(s.mapping)
	s.mapping = nil
	s.pcm = nil
	return err
}
