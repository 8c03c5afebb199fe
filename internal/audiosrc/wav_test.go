package audiosrc

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWav constructs a minimal 16-bit PCM WAV file in memory for parseWav
// tests, avoiding a dependency on a fixture file on disk.
func buildWav(sampleRate uint32, channels uint16, frames []int16) []byte {
	var buf bytes.Buffer
	dataSize := uint32(len(frames) * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	byteRate := sampleRate * uint32(channels) * 2
	binary.Write(&buf, binary.LittleEndian, byteRate)
	blockAlign := channels * 2
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, s := range frames {
		binary.Write(&buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func TestParseWav_ReadsHeaderAndData(t *testing.T) {
	samples := []int16{1, -1, 2, -2, 3, -3}
	raw := buildWav(48000, 2, samples)

	s, err := parseWav(raw)
	require.NoError(t, err)
	assert.Equal(t, 48000, s.SampleRate())
	assert.Equal(t, 2, s.Channels())
	assert.Equal(t, 3, s.AvailableFrames())
}

func TestParseWav_ReadFramesMatchesOriginalOrder(t *testing.T) {
	samples := []int16{10, 20, 30, 40, 50, 60}
	raw := buildWav(44100, 2, samples)

	s, err := parseWav(raw)
	require.NoError(t, err)

	out := make([]int16, 6)
	n, err := s.ReadFrames(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, samples, out)

	_, err = s.ReadFrames(out)
	assert.ErrorIs(t, err, ErrFinished)
}

func TestParseWav_PartialReadTracksPosition(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5, 6, 7, 8}
	raw := buildWav(44100, 2, samples)

	s, err := parseWav(raw)
	require.NoError(t, err)

	first := make([]int16, 2) // 1 frame
	n, err := s.ReadFrames(first)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, []int16{1, 2}, first)
	assert.Equal(t, 3, s.AvailableFrames())

	rest := make([]int16, 6)
	n, err = s.ReadFrames(rest)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int16{3, 4, 5, 6, 7, 8}, rest)
}

func TestParseWav_RejectsNonPCM(t *testing.T) {
	raw := buildWav(44100, 2, []int16{1, 2})
	// Corrupt audio_format field (offset 20) from 1 (PCM) to 3 (float).
	binary.LittleEndian.PutUint16(raw[20:22], 3)

	_, err := parseWav(raw)
	assert.Error(t, err)
}

func TestParseWav_RejectsBadMagic(t *testing.T) {
	raw := buildWav(44100, 2, []int16{1, 2})
	raw[0] = 'X'

	_, err := parseWav(raw)
	assert.Error(t, err)
}

func TestFormat_Open_UnknownExtension(t *testing.T) {
	_, err := Open("song.ogg")
	assert.Error(t, err)
}

func TestWavStream_RemainingFramesTracksReads(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5, 6}
	raw := buildWav(44100, 2, samples)

	s, err := parseWav(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, s.RemainingFrames())

	_, err = s.ReadFrames(make([]int16, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, s.RemainingFrames())
}

func TestOpenWav_LocksMappingBestEffort(t *testing.T) {
	samples := []int16{1, -1, 2, -2}
	raw := buildWav(48000, 2, samples)

	path := filepath.Join(t.TempDir(), "song.wav")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	s, err := OpenWav(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 48000, s.SampleRate())
	assert.Equal(t, 2, s.RemainingFrames())
}
