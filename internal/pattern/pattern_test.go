package pattern

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicLine(t *testing.T) {
	table, err := Parse(strings.NewReader("100 10101010\n"))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	step := table.Step(0)
	assert.Equal(t, 100*time.Millisecond, step.Duration)
	assert.Equal(t, uint8(0b10101010), step.Mask)
}

func TestParse_DotSeparatorsIgnored(t *testing.T) {
	table, err := Parse(strings.NewReader("100 1010.1100\n"))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, uint8(0b10101100), table.Step(0).Mask)
}

func TestParse_DurationFloorAndRounding(t *testing.T) {
	cases := []struct {
		input int
		want  time.Duration
	}{
		{0, 70 * time.Millisecond},
		{40, 70 * time.Millisecond},
		{69, 70 * time.Millisecond},
		{74, 70 * time.Millisecond},
		{75, 80 * time.Millisecond},
		{84, 80 * time.Millisecond},
		{85, 90 * time.Millisecond},
		{100, 100 * time.Millisecond},
	}

	for _, c := range cases {
		got := roundDuration(c.input)
		assert.Equalf(t, c.want, got, "roundDuration(%d)", c.input)
	}
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	input := "\n100 11110000\nnot a pattern line\n200 00001111\n"
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, uint8(0b11110000), table.Step(0).Mask)
	assert.Equal(t, uint8(0b00001111), table.Step(1).Mask)
}

func TestParse_ShortMaskIsSkipped(t *testing.T) {
	input := "100 101\n200 00001111\n"
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, uint8(0b00001111), table.Step(0).Mask)
}

func TestTable_TotalDuration(t *testing.T) {
	table, err := Parse(strings.NewReader("100 11110000\n200 00001111\n"))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, table.TotalDuration())
}

func TestPinMap_HasEightEntries(t *testing.T) {
	assert.Len(t, PinMap, 8)
}
