package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSweep(t *testing.T) {
	seq, err := Generate(IndexSweep, 3)
	require.NoError(t, err)
	require.Equal(t, 3, seq.Len())
	assert.Equal(t, []byte{255, 255, 255, 0, 0, 0, 0, 0, 0}, seq.Row(0))
	assert.Equal(t, []byte{0, 0, 0, 255, 255, 255, 0, 0, 0}, seq.Row(1))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 255, 255, 255}, seq.Row(2))
}

func TestRGBChannels(t *testing.T) {
	seq, err := Generate(RGBTest, 2)
	require.NoError(t, err)
	require.Equal(t, 3, seq.Len())
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0}, seq.Row(0))
	assert.Equal(t, []byte{0, 255, 0, 0, 255, 0}, seq.Row(1))
	assert.Equal(t, []byte{0, 0, 255, 0, 0, 255}, seq.Row(2))
}

func TestWhite(t *testing.T) {
	seq, err := Generate(White, 4)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	for _, b := range seq.Row(0) {
		assert.Equal(t, byte(255), b)
	}
}

func TestGenerateRejects(t *testing.T) {
	_, err := Generate(White, 0)
	assert.Error(t, err)
	_, err = Generate(Kind("plane_z"), 8)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	for _, k := range Kinds {
		got, err := Parse(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := Parse("rainbow")
	assert.Error(t, err)
}
