package frames

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestNewRejectsEmpty(t *testing.T) {
	for _, d := range [][2]int{{0, 1}, {1, 0}, {-1, 4}} {
		_, err := New(d[0], d[1])
		assert.Error(t, err, "dims %v", d)
	}
}

func TestNewRejectsOverflow(t *testing.T) {
	_, err := New(math.MaxInt/2, 2)
	assert.Error(t, err)
	_, err = New(math.MaxInt, 1)
	assert.Error(t, err)
}

func TestRowsAreArenaSlices(t *testing.T) {
	data := []byte{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
		13, 14, 15, 16, 17, 18,
	}
	s, err := FromBytes(2, 3, data)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 6, s.RowLen())
	assert.Equal(t, []byte{7, 8, 9, 10, 11, 12}, s.Row(1))
	for i := 0; i < s.Len(); i++ {
		assert.Len(t, s.Row(i), 6)
		assert.Equal(t, 6, cap(s.Row(i)), "row %d capacity leaks into the next row", i)
	}

	// appending to a row must not clobber its neighbour
	r := append(s.Row(0), 99)
	assert.Equal(t, byte(99), r[6])
	assert.Equal(t, byte(7), s.Row(1)[0])
}

func TestFromBytesLengthMismatch(t *testing.T) {
	_, err := FromBytes(2, 2, make([]byte, 11))
	assert.Error(t, err)
}

func TestImageRoundTrip(t *testing.T) {
	s, err := FromBytes(2, 1, []byte{10, 20, 30, 40, 50, 60})
	require.NoError(t, err)

	back, err := FromImage(s.Image())
	require.NoError(t, err)
	assert.Equal(t, s.Bytes(), back.Bytes())
}

func TestResampleKeepsRowCount(t *testing.T) {
	s, err := FromBytes(2, 2, []byte{
		255, 0, 0, 0, 0, 255,
		0, 255, 0, 0, 255, 0,
	})
	require.NoError(t, err)

	out, err := s.Resample(4, draw.NearestNeighbor)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width())
	assert.Equal(t, 2, out.Height())
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 0, 0, 255, 0, 0, 255}, out.Row(0))
	assert.Equal(t, []byte{0, 255, 0, 0, 255, 0, 0, 255, 0, 0, 255, 0}, out.Row(1))
}

func TestResampleSameWidthCopies(t *testing.T) {
	s, err := FromBytes(1, 1, []byte{1, 2, 3})
	require.NoError(t, err)
	out, err := s.Resample(1, nil)
	require.NoError(t, err)
	out.Bytes()[0] = 42
	assert.Equal(t, byte(1), s.Row(0)[0])
}

func TestResampleRejectsZeroWidth(t *testing.T) {
	s, err := New(3, 1)
	require.NoError(t, err)
	_, err = s.Resample(0, nil)
	assert.Error(t, err)
}

func TestParseKernel(t *testing.T) {
	for _, name := range []string{"", "nearest", "bilinear", "CatmullRom"} {
		k, err := ParseKernel(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, k, name)
	}
	_, err := ParseKernel("lanczos")
	assert.Error(t, err)
}
