package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGammaLiteralSaturates(t *testing.T) {
	assert.Equal(t, byte(0), GammaLiteralValue(0))
	for v := 1; v < 256; v++ {
		assert.Equal(t, byte(255), GammaLiteralValue(byte(v)), "v=%d", v)
	}
}

func TestGammaNormalized(t *testing.T) {
	assert.Equal(t, byte(0), GammaNormalizedValue(0))
	assert.Equal(t, byte(255), GammaNormalizedValue(255))
	assert.Equal(t, byte(8), GammaNormalizedValue(64))
	assert.Equal(t, byte(46), GammaNormalizedValue(128))
	assert.Equal(t, byte(139), GammaNormalizedValue(200))
	prev := byte(0)
	for v := 0; v < 256; v++ {
		got := GammaNormalizedValue(byte(v))
		assert.GreaterOrEqual(t, got, prev, "not monotonic at %d", v)
		prev = got
	}
}

func TestBuildLUT(t *testing.T) {
	assert.Nil(t, BuildLUT(GammaOff))

	l := BuildLUT(GammaNormalized)
	require.NotNil(t, l)
	for v := 0; v < 256; v++ {
		assert.Equal(t, GammaNormalizedValue(byte(v)), l[v])
	}
}

func TestLUTApply(t *testing.T) {
	buf := []byte{0, 1, 2, 255}
	BuildLUT(GammaLiteral).Apply(buf)
	assert.Equal(t, []byte{0, 255, 255, 255}, buf)

	var none *LUT
	buf = []byte{7, 8, 9}
	none.Apply(buf)
	assert.Equal(t, []byte{7, 8, 9}, buf)
}

func TestParseGammaMode(t *testing.T) {
	for in, want := range map[string]GammaMode{
		"":           GammaOff,
		"off":        GammaOff,
		"Literal":    GammaLiteral,
		"normalized": GammaNormalized,
	} {
		got, err := ParseGammaMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseGammaMode("srgb")
	assert.Error(t, err)
}
