package led

import (
	"fmt"
	"math"
	"strings"
)

// GammaMode selects how channel intensities are corrected before encoding.
type GammaMode string

const (
	GammaOff GammaMode = "off"
	// GammaLiteral raises the raw 0..255 value to 2.5 without normalizing.
	// Anything above 0 saturates to 255.
	GammaLiteral GammaMode = "literal"
	// GammaNormalized raises v/255 to 2.5 before scaling back up.
	GammaNormalized GammaMode = "normalized"
)

const gammaExponent = 2.5

func ParseGammaMode(s string) (GammaMode, error) {
	switch m := GammaMode(strings.ToLower(s)); m {
	case GammaOff, "":
		return GammaOff, nil
	case GammaLiteral, GammaNormalized:
		return m, nil
	default:
		return "", fmt.Errorf("unknown gamma mode %q", s)
	}
}

// LUT maps an 8-bit intensity to its corrected value.
type LUT [256]byte

// BuildLUT precomputes the table for mode. GammaOff yields nil.
func BuildLUT(mode GammaMode) *LUT {
	var f func(byte) byte
	switch mode {
	case GammaLiteral:
		f = GammaLiteralValue
	case GammaNormalized:
		f = GammaNormalizedValue
	default:
		return nil
	}
	var l LUT
	for v := 0; v < 256; v++ {
		l[v] = f(byte(v))
	}
	return &l
}

// Apply corrects every byte of buf in place. A nil LUT is the identity.
func (l *LUT) Apply(buf []byte) {
	if l == nil {
		return
	}
	for i, v := range buf {
		buf[i] = l[v]
	}
}

// GammaLiteralValue computes floor(255 * v^2.5 + 0.5) clamped to [0,255].
func GammaLiteralValue(v byte) byte {
	return clampByte(math.Floor(255.0*math.Pow(float64(v), gammaExponent) + 0.5))
}

// GammaNormalizedValue computes floor(255 * (v/255)^2.5 + 0.5).
func GammaNormalizedValue(v byte) byte {
	return clampByte(math.Floor(255.0*math.Pow(float64(v)/255.0, gammaExponent) + 0.5))
}

func clampByte(x float64) byte {
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return byte(x)
}
