package frames

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Kernel names accepted by ParseKernel.
const (
	Nearest    = "nearest"
	Bilinear   = "bilinear"
	CatmullRom = "catmullrom"
)

// ParseKernel maps a kernel name to an x/image scaler.
func ParseKernel(name string) (draw.Scaler, error) {
	switch strings.ToLower(name) {
	case Nearest, "":
		return draw.NearestNeighbor, nil
	case Bilinear:
		return draw.ApproxBiLinear, nil
	case CatmullRom:
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown resample kernel %q", name)
	}
}

var errNoWidth = errors.New("resample width must be positive")

// Resample stretches every frame to width LEDs. The row count is the time
// axis of the animation and is left alone.
func (s *Sequence) Resample(width int, k draw.Scaler) (*Sequence, error) {
	if width <= 0 {
		return nil, errNoWidth
	}
	if width == s.width {
		out := &Sequence{width: s.width, height: s.height, data: make([]byte, len(s.data))}
		copy(out.data, s.data)
		return out, nil
	}
	if k == nil {
		k = draw.NearestNeighbor
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, s.height))
	k.Scale(dst, dst.Bounds(), s.Image(), image.Rect(0, 0, s.width, s.height), draw.Src, nil)
	return FromImage(dst)
}
