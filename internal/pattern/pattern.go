package pattern

import (
	"fmt"

	"github.com/coreman2200/lightpaint/internal/frames"
)

type Kind string

const (
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	White      Kind = "white"
)

// Kinds lists every built-in pattern.
var Kinds = []Kind{IndexSweep, RGBTest, White}

func Parse(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown pattern %q", name)
}

// Rows is the number of frames k produces on a strip of leds.
func (k Kind) Rows(leds int) int {
	switch k {
	case IndexSweep:
		return leds
	case RGBTest:
		return 3
	case White:
		return 1
	}
	return 0
}

// Generate renders k for a strip of leds into a new sequence.
func Generate(k Kind, leds int) (*frames.Sequence, error) {
	if leds <= 0 {
		return nil, fmt.Errorf("pattern %s needs a positive led count, got %d", k, leds)
	}
	rows := k.Rows(leds)
	if rows == 0 {
		return nil, fmt.Errorf("unknown pattern %q", k)
	}
	seq, err := frames.New(leds, rows)
	if err != nil {
		return nil, err
	}
	for step := 0; step < rows; step++ {
		fill(k, step, seq.Row(step))
	}
	return seq, nil
}

// fill writes one step of k into a zeroed row.
func fill(k Kind, step int, rgb []byte) {
	n := len(rgb) / frames.BytesPerLED
	switch k {
	case IndexSweep:
		rgb[step*3+0], rgb[step*3+1], rgb[step*3+2] = 255, 255, 255
	case RGBTest:
		for i := 0; i < n; i++ {
			rgb[i*3+step] = 255
		}
	case White:
		for i := range rgb {
			rgb[i] = 255
		}
	}
}
