package frames

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// BytesPerLED is the number of channel bytes stored per pixel (R, G, B).
const BytesPerLED = 3

// Sequence holds one frame per image row in a single contiguous arena.
// Row i starts at i*width*3. Rows are in file order, top to bottom.
type Sequence struct {
	width  int
	height int
	data   []byte
}

// New allocates a zeroed sequence of height rows, each width LEDs wide.
func New(width, height int) (*Sequence, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if width > math.MaxInt/BytesPerLED/height {
		return nil, fmt.Errorf("frame dimensions %dx%d overflow the arena", width, height)
	}
	return &Sequence{
		width:  width,
		height: height,
		data:   make([]byte, width*height*BytesPerLED),
	}, nil
}

// FromBytes wraps an existing arena. len(data) must be width*height*3.
func FromBytes(width, height int, data []byte) (*Sequence, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if len(data) != width*height*BytesPerLED {
		return nil, fmt.Errorf("arena length %d does not match %dx%d", len(data), width, height)
	}
	return &Sequence{width: width, height: height, data: data}, nil
}

func (s *Sequence) Width() int  { return s.width }
func (s *Sequence) Height() int { return s.height }
func (s *Sequence) Len() int    { return s.height }

// RowLen is the byte length of a single frame.
func (s *Sequence) RowLen() int { return s.width * BytesPerLED }

// Row returns frame i. Its capacity is clipped so appends never spill into
// the next row. Callers must treat it as read-only.
func (s *Sequence) Row(i int) []byte {
	n := s.RowLen()
	off := i * n
	return s.data[off : off+n : off+n]
}

// Bytes exposes the whole arena, row-major.
func (s *Sequence) Bytes() []byte { return s.data }

// Image returns a copy of the sequence as an NRGBA image, one row per frame.
func (s *Sequence) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		row := s.Row(y)
		for x := 0; x < s.width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: row[x*3+0],
				G: row[x*3+1],
				B: row[x*3+2],
				A: 255,
			})
		}
	}
	return img
}

// FromImage copies an image into a new sequence; alpha is discarded.
func FromImage(img image.Image) (*Sequence, error) {
	b := img.Bounds()
	s, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < s.height; y++ {
		row := s.Row(y)
		for x := 0; x < s.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x*3+0], row[x*3+1], row[x*3+2] = c.R, c.G, c.B
		}
	}
	return s, nil
}
