// Package ppm decodes binary portable pixmaps (P6, 8-bit components) into a
// frame sequence, one frame per image row.
package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/spf13/afero"

	"github.com/coreman2200/lightpaint/internal/frames"
)

const (
	// Magic identifies the raw RGB pixmap flavour.
	Magic = "P6"
	// MaxComponent is the only supported component maximum.
	MaxComponent = 255
	// MaxArenaBytes caps the pixel arena a single image may allocate.
	MaxArenaBytes = 1 << 28

	maxTokenLen = 10
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrIO                  = errors.New("i/o error")
	ErrMalformedHeader     = errors.New("malformed header")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	ErrTruncatedData       = errors.New("truncated pixel data")
	ErrTooLarge            = errors.New("image too large")
)

// Header is the parsed pixmap header.
type Header struct {
	Width        int
	Height       int
	MaxComponent int
}

// DecodeFile opens path on fsys and decodes it. The file is closed on every
// return path.
func DecodeFile(fsys afero.Fs, path string) (*frames.Sequence, Header, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Header{}, fmt.Errorf("open %s: %w: %v", path, ErrFileNotFound, err)
		}
		return nil, Header{}, fmt.Errorf("open %s: %w: %v", path, ErrIO, err)
	}
	defer f.Close()

	seq, h, err := Decode(f)
	if err != nil {
		return nil, h, fmt.Errorf("decode %s: %w", path, err)
	}
	return seq, h, nil
}

// Decode reads a P6 header followed by width*height*3 pixel bytes. Short
// pixel data is an error; it is never zero-filled.
func Decode(r io.Reader) (*frames.Sequence, Header, error) {
	br := bufio.NewReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, h, err
	}

	n := h.Width * h.Height * frames.BytesPerLED
	seq, err := frames.New(h.Width, h.Height)
	if err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	got, err := io.ReadFull(br, seq.Bytes())
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, h, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedData, got, n)
	case err != nil:
		return nil, h, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return seq, h, nil
}

// ReadHeader consumes the magic, width, height and max component tokens, any
// '#' comment lines between them, and the single whitespace byte that
// separates the header from pixel data.
func ReadHeader(br *bufio.Reader) (Header, error) {
	var h Header

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return h, fmt.Errorf("%w: missing magic", ErrMalformedHeader)
	}
	if string(magic) != Magic {
		return h, fmt.Errorf("%w: bad magic %q, must be %q", ErrMalformedHeader, magic, Magic)
	}
	c, err := br.ReadByte()
	if err != nil || !isSpace(c) {
		return h, fmt.Errorf("%w: magic not followed by whitespace", ErrMalformedHeader)
	}

	fields := []struct {
		name string
		dst  *int
	}{
		{"width", &h.Width},
		{"height", &h.Height},
		{"max component", &h.MaxComponent},
	}
	for _, f := range fields {
		v, err := readToken(br)
		if err != nil {
			return h, fmt.Errorf("%w: %s: %v", ErrMalformedHeader, f.name, err)
		}
		*f.dst = v
	}

	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("%w: image size %dx%d", ErrMalformedHeader, h.Width, h.Height)
	}
	if h.MaxComponent != MaxComponent {
		return h, fmt.Errorf("%w: max component %d, need %d", ErrUnsupportedBitDepth, h.MaxComponent, MaxComponent)
	}
	if h.Width > MaxArenaBytes/frames.BytesPerLED/h.Height {
		return h, fmt.Errorf("%w: %dx%d", ErrTooLarge, h.Width, h.Height)
	}

	c, err = br.ReadByte()
	if err != nil {
		return h, fmt.Errorf("%w: no pixel data", ErrTruncatedData)
	}
	if !isSpace(c) {
		return h, fmt.Errorf("%w: header not terminated by whitespace", ErrMalformedHeader)
	}
	return h, nil
}

// readToken skips whitespace and comment lines, then parses one decimal
// token. The byte that ends the token is left unread.
func readToken(br *bufio.Reader) (int, error) {
	if err := skipSpaceAndComments(br); err != nil {
		return 0, err
	}
	var tok []byte
	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if c < '0' || c > '9' {
			if len(tok) == 0 {
				return 0, fmt.Errorf("unexpected byte %q", c)
			}
			if !isSpace(c) && c != '#' {
				return 0, fmt.Errorf("non-numeric token %q", append(tok, c))
			}
			_ = br.UnreadByte()
			break
		}
		tok = append(tok, c)
		if len(tok) > maxTokenLen {
			return 0, fmt.Errorf("token too long")
		}
	}
	if len(tok) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.Atoi(string(tok))
}

func skipSpaceAndComments(br *bufio.Reader) error {
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch {
		case c == '#':
			if _, err := br.ReadBytes('\n'); err != nil {
				return io.ErrUnexpectedEOF
			}
		case isSpace(c):
		default:
			return br.UnreadByte()
		}
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
