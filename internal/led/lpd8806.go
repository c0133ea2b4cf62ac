package led

import (
	"errors"
	"fmt"
)

// Protocol turns an RGB frame into a chip family's wire format.
type Protocol interface {
	Name() string
	// Encode rewrites buf in place. It must not retain buf.
	Encode(buf []byte)
	// Latch is the control write that commits shifted data into the chain.
	Latch() []byte
}

// LPD8806 drives LPD8806 strips: 7 bits per channel with the high bit set
// on every data byte, committed by three zero bytes.
type LPD8806 struct{}

var lpd8806Latch = [3]byte{0, 0, 0}

// ErrLatch marks a failure of the latch write that follows a frame.
var ErrLatch = errors.New("latch failed")

func (LPD8806) Name() string { return "lpd8806" }

func (LPD8806) Latch() []byte {
	l := lpd8806Latch
	return l[:]
}

// Encode swaps channel positions 0 and 1 of every triple, then packs each
// byte down to 7 bits with the marker bit set.
func (LPD8806) Encode(buf []byte) {
	Reorder(buf)
	Pack(buf)
}

// Reorder swaps bytes 0 and 1 of each complete triple. Byte 2 is untouched.
func Reorder(buf []byte) {
	for i := 0; i+2 < len(buf); i += 3 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// Pack drops the low bit of every byte and sets the high bit.
func Pack(buf []byte) {
	for i, v := range buf {
		buf[i] = (v >> 1) | 0x80
	}
}

// DecodeLPD8806 reverses Encode into dst. The low bit of each channel is
// lost on the wire and comes back as zero.
func DecodeLPD8806(dst, src []byte) {
	n := copy(dst, src)
	for i := 0; i < n; i++ {
		dst[i] = (dst[i] & 0x7F) << 1
	}
	Reorder(dst[:n])
}

// Show encodes buf in place with p, writes it to t and follows it with the
// protocol's latch on the same channel.
func Show(t Transport, channel int, p Protocol, buf []byte) error {
	p.Encode(buf)
	if err := t.WriteBytes(channel, buf); err != nil {
		return fmt.Errorf("%s write: %w", p.Name(), err)
	}
	if err := t.WriteBytes(channel, p.Latch()); err != nil {
		return fmt.Errorf("%s: %w: %w", p.Name(), ErrLatch, err)
	}
	return nil
}
