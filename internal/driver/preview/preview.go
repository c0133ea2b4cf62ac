package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/lightpaint/internal/led"
)

// Driver is a Transport that renders the strip on the console. Data writes
// are held until the latch arrives, then decoded back to RGB and drawn.
type Driver struct {
	mu      sync.Mutex
	drawer  display.Drawer
	channel int
	pending []byte
	rgb     []byte

	// Latched counts the frames drawn so far.
	Latched int
}

// New draws leds pixels on the terminal.
func New(leds int) *Driver {
	return NewWithDrawer(screen.New(leds))
}

func NewWithDrawer(d display.Drawer) *Driver {
	return &Driver{drawer: d, channel: -1}
}

func (d *Driver) Configure(channel int, clock physic.Frequency) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if channel < 0 {
		return fmt.Errorf("invalid channel %d", channel)
	}
	d.channel = channel
	return nil
}

func (d *Driver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.channel < 0 {
		return errors.New("preview not configured")
	}
	return nil
}

func (d *Driver) WriteBytes(channel int, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if channel != d.channel {
		return fmt.Errorf("preview configured for channel %d, not %d", d.channel, channel)
	}
	if !isLatch(b) {
		d.pending = append(d.pending[:0], b...)
		return nil
	}
	if len(d.pending) == 0 {
		return nil
	}
	if cap(d.rgb) < len(d.pending) {
		d.rgb = make([]byte, len(d.pending))
	}
	d.rgb = d.rgb[:len(d.pending)]
	led.DecodeLPD8806(d.rgb, d.pending)
	d.pending = d.pending[:0]
	d.Latched++
	return d.drawer.Draw(d.drawer.Bounds(), rowImage(d.rgb), image.Point{})
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drawer.Halt()
}

func isLatch(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func rowImage(rgb []byte) *image.NRGBA {
	n := len(rgb) / 3
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		img.SetNRGBA(i, 0, color.NRGBA{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2], A: 255})
	}
	return img
}
