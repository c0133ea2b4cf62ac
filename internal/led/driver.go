package led

import "periph.io/x/conn/v3/physic"

const (
	// DefaultChannel is the SPI chip-select the strip hangs off.
	DefaultChannel = 0
	// DefaultClock is the SPI clock the strip is driven at.
	DefaultClock = 8 * physic.MegaHertz
)

// Transport abstracts the byte sink the strip is wired to (SPI, console, etc.).
type Transport interface {
	// Configure selects the channel and clock rate. Called once, before Initialize.
	Configure(channel int, clock physic.Frequency) error
	// Initialize brings the link up so writes can flow.
	Initialize() error
	// WriteBytes sends b as one contiguous write on channel.
	WriteBytes(channel int, b []byte) error
	// Close releases resources.
	Close() error
}
