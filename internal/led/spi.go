package led

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI is a Transport over a periph SPI port. Unless a device name is given
// the port is /dev/spidev0.<channel>.
type SPI struct {
	mu      sync.Mutex
	dev     string
	open    func(name string) (spi.PortCloser, error)
	port    spi.PortCloser
	conn    spi.Conn
	channel int
	clock   physic.Frequency
}

// NewSPI returns an unconfigured transport. dev may be empty.
func NewSPI(dev string) *SPI {
	return &SPI{dev: dev, open: openHostPort, channel: -1}
}

// NewSPIPort wraps an already opened port, e.g. a periph spitest fake.
func NewSPIPort(p spi.PortCloser) *SPI {
	return &SPI{
		open:    func(string) (spi.PortCloser, error) { return p, nil },
		channel: -1,
	}
}

func openHostPort(name string) (spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	return spireg.Open(name)
}

// PortName is the periph port name used for channel.
func (s *SPI) PortName(channel int) string {
	if s.dev != "" {
		return s.dev
	}
	return fmt.Sprintf("/dev/spidev0.%d", channel)
}

func (s *SPI) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return "spi{closed}"
	}
	return fmt.Sprintf("spi{%s}", s.port)
}

// Configure opens the port for channel and caps its clock.
func (s *SPI) Configure(channel int, clock physic.Frequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return errors.New("spi already configured")
	}
	if channel < 0 {
		return fmt.Errorf("invalid spi channel %d", channel)
	}
	if clock <= 0 {
		return fmt.Errorf("invalid spi clock %s", clock)
	}
	p, err := s.open(s.PortName(channel))
	if err != nil {
		return fmt.Errorf("open spi port %s: %w", s.PortName(channel), err)
	}
	if err := p.LimitSpeed(clock); err != nil {
		_ = p.Close()
		return fmt.Errorf("limit spi speed to %s: %w", clock, err)
	}
	s.port = p
	s.channel = channel
	s.clock = clock
	return nil
}

// Initialize connects to the port in mode 0 with 8 bit words.
func (s *SPI) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return errors.New("spi not configured")
	}
	if s.conn != nil {
		return nil
	}
	c, err := s.port.Connect(s.clock, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("spi connect: %w", err)
	}
	s.conn = c
	return nil
}

func (s *SPI) WriteBytes(channel int, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errors.New("spi not initialized")
	}
	if channel != s.channel {
		return fmt.Errorf("spi configured for channel %d, not %d", s.channel, channel)
	}
	if err := s.conn.Tx(b, nil); err != nil {
		return fmt.Errorf("spi tx: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.conn = nil
	return err
}
