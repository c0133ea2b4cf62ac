package fake

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
)

// Write is one recorded transport write.
type Write struct {
	Channel int
	Data    []byte
}

// Driver records every write, useful for headless tests. Set the Fail*
// fields to inject errors.
type Driver struct {
	mu sync.Mutex

	Channel     int
	Clock       physic.Frequency
	Configured  bool
	Initialized bool
	Closed      bool
	Writes      []Write

	FailConfigure  error
	FailInitialize error
	// FailWrite is returned by the FailWriteAt'th write (1-based).
	FailWrite   error
	FailWriteAt int

	attempts int
}

func (d *Driver) Configure(channel int, clock physic.Frequency) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailConfigure != nil {
		return d.FailConfigure
	}
	d.Channel, d.Clock, d.Configured = channel, clock, true
	return nil
}

func (d *Driver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailInitialize != nil {
		return d.FailInitialize
	}
	if !d.Configured {
		return fmt.Errorf("fake: initialize before configure")
	}
	d.Initialized = true
	return nil
}

func (d *Driver) WriteBytes(channel int, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	if d.FailWrite != nil && d.attempts == d.FailWriteAt {
		return d.FailWrite
	}
	if !d.Initialized {
		return fmt.Errorf("fake: write before initialize")
	}
	d.Writes = append(d.Writes, Write{Channel: channel, Data: append([]byte(nil), b...)})
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// Recorded returns a copy of the writes so far.
func (d *Driver) Recorded() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.Writes...)
}
