package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/lightpaint/internal/frames"
	"github.com/coreman2200/lightpaint/internal/led"
)

// DefaultPath is where the command looks for a config file.
const DefaultPath = "lightpaint.yaml"

const (
	DriverSPI = "spi"
	DriverSim = "sim"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // periph port name, e.g. /dev/spidev0.0
	Channel int    `yaml:"channel"`  // chip select
	SpeedHz int64  `yaml:"speed_hz"` // e.g. 8000000
}

type Timing struct {
	RowDelay   time.Duration `yaml:"row_delay"`
	BlankDelay time.Duration `yaml:"blank_delay"`
}

type Monitor struct {
	Addr string `yaml:"addr"` // e.g. :8080; empty disables
}

type Config struct {
	Driver      string  `yaml:"driver"` // "spi" | "sim"
	SPI         SPI     `yaml:"spi"`
	Timing      Timing  `yaml:"timing"`
	Gamma       string  `yaml:"gamma"` // "off" | "literal" | "normalized"
	LEDs        int     `yaml:"leds"`
	Resample    string  `yaml:"resample"`
	BlankOnExit bool    `yaml:"blank_on_exit"`
	Monitor     Monitor `yaml:"monitor"`
	LogLevel    string  `yaml:"log_level"`
}

// Default mirrors the strip's stock wiring: channel 0 at 8MHz, 1ms per row,
// half a second between passes.
func Default() *Config {
	return &Config{
		Driver: DriverSPI,
		SPI: SPI{
			Channel: led.DefaultChannel,
			SpeedHz: int64(led.DefaultClock / physic.Hertz),
		},
		Timing: Timing{
			RowDelay:   time.Millisecond,
			BlankDelay: 500 * time.Millisecond,
		},
		Gamma:    string(led.GammaOff),
		Resample: frames.Nearest,
		LogLevel: "info",
	}
}

// Load reads path from fs on top of Default.
func Load(fs afero.Fs, path string) (*Config, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(fs afero.Fs, path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, b, 0644)
}

// Clock is the configured SPI clock.
func (c *Config) Clock() physic.Frequency {
	return physic.Frequency(c.SPI.SpeedHz) * physic.Hertz
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSPI, DriverSim:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.SPI.Channel < 0 {
		return fmt.Errorf("spi channel %d must not be negative", c.SPI.Channel)
	}
	if c.SPI.SpeedHz <= 0 {
		return fmt.Errorf("spi speed %dHz must be positive", c.SPI.SpeedHz)
	}
	if c.Timing.RowDelay < 0 || c.Timing.BlankDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.LEDs < 0 {
		return fmt.Errorf("led count %d must not be negative", c.LEDs)
	}
	if _, err := led.ParseGammaMode(c.Gamma); err != nil {
		return err
	}
	if _, err := frames.ParseKernel(c.Resample); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
