// Package config loads the panel configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BeatGlow/aqm1248a"
)

// DefaultInterval is the time between frames when a panel sets none.
const DefaultInterval = 1200 * time.Millisecond

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Log configures the application logger.
type Log struct {
	Level string `yaml:"level"` // zerolog level name
}

// Panel is one LCD module on its own SPI bus.
type Panel struct {
	Name  string `yaml:"name"`
	Bus   string `yaml:"bus"` // spireg port name, e.g. SPI0.0
	CLK   string `yaml:"clk,omitempty"`
	MOSI  string `yaml:"mosi,omitempty"`
	CS    string `yaml:"cs,omitempty"`
	RS    string `yaml:"rs"`
	Reset string `yaml:"reset"`

	Interval time.Duration `yaml:"interval"`
	Contrast *uint8        `yaml:"contrast,omitempty"` // 0-7
	Volume   *uint8        `yaml:"volume,omitempty"`   // 0-63
	Inverted bool          `yaml:"inverted,omitempty"`
	Rotation string        `yaml:"rotation,omitempty"` // standard (or 0) | flip (or 180)

	// Frames cycled by the refresh loop, see frame.Parse.
	Frames []string `yaml:"frames"`
}

// SPIConfig returns the driver connection settings for the panel.
func (p *Panel) SPIConfig() *aqm1248a.SPIConfig {
	return &aqm1248a.SPIConfig{
		Bus:   p.Bus,
		CLK:   p.CLK,
		MOSI:  p.MOSI,
		CS:    p.CS,
		RS:    p.RS,
		Reset: p.Reset,
	}
}

// Config is the whole configuration file.
type Config struct {
	Log    Log     `yaml:"log"`
	Panels []Panel `yaml:"panels"`
}

// Default returns a single panel configuration on SPI0.
func Default() *Config {
	spi := aqm1248a.DefaultSPIConfig
	return &Config{
		Log: Log{Level: "info"},
		Panels: []Panel{{
			Name:     "lcd",
			Bus:      spi.Bus,
			CLK:      spi.CLK,
			MOSI:     spi.MOSI,
			CS:       spi.CS,
			RS:       spi.RS,
			Reset:    spi.Reset,
			Interval: DefaultInterval,
			Frames:   []string{"blank", "pattern"},
		}},
	}
}

// Load reads the configuration at path, fills in defaults and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &c, nil
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	for i := range c.Panels {
		p := &c.Panels[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("lcd%d", i+1)
		}
		if p.Interval == 0 {
			p.Interval = DefaultInterval
		}
	}
}

// Validate checks the configuration without touching hardware.
func (c *Config) Validate() error {
	if len(c.Panels) == 0 {
		return fmt.Errorf("%w: no panels", ErrInvalid)
	}
	var (
		names = make(map[string]bool)
		buses = make(map[string]bool)
	)
	for _, p := range c.Panels {
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate panel name %q", ErrInvalid, p.Name)
		}
		names[p.Name] = true
		if buses[p.Bus] {
			return fmt.Errorf("%w: panel %q: bus %q is already in use", ErrInvalid, p.Name, p.Bus)
		}
		buses[p.Bus] = true

		if p.RS == "" {
			return fmt.Errorf("%w: panel %q: rs pin is required", ErrInvalid, p.Name)
		}
		if p.Reset == "" {
			return fmt.Errorf("%w: panel %q: reset pin is required", ErrInvalid, p.Name)
		}
		if p.Interval <= 0 {
			return fmt.Errorf("%w: panel %q: interval must be positive", ErrInvalid, p.Name)
		}
		if p.Contrast != nil && *p.Contrast > 7 {
			return fmt.Errorf("%w: panel %q: contrast %d > 7", ErrInvalid, p.Name, *p.Contrast)
		}
		if p.Volume != nil && *p.Volume > 63 {
			return fmt.Errorf("%w: panel %q: volume %d > 63", ErrInvalid, p.Name, *p.Volume)
		}
		if _, err := aqm1248a.ParseRotation(p.Rotation); err != nil {
			return fmt.Errorf("%w: panel %q: %v", ErrInvalid, p.Name, err)
		}
		if len(p.Frames) == 0 {
			return fmt.Errorf("%w: panel %q: no frames", ErrInvalid, p.Name)
		}
	}
	return nil
}
