// pkg/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/mbalug7/go-tfluna/pkg/hal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus       string       `yaml:"bus"`        // I2C bus name, empty selects the first bus
	Address   uint8        `yaml:"address"`    // sensor address, 0 selects the factory default
	TimeoutMs *int         `yaml:"timeout_ms"` // per transaction, 0 waits forever, unset selects the default
	LogLevel  *int         `yaml:"log_level"`
	GPIO      GPIOConfig   `yaml:"gpio"`
	Serial    SerialConfig `yaml:"serial"`
}

// ---- GPIO ----

type GPIOConfig struct {
	Chip     string `yaml:"chip"`
	PowerPin *int   `yaml:"power_pin"` // optional
	ReadyPin *int   `yaml:"ready_pin"` // optional
}

// ---- SERIAL ----

type SerialConfig struct {
	Port      string `yaml:"port"`
	Baud      int    `yaml:"baud"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Load reads and decodes a YAML config file, unknown keys are rejected
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Default is the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

func (c *Config) DeviceAddress() hal.DeviceAddress {
	return hal.DeviceAddress(c.Address)
}

// Timeout is the per transaction bus timeout, zero disables it
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMs == nil {
		return 0
	}
	return time.Duration(*c.TimeoutMs) * time.Millisecond
}

func (c *Config) SerialTimeout() time.Duration {
	return time.Duration(c.Serial.TimeoutMs) * time.Millisecond
}

// PowerPin returns the configured pin or -1
func (c *Config) PowerPin() int {
	if c.GPIO.PowerPin == nil {
		return -1
	}
	return *c.GPIO.PowerPin
}

// ReadyPin returns the configured pin or -1
func (c *Config) ReadyPin() int {
	if c.GPIO.ReadyPin == nil {
		return -1
	}
	return *c.GPIO.ReadyPin
}

// HasGPIO reports whether any sensor line is wired
func (c *Config) HasGPIO() bool {
	return c.GPIO.PowerPin != nil || c.GPIO.ReadyPin != nil
}
