// pkg/config/normalize.go
package config

const (
	defaultAddress       = 0x10
	defaultTimeoutMs     = 100
	defaultGPIOChip      = "gpiochip0"
	defaultSerialPort    = "/dev/ttyS0"
	defaultSerialBaud    = 115200
	defaultSerialTimeout = 1000
)

// Normalize applies defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Address == 0 {
		cfg.Address = defaultAddress
	}
	if cfg.TimeoutMs == nil {
		timeout := defaultTimeoutMs
		cfg.TimeoutMs = &timeout
	}
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = defaultGPIOChip
	}
	if cfg.Serial.Port == "" {
		cfg.Serial.Port = defaultSerialPort
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = defaultSerialBaud
	}
	if cfg.Serial.TimeoutMs == 0 {
		cfg.Serial.TimeoutMs = defaultSerialTimeout
	}
}
