// pkg/config/validate.go
package config

import (
	"fmt"
)

var supportedBauds = map[int]bool{
	9600: true, 14400: true, 19200: true, 38400: true, 56000: true,
	57600: true, 115200: true, 230400: true, 256000: true, 460800: true, 921600: true,
}

// Validate checks configuration correctness.
// Zero values are accepted, Normalize replaces them with defaults.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Address != 0 && (cfg.Address < 0x08 || cfg.Address > 0x77) {
		return fmt.Errorf("address 0x%02X out of range 0x08-0x77", cfg.Address)
	}
	if cfg.TimeoutMs != nil && (*cfg.TimeoutMs < 0 || *cfg.TimeoutMs > 60000) {
		return fmt.Errorf("timeout_ms %d out of range 0-60000", *cfg.TimeoutMs)
	}
	if cfg.LogLevel != nil && (*cfg.LogLevel < 0 || *cfg.LogLevel > 6) {
		return fmt.Errorf("log_level %d out of range 0-6", *cfg.LogLevel)
	}

	// ------------------------------------------------------------
	// GPIO
	// ------------------------------------------------------------

	for name, pin := range map[string]*int{"power_pin": cfg.GPIO.PowerPin, "ready_pin": cfg.GPIO.ReadyPin} {
		if pin != nil && *pin < 0 {
			return fmt.Errorf("gpio.%s %d must not be negative", name, *pin)
		}
	}
	if cfg.GPIO.PowerPin != nil && cfg.GPIO.ReadyPin != nil && *cfg.GPIO.PowerPin == *cfg.GPIO.ReadyPin {
		return fmt.Errorf("gpio.power_pin and gpio.ready_pin must differ")
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	if cfg.Serial.Baud != 0 && !supportedBauds[cfg.Serial.Baud] {
		return fmt.Errorf("serial.baud %d is not supported by the sensor", cfg.Serial.Baud)
	}
	if cfg.Serial.TimeoutMs < 0 {
		return fmt.Errorf("serial.timeout_ms %d must not be negative", cfg.Serial.TimeoutMs)
	}
	return nil
}
