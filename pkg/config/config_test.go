// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
bus: "1"
address: 0x22
timeout_ms: 50
log_level: 5
gpio:
  chip: gpiochip0
  power_pin: 17
  ready_pin: 27
serial:
  port: /dev/ttyAMA0
  baud: 921600
`

func intPtr(v int) *int {
	return &v
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tfluna.yaml")
	if err := os.WriteFile(path, []byte(sample), 0600); err != nil {
		t.Fatalf("write err=%v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	Normalize(cfg)

	if cfg.Bus != "1" || cfg.DeviceAddress() != 0x22 || cfg.Timeout() != 50*time.Millisecond {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.PowerPin() != 17 || cfg.ReadyPin() != 27 || !cfg.HasGPIO() {
		t.Fatalf("unexpected gpio config %+v", cfg.GPIO)
	}
	if cfg.Serial.Port != "/dev/ttyAMA0" || cfg.Serial.Baud != 921600 || cfg.SerialTimeout() != time.Second {
		t.Fatalf("unexpected serial config %+v", cfg.Serial)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != 5 {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
}

func TestLoad_ZeroTimeoutDisablesTimeout(t *testing.T) {
	cfg, err := Parse([]byte("timeout_ms: 0\n"))
	if err != nil {
		t.Fatalf("Parse err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	Normalize(cfg)

	if cfg.Timeout() != 0 {
		t.Fatalf("expected no timeout, got %s", cfg.Timeout())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("adress: 0x10\n")); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DeviceAddress() != 0x10 || cfg.Timeout() != 100*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.HasGPIO() || cfg.PowerPin() != -1 || cfg.ReadyPin() != -1 {
		t.Fatalf("gpio must be unset by default %+v", cfg.GPIO)
	}
	if cfg.Serial.Baud != 115200 {
		t.Fatalf("unexpected default baud %d", cfg.Serial.Baud)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"empty", Config{}, true},
		{"lowest address", Config{Address: 0x08}, true},
		{"highest address", Config{Address: 0x77}, true},
		{"address too low", Config{Address: 0x07}, false},
		{"address too high", Config{Address: 0x78}, false},
		{"negative timeout", Config{TimeoutMs: intPtr(-1)}, false},
		{"no timeout", Config{TimeoutMs: intPtr(0)}, true},
		{"log level", Config{LogLevel: intPtr(7)}, false},
		{"negative pin", Config{GPIO: GPIOConfig{PowerPin: intPtr(-2)}}, false},
		{"same pins", Config{GPIO: GPIOConfig{PowerPin: intPtr(4), ReadyPin: intPtr(4)}}, false},
		{"unsupported baud", Config{Serial: SerialConfig{Baud: 1234}}, false},
		{"supported baud", Config{Serial: SerialConfig{Baud: 9600}}, true},
	}
	for _, tc := range cases {
		err := Validate(&tc.cfg)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
