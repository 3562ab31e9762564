package linux

import (
	"fmt"
	"io"
	"time"

	"github.com/mbalug7/go-tfluna/pkg/hal"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// OpenBus opens an I2C bus by name, e.g. "1" or "/dev/i2c-1", an empty name opens the first bus found.
// The returned closer releases the bus.
func OpenBus(name string, timeout time.Duration) (*hal.WireBus, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize host drivers: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I2C bus %q: %w", name, err)
	}
	return hal.NewWireBus(bus, hal.WithTimeout(timeout)), bus, nil
}
