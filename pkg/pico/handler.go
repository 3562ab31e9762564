//go:build pico

package pico

import (
	"fmt"
	"machine"
	"time"

	"github.com/mbalug7/go-tfluna/pkg/hal"
)

// bootTime is how long the sensor needs after power up before it answers on the bus
const bootTime = 200 * time.Millisecond

var _ hal.HWHandler = (*HWHandler)(nil)

type HWHandler struct {
	bus      *hal.WireBus
	PowerPin machine.Pin // sensor supply enable, machine.NoPin if not wired
	ReadyPin machine.Pin // multiplexing output of the sensor, machine.NoPin if not wired
	ready    chan bool
}

func NewHWHandler(i2c *machine.I2C, sda, scl machine.Pin, powerPin, readyPin machine.Pin, timeout time.Duration) (*HWHandler, error) {
	err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       sda,
		SCL:       scl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure I2C: %w", err)
	}

	handler := &HWHandler{
		bus:      hal.FromDrivers(i2c, hal.WithTimeout(timeout)),
		PowerPin: powerPin,
		ReadyPin: readyPin,
		ready:    make(chan bool, 1),
	}

	if powerPin != machine.NoPin {
		powerPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		powerPin.High()
	}

	if readyPin != machine.NoPin {
		readyPin.Configure(machine.PinConfig{Mode: machine.PinInput})
		err = readyPin.SetInterrupt(machine.PinRising, func(p machine.Pin) {
			select {
			case handler.ready <- true:
			default:
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set ready pin interrupt: %w", err)
		}
	}
	time.Sleep(bootTime)
	return handler, nil
}

// Bus returns the transaction oriented bus the sensor client runs on
func (obj *HWHandler) Bus() *hal.WireBus {
	return obj.bus
}

func (obj *HWHandler) PowerCycle(offTime time.Duration) error {
	if obj.PowerPin == machine.NoPin {
		return fmt.Errorf("power pin is not configured")
	}
	obj.PowerPin.Low()
	time.Sleep(offTime)
	obj.PowerPin.High()
	time.Sleep(bootTime)
	return nil
}

func (obj *HWHandler) WaitDataReady(timeout time.Duration) error {
	if obj.ReadyPin == machine.NoPin {
		return fmt.Errorf("ready pin is not configured")
	}
	if obj.ReadyPin.Get() {
		return nil
	}
	select {
	case <-time.After(timeout):
		return fmt.Errorf("data ready wait timeouted")
	case <-obj.ready:
		return nil
	}
}

func (obj *HWHandler) Close() error {
	if obj.ReadyPin != machine.NoPin {
		return obj.ReadyPin.SetInterrupt(0, nil)
	}
	return nil
}
