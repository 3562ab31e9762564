package linux

import (
	"fmt"
	"sync"
	"time"

	"github.com/mazen160/go-random"
	"github.com/mbalug7/go-tfluna/pkg/hal"
	"github.com/warthog618/gpiod"
)

// NoPin disables an optional line
const NoPin = -1

// bootTime is how long the sensor needs after power up before it answers on the bus
const bootTime = 200 * time.Millisecond

var _ hal.HWHandler = (*HWHandler)(nil)

type HWHandler struct {
	chip         *gpiod.Chip
	PowerLine    *gpiod.Line          // sensor supply enable, optional
	ReadyLine    *gpiod.Line          // multiplexing output of the sensor, optional
	readyWaiters map[string]chan bool // holds channels that wait for rising ready edge
	muWaiters    sync.Mutex           // map protection mutex
	muPower      sync.Mutex           // power cycles must not overlap
}

// NewHWHandler requests the power and ready lines of the sensor, pass NoPin to skip a line
func NewHWHandler(gpioChip string, powerPin int, readyPin int) (*HWHandler, error) {
	handler := &HWHandler{
		readyWaiters: make(map[string]chan bool),
	}
	var err error
	handler.chip, err = gpiod.NewChip(gpioChip, gpiod.WithConsumer("tfluna"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GPIO chip: %w", err)
	}

	if powerPin != NoPin {
		handler.PowerLine, err = handler.chip.RequestLine(powerPin, gpiod.AsOutput(1))
		if err != nil {
			handler.Close()
			return nil, fmt.Errorf("failed to request power GPIO line: %w", err)
		}
	}

	if readyPin != NoPin {
		handler.ReadyLine, err = handler.chip.RequestLine(readyPin, gpiod.WithEventHandler(handler.onReadyPinRiseEvent), gpiod.WithRisingEdge)
		if err != nil {
			handler.Close()
			return nil, fmt.Errorf("failed to request ready GPIO line: %w", err)
		}
	}
	return handler, nil
}

func (obj *HWHandler) Close() (err error) {
	if obj.ReadyLine != nil {
		if err = obj.ReadyLine.Close(); err != nil {
			return fmt.Errorf("failed to close ready line: %w", err)
		}
	}
	if obj.PowerLine != nil {
		if err = obj.PowerLine.Close(); err != nil {
			return fmt.Errorf("failed to close power line: %w", err)
		}
	}
	if obj.chip != nil {
		if err = obj.chip.Close(); err != nil {
			return fmt.Errorf("failed to close GPIO chip: %w", err)
		}
	}
	return nil
}

// PowerCycle switches the sensor off for offTime and waits until it booted again.
// A new device address only takes effect after a power cycle.
func (obj *HWHandler) PowerCycle(offTime time.Duration) error {
	if obj.PowerLine == nil {
		return fmt.Errorf("power line is not configured")
	}
	obj.muPower.Lock()
	defer obj.muPower.Unlock()

	if err := obj.PowerLine.SetValue(0); err != nil {
		return fmt.Errorf("failed to switch sensor power off: %w", err)
	}
	time.Sleep(offTime)
	if err := obj.PowerLine.SetValue(1); err != nil {
		return fmt.Errorf("failed to switch sensor power on: %w", err)
	}
	time.Sleep(bootTime)
	return nil
}

func (obj *HWHandler) onReadyPinRiseEvent(evt gpiod.LineEvent) {
	obj.muWaiters.Lock()
	defer obj.muWaiters.Unlock()
	for id, ch := range obj.readyWaiters {
		ch <- true
		close(ch)
		delete(obj.readyWaiters, id)
	}
}

// WaitDataReady blocks until the ready line rises or the timeout expires
func (obj *HWHandler) WaitDataReady(timeout time.Duration) error {
	if obj.ReadyLine == nil {
		return fmt.Errorf("ready line is not configured")
	}
	return obj.waitReady(obj.ReadyLine.Value, timeout)
}

// waitReady registers the waiter before sampling the line, an edge in between is not lost
func (obj *HWHandler) waitReady(value func() (int, error), timeout time.Duration) error {
	// buffered, the event handler must never block on a waiter that already timed out
	ch := make(chan bool, 1)
	id, err := random.String(16)
	if err != nil {
		return fmt.Errorf("failed to generate random id: %w", err)
	}
	obj.muWaiters.Lock()
	obj.readyWaiters[id] = ch
	obj.muWaiters.Unlock()

	removeWaiter := func() {
		obj.muWaiters.Lock()
		delete(obj.readyWaiters, id)
		obj.muWaiters.Unlock()
	}

	val, err := value()
	if err != nil {
		removeWaiter()
		return fmt.Errorf("failed to get ready line value: %w", err)
	}
	if val == 1 {
		removeWaiter()
		return nil
	}

	select {
	case <-time.After(timeout):
		removeWaiter()
		return fmt.Errorf("data ready wait timeouted")
	case <-ch:
		return nil
	}
}
