package tfluna

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mbalug7/go-tfluna/pkg/hal"
	"github.com/sirupsen/logrus"
)

// RawFrame holds the data registers DIST_LO to TEMP_HI as they were read
type RawFrame [dataFrameLength]byte

// Measurement is a single reading of the sensor
type Measurement struct {
	Distance    int16 // cm
	Flux        int16 // signal strength
	Temperature int16 // 0.01 Celsius
	Raw         RawFrame
}

func (m Measurement) Celsius() float32 {
	return float32(m.Temperature) / 100
}

func (m Measurement) Fahrenheit() float32 {
	return m.Celsius()*9/5 + 32
}

const weakSignalThreshold int16 = 100

var errNoData = errors.New("no data available")

// CheckSignal applies the validity policy to a signal strength value.
// 0xFFFF means the receiver is saturated, anything below 100 is too weak to trust the distance.
func CheckSignal(flux int16) Status {
	if uint16(flux) == 0xFFFF {
		return StatusStrongSignal
	}
	if flux < weakSignalThreshold {
		return StatusWeakSignal
	}
	return StatusReady
}

type Option func(*Client)

// WithLogger enables debug logging of every register access
func WithLogger(log *logrus.Entry) Option {
	return func(obj *Client) {
		obj.log = log
	}
}

// Client talks to one or more sensors sharing a bus, the device is selected per call
type Client struct {
	bus hal.Bus
	mu  sync.Mutex // one transaction in flight at a time
	log *logrus.Entry
}

func NewClient(bus hal.Bus, opts ...Option) *Client {
	obj := &Client{
		bus: bus,
	}
	for _, opt := range opts {
		opt(obj)
	}
	return obj
}

// Device binds the client to a single sensor address
func (obj *Client) Device(addr hal.DeviceAddress) *Device {
	return &Device{client: obj, Addr: addr}
}

func (obj *Client) readRegister(reg hal.RegAddress, addr hal.DeviceAddress) (byte, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()

	obj.bus.BeginTransaction(addr)
	if err := obj.bus.WriteByte(reg.ToByte()); err != nil {
		return 0, obj.fail("read register", reg, addr, writeStatus(err), err)
	}
	if err := obj.bus.EndTransaction(); err != nil {
		return 0, obj.fail("read register", reg, addr, StatusI2CWriteError, err)
	}

	// request one byte, the bus is released when it is received
	if obj.bus.RequestBytes(addr, 1) < 1 {
		return 0, obj.fail("read register", reg, addr, StatusI2CReadError, errNoData)
	}
	value, err := obj.bus.ReadByte()
	if err != nil {
		return 0, obj.fail("read register", reg, addr, StatusI2CReadError, err)
	}
	if obj.log != nil {
		obj.log.Debugf("0x%02X: read reg 0x%02X = 0x%02X", uint8(addr), reg.ToByte(), value)
	}
	return value, nil
}

func (obj *Client) writeRegister(reg hal.RegAddress, addr hal.DeviceAddress, value byte) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()

	obj.bus.BeginTransaction(addr)
	for _, b := range []byte{reg.ToByte(), value} {
		if err := obj.bus.WriteByte(b); err != nil {
			return obj.fail("write register", reg, addr, writeStatus(err), err)
		}
	}
	if err := obj.bus.EndTransaction(); err != nil {
		return obj.fail("write register", reg, addr, StatusI2CWriteError, err)
	}
	if obj.log != nil {
		obj.log.Debugf("0x%02X: write reg 0x%02X = 0x%02X", uint8(addr), reg.ToByte(), value)
	}
	return nil
}

func (obj *Client) fail(op string, reg hal.RegAddress, addr hal.DeviceAddress, status Status, err error) error {
	if obj.log != nil {
		obj.log.WithError(err).Debugf("0x%02X: %s 0x%02X failed: %s", uint8(addr), op, reg.ToByte(), status)
	}
	return &Error{Op: fmt.Sprintf("%s 0x%02X", op, reg.ToByte()), Reg: reg, Status: status, Err: err}
}

func writeStatus(err error) Status {
	if errors.Is(err, hal.TxDataTooLong) {
		return StatusI2CLengthError
	}
	return StatusI2CWriteError
}

// readRegisters fills buf from consecutive registers starting at start, it stops at the first failure
func (obj *Client) readRegisters(start hal.RegAddress, addr hal.DeviceAddress, buf []byte) error {
	for i := range buf {
		value, err := obj.readRegister(start+hal.RegAddress(i), addr)
		if err != nil {
			return err
		}
		buf[i] = value
	}
	return nil
}

// readUint16 reads a little-endian word from the lo and hi registers
func (obj *Client) readUint16(lo, hi hal.RegAddress, addr hal.DeviceAddress) (uint16, error) {
	l, err := obj.readRegister(lo, addr)
	if err != nil {
		return 0, err
	}
	h, err := obj.readRegister(hi, addr)
	if err != nil {
		return 0, err
	}
	return uint16(l) | uint16(h)<<8, nil
}

// GetData reads distance, signal strength and chip temperature.
// When the signal is too weak or saturated the measurement is still returned
// together with an error carrying StatusWeakSignal or StatusStrongSignal.
func (obj *Client) GetData(addr hal.DeviceAddress) (Measurement, error) {
	var m Measurement
	if err := obj.readRegisters(DIST_LO, addr, m.Raw[:]); err != nil {
		return Measurement{}, fmt.Errorf("failed to get data: %w", err)
	}

	m.Distance = int16(uint16(m.Raw[0]) | uint16(m.Raw[1])<<8)
	m.Flux = int16(uint16(m.Raw[2]) | uint16(m.Raw[3])<<8)
	m.Temperature = int16(uint16(m.Raw[4]) | uint16(m.Raw[5])<<8)

	if status := CheckSignal(m.Flux); status != StatusReady {
		return m, &Error{Op: "get data", Reg: FLUX_LO, Status: status}
	}
	return m, nil
}

// GetDistance is GetData without signal strength and temperature, the signal policy still applies
func (obj *Client) GetDistance(addr hal.DeviceAddress) (int16, error) {
	m, err := obj.GetData(addr)
	return m.Distance, err
}

// Device is a sensor at a fixed address
type Device struct {
	client *Client
	Addr   hal.DeviceAddress
}

func (obj *Device) GetData() (Measurement, error) {
	return obj.client.GetData(obj.Addr)
}

func (obj *Device) ReadDistance() (int16, error) {
	return obj.client.GetDistance(obj.Addr)
}
