package tfluna

import (
	"io"

	"github.com/mbalug7/go-tfluna/pkg/hal"
)

type regWrite struct {
	reg   hal.RegAddress
	value byte
}

// fakeBus emulates a single sensor behind the transaction oriented bus
type fakeBus struct {
	device    hal.DeviceAddress
	regs      map[hal.RegAddress]byte
	writes    []regWrite
	requests  int
	failRead  int                     // 1-based RequestBytes call that returns nothing, 0 never fails
	failWrite map[hal.RegAddress]bool // register writes that are not acknowledged
	txLimit   int                     // transmit buffer size, 0 is unlimited

	txAddr  hal.DeviceAddress
	txBuf   []byte
	pointer hal.RegAddress
	rx      []byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		device:    DefaultAddress,
		regs:      make(map[hal.RegAddress]byte),
		failWrite: make(map[hal.RegAddress]bool),
	}
}

func (f *fakeBus) BeginTransaction(addr hal.DeviceAddress) {
	f.txAddr = addr
	f.txBuf = f.txBuf[:0]
}

func (f *fakeBus) WriteByte(b byte) error {
	if f.txLimit > 0 && len(f.txBuf) >= f.txLimit {
		return hal.TxDataTooLong
	}
	f.txBuf = append(f.txBuf, b)
	return nil
}

func (f *fakeBus) EndTransaction() error {
	if f.txAddr != f.device {
		return hal.TxAddressNack
	}
	if len(f.txBuf) == 0 {
		return nil
	}
	reg := hal.RegAddress(f.txBuf[0])
	if len(f.txBuf) > 1 && f.failWrite[reg] {
		return hal.TxDataNack
	}
	f.pointer = reg
	if len(f.txBuf) > 1 {
		f.regs[reg] = f.txBuf[1]
		f.writes = append(f.writes, regWrite{reg: reg, value: f.txBuf[1]})
	}
	return nil
}

func (f *fakeBus) RequestBytes(addr hal.DeviceAddress, count int) int {
	f.requests++
	f.rx = f.rx[:0]
	if addr != f.device || f.requests == f.failRead {
		return 0
	}
	for i := 0; i < count; i++ {
		f.rx = append(f.rx, f.regs[f.pointer+hal.RegAddress(i)])
	}
	return len(f.rx)
}

func (f *fakeBus) ReadByte() (byte, error) {
	if len(f.rx) == 0 {
		return 0, io.EOF
	}
	b := f.rx[0]
	f.rx = f.rx[1:]
	return b, nil
}

func (f *fakeBus) setData(dist, flux, temp uint16) {
	f.regs[DIST_LO] = byte(dist)
	f.regs[DIST_HI] = byte(dist >> 8)
	f.regs[FLUX_LO] = byte(flux)
	f.regs[FLUX_HI] = byte(flux >> 8)
	f.regs[TEMP_LO] = byte(temp)
	f.regs[TEMP_HI] = byte(temp >> 8)
}
