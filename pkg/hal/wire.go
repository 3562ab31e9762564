package hal

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// BufferLength is the size of the transmit buffer, the same limit the Arduino Wire library has
const BufferLength = 32

// Transferer is a bus that performs a whole write-then-read exchange in one call.
// periph.io i2c.Bus and tinygo drivers.I2C both satisfy it.
type Transferer interface {
	Tx(addr uint16, w, r []byte) error
}

// WireBus adapts a Transferer to the transaction oriented Bus
type WireBus struct {
	tx      Transferer
	timeout time.Duration
	mu      sync.Mutex    // protects the transaction state
	busy    chan struct{} // held for the whole Tx call, also by a transfer that outlived its timeout
	addr    DeviceAddress
	txBuf   []byte
	rxBuf   []byte
}

type WireOption func(*WireBus)

// WithTimeout bounds every transfer, zero waits forever
func WithTimeout(timeout time.Duration) WireOption {
	return func(obj *WireBus) {
		obj.timeout = timeout
	}
}

func NewWireBus(tx Transferer, opts ...WireOption) *WireBus {
	obj := &WireBus{
		tx:    tx,
		busy:  make(chan struct{}, 1),
		txBuf: make([]byte, 0, BufferLength),
	}
	for _, opt := range opts {
		opt(obj)
	}
	return obj
}

// FromDrivers wraps a TinyGo drivers I2C bus
func FromDrivers(bus drivers.I2C, opts ...WireOption) *WireBus {
	return NewWireBus(bus, opts...)
}

func (obj *WireBus) BeginTransaction(addr DeviceAddress) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.addr = addr
	obj.txBuf = obj.txBuf[:0]
}

func (obj *WireBus) WriteByte(b byte) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if len(obj.txBuf) >= BufferLength {
		return TxDataTooLong
	}
	obj.txBuf = append(obj.txBuf, b)
	return nil
}

func (obj *WireBus) EndTransaction() error {
	obj.mu.Lock()
	w := make([]byte, len(obj.txBuf))
	copy(w, obj.txBuf)
	addr := obj.addr
	obj.txBuf = obj.txBuf[:0]
	obj.mu.Unlock()

	err := obj.transfer(addr, w, nil)
	if err != nil {
		var txErr TxError
		if errors.As(err, &txErr) {
			return err
		}
		return fmt.Errorf("%w: %w", TxOther, err)
	}
	return nil
}

func (obj *WireBus) RequestBytes(addr DeviceAddress, count int) int {
	obj.mu.Lock()
	obj.rxBuf = obj.rxBuf[:0]
	obj.mu.Unlock()
	if count <= 0 {
		return 0
	}
	if count > BufferLength {
		count = BufferLength
	}
	r := make([]byte, count)
	if err := obj.transfer(addr, nil, r); err != nil {
		return 0
	}
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.rxBuf = append(obj.rxBuf, r...)
	return len(obj.rxBuf)
}

func (obj *WireBus) ReadByte() (byte, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if len(obj.rxBuf) == 0 {
		return 0, io.EOF
	}
	b := obj.rxBuf[0]
	obj.rxBuf = obj.rxBuf[1:]
	return b, nil
}

// transfer runs one Tx at a time. With a timeout, waiting for the bus and the transfer
// itself share the same deadline.
func (obj *WireBus) transfer(addr DeviceAddress, w, r []byte) error {
	if obj.timeout <= 0 {
		obj.busy <- struct{}{}
		defer func() { <-obj.busy }()
		return obj.tx.Tx(uint16(addr), w, r)
	}

	deadline := time.NewTimer(obj.timeout)
	defer deadline.Stop()
	select {
	case obj.busy <- struct{}{}:
	case <-deadline.C:
		return TxTimeout
	}

	// r is only handed back to the caller when the transfer finished in time
	buf := make([]byte, len(r))
	done := make(chan error, 1)
	go func() {
		defer func() { <-obj.busy }()
		done <- obj.tx.Tx(uint16(addr), w, buf)
	}()
	select {
	case <-deadline.C:
		return TxTimeout
	case err := <-done:
		if err != nil {
			return err
		}
		copy(r, buf)
		return nil
	}
}
