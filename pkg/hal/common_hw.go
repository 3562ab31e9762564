package hal

import (
	"fmt"
	"time"
)

// DeviceAddress is a 7-bit address of a slave device on the two-wire bus
type DeviceAddress uint8

// TxError is a non-zero transaction status reported by a bus at the end of a transaction
type TxError uint8

const (
	TxDataTooLong TxError = iota + 1
	TxAddressNack
	TxDataNack
	TxOther
	TxTimeout
)

func (e TxError) Error() string {
	switch e {
	case TxDataTooLong:
		return "transaction data too long"
	case TxAddressNack:
		return "address not acknowledged"
	case TxDataNack:
		return "data not acknowledged"
	case TxTimeout:
		return "transaction timeout"
	}
	return fmt.Sprintf("transaction failed with status %d", uint8(e))
}

// Bus is a transaction oriented two-wire bus.
// Bytes written between BeginTransaction and EndTransaction are buffered and sent when
// the transaction ends. RequestBytes reads count bytes from the device and returns how
// many of them can be taken with ReadByte.
type Bus interface {
	BeginTransaction(addr DeviceAddress)
	WriteByte(b byte) error
	EndTransaction() error
	RequestBytes(addr DeviceAddress, count int) int
	ReadByte() (byte, error)
}

// HWHandler controls the sensor lines that are not part of the bus
type HWHandler interface {
	PowerCycle(offTime time.Duration) error
	WaitDataReady(timeout time.Duration) error
	Close() error
}
