package tfluna

import (
	"errors"

	"github.com/mbalug7/go-tfluna/pkg/hal"
)

// Status is the outcome of a sensor operation
type Status uint8

const (
	StatusReady Status = iota
	StatusSerialError
	StatusHeaderError
	StatusChecksumError
	StatusTimeout
	StatusPass
	StatusFail
	StatusI2CReadError
	StatusI2CWriteError
	StatusI2CLengthError
	StatusWeakSignal
	StatusStrongSignal
	StatusAmbientFlood
	StatusInvalidCommand
	StatusOther
)

var statusNames = map[Status]string{
	StatusReady:          "READY",
	StatusSerialError:    "SERIAL",
	StatusHeaderError:    "HEADER",
	StatusChecksumError:  "CHECKSUM",
	StatusTimeout:        "TIMEOUT",
	StatusPass:           "PASS",
	StatusFail:           "FAIL",
	StatusI2CReadError:   "I2C-READ",
	StatusI2CWriteError:  "I2C-WRITE",
	StatusI2CLengthError: "I2C-LENGTH",
	StatusWeakSignal:     "Signal weak",
	StatusStrongSignal:   "Signal strong",
	StatusAmbientFlood:   "Ambient light",
	StatusInvalidCommand: "No Command",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "OTHER"
}

// ErrAddressRange is returned when a new device address is outside of 0x08-0x77
var ErrAddressRange = errors.New("device address out of range")

// Error is returned by every failing sensor operation
type Error struct {
	Op     string
	Reg    hal.RegAddress
	Status Status
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Status.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf maps an error returned by this package to its status,
// nil is StatusReady and errors from elsewhere are StatusOther
func StatusOf(err error) Status {
	if err == nil {
		return StatusReady
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusOther
}
