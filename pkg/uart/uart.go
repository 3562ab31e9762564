// Package uart reads measurements from the sensor when it is wired for its serial interface.
// The sensor streams 9 byte frames: 0x59 0x59 DistL DistH AmpL AmpH TempL TempH Checksum.
package uart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mbalug7/go-tfluna/pkg/tfluna"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const (
	DefaultBaud = 115200

	frameHeader byte = 0x59
	frameLength      = 9
	// a header must show up within a few frame lengths, otherwise the stream is not a sensor stream
	maxHeaderSearch = 4 * frameLength
)

// Open opens the serial port with the sensor defaults, 8N1.
// Reads return after timeout when the sensor stops streaming.
func Open(name string, baud int, timeout time.Duration) (*serial.Port, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	config := &serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: timeout,
	}
	port, err := serial.OpenPort(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port, err: %w", err)
	}
	return port, nil
}

// Reader decodes data frames from a serial stream
type Reader struct {
	r   *bufio.Reader
	log *logrus.Entry
}

func NewReader(r io.Reader, log *logrus.Entry) *Reader {
	return &Reader{
		r:   bufio.NewReaderSize(r, 64),
		log: log,
	}
}

// ReadMeasurement returns the next valid frame.
// The signal policy of the I2C interface applies, a weak or saturated signal
// returns the measurement together with an error.
func (obj *Reader) ReadMeasurement() (tfluna.Measurement, error) {
	var frame [frameLength]byte
	if err := obj.sync(); err != nil {
		return tfluna.Measurement{}, err
	}
	frame[0], frame[1] = frameHeader, frameHeader

	for i := 2; i < frameLength; i++ {
		b, err := obj.readByte()
		if err != nil {
			return tfluna.Measurement{}, err
		}
		frame[i] = b
	}

	if sum := checksum(frame[:frameLength-1]); sum != frame[frameLength-1] {
		if obj.log != nil {
			obj.log.Debugf("checksum mismatch: % X", frame)
		}
		return tfluna.Measurement{}, &tfluna.Error{
			Op:     "read frame",
			Status: tfluna.StatusChecksumError,
			Err:    fmt.Errorf("checksum 0x%02X, expected 0x%02X", frame[frameLength-1], sum),
		}
	}

	var m tfluna.Measurement
	copy(m.Raw[:], frame[2:8])
	m.Distance = int16(uint16(frame[2]) | uint16(frame[3])<<8)
	m.Flux = int16(uint16(frame[4]) | uint16(frame[5])<<8)
	m.Temperature = int16(uint16(frame[6]) | uint16(frame[7])<<8)

	if status := tfluna.CheckSignal(m.Flux); status != tfluna.StatusReady {
		return m, &tfluna.Error{Op: "read frame", Status: status}
	}
	return m, nil
}

// ReadDistance returns the distance of the next valid frame in centimeters
func (obj *Reader) ReadDistance() (int16, error) {
	m, err := obj.ReadMeasurement()
	return m.Distance, err
}

// sync consumes bytes until two consecutive header bytes were read
func (obj *Reader) sync() error {
	var prev byte
	for scanned := 0; scanned < maxHeaderSearch; scanned++ {
		b, err := obj.readByte()
		if err != nil {
			return err
		}
		if prev == frameHeader && b == frameHeader {
			return nil
		}
		prev = b
	}
	return &tfluna.Error{Op: "read frame", Status: tfluna.StatusHeaderError}
}

func (obj *Reader) readByte() (byte, error) {
	b, err := obj.r.ReadByte()
	if err == nil {
		return b, nil
	}
	// a read timeout surfaces as EOF, or as no progress when the port keeps returning nothing
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress) {
		return 0, &tfluna.Error{Op: "read frame", Status: tfluna.StatusTimeout, Err: err}
	}
	return 0, &tfluna.Error{Op: "read frame", Status: tfluna.StatusSerialError, Err: err}
}

func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
