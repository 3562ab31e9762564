package uart

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mbalug7/go-tfluna/pkg/hal"
	"github.com/mbalug7/go-tfluna/pkg/tfluna"
)

var _ hal.Ranger = (*Reader)(nil)

func frame(dist, amp, temp uint16) []byte {
	f := []byte{
		frameHeader, frameHeader,
		byte(dist), byte(dist >> 8),
		byte(amp), byte(amp >> 8),
		byte(temp), byte(temp >> 8),
	}
	return append(f, checksum(f))
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("port closed")
}

func TestReadMeasurement(t *testing.T) {
	r := NewReader(bytes.NewReader(frame(300, 500, 2500)), nil)

	m, err := r.ReadMeasurement()
	if err != nil {
		t.Fatalf("ReadMeasurement err=%v", err)
	}
	if m.Distance != 300 || m.Flux != 500 || m.Temperature != 2500 {
		t.Fatalf("unexpected measurement %+v", m)
	}
	if m.Raw != (tfluna.RawFrame{0x2C, 0x01, 0xF4, 0x01, 0xC4, 0x09}) {
		t.Fatalf("unexpected raw frame % X", m.Raw)
	}
}

func TestReadMeasurement_ResyncAfterGarbage(t *testing.T) {
	stream := append([]byte{0x00, 0x59, 0x13, 0x37}, frame(42, 1000, 3000)...)
	stream = append(stream, frame(43, 1000, 3000)...)
	r := NewReader(bytes.NewReader(stream), nil)

	for _, want := range []int16{42, 43} {
		dist, err := r.ReadDistance()
		if err != nil {
			t.Fatalf("ReadDistance err=%v", err)
		}
		if dist != want {
			t.Fatalf("expected %d, got %d", want, dist)
		}
	}
}

func TestReadMeasurement_Checksum(t *testing.T) {
	f := frame(300, 500, 2500)
	f[len(f)-1]++
	_, err := NewReader(bytes.NewReader(f), nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusChecksumError {
		t.Fatalf("expected StatusChecksumError, got %v", err)
	}
}

func TestReadMeasurement_NoHeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader(make([]byte, 100)), nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusHeaderError {
		t.Fatalf("expected StatusHeaderError, got %v", err)
	}
}

func TestReadMeasurement_Timeout(t *testing.T) {
	f := frame(300, 500, 2500)
	_, err := NewReader(bytes.NewReader(f[:5]), nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusTimeout {
		t.Fatalf("expected StatusTimeout, got %v", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF to be wrapped, got %v", err)
	}
}

func TestReadMeasurement_SerialError(t *testing.T) {
	_, err := NewReader(failingReader{}, nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusSerialError {
		t.Fatalf("expected StatusSerialError, got %v", err)
	}
}

func TestReadMeasurement_SignalPolicy(t *testing.T) {
	m, err := NewReader(bytes.NewReader(frame(120, 30, 2500)), nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusWeakSignal {
		t.Fatalf("expected StatusWeakSignal, got %v", err)
	}
	if m.Distance != 120 {
		t.Fatalf("expected distance 120, got %d", m.Distance)
	}

	_, err = NewReader(bytes.NewReader(frame(120, 0xFFFF, 2500)), nil).ReadMeasurement()
	if tfluna.StatusOf(err) != tfluna.StatusStrongSignal {
		t.Fatalf("expected StatusStrongSignal, got %v", err)
	}
}
