package linux

import (
	"errors"
	"testing"
	"time"

	"github.com/warthog618/gpiod"
)

func TestHWHandler_UnconfiguredLines(t *testing.T) {
	h := &HWHandler{readyWaiters: make(map[string]chan bool)}

	if err := h.PowerCycle(time.Millisecond); err == nil {
		t.Fatalf("expected error without power line")
	}
	if err := h.WaitDataReady(time.Millisecond); err == nil {
		t.Fatalf("expected error without ready line")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
}

func TestHWHandler_ReadyEventNotifiesWaiters(t *testing.T) {
	h := &HWHandler{readyWaiters: make(map[string]chan bool)}
	a := make(chan bool, 1)
	b := make(chan bool, 1)
	h.readyWaiters["a"] = a
	h.readyWaiters["b"] = b

	h.onReadyPinRiseEvent(gpiod.LineEvent{})

	for name, ch := range map[string]chan bool{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Fatalf("waiter %s was not notified", name)
		}
	}
	if len(h.readyWaiters) != 0 {
		t.Fatalf("expected waiters to be removed, %d left", len(h.readyWaiters))
	}
}

func TestHWHandler_EdgeWhileSamplingIsNotLost(t *testing.T) {
	h := &HWHandler{readyWaiters: make(map[string]chan bool)}
	value := func() (int, error) {
		h.onReadyPinRiseEvent(gpiod.LineEvent{})
		return 0, nil
	}

	start := time.Now()
	if err := h.waitReady(value, time.Second); err != nil {
		t.Fatalf("waitReady err=%v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("expected the edge to be seen at once, waited %s", elapsed)
	}
}

func TestHWHandler_WaitReadyRemovesWaiter(t *testing.T) {
	h := &HWHandler{readyWaiters: make(map[string]chan bool)}

	if err := h.waitReady(func() (int, error) { return 1, nil }, time.Second); err != nil {
		t.Fatalf("line high: err=%v", err)
	}
	if err := h.waitReady(func() (int, error) { return 0, errors.New("io") }, time.Second); err == nil {
		t.Fatalf("expected value error")
	}
	if err := h.waitReady(func() (int, error) { return 0, nil }, 10*time.Millisecond); err == nil {
		t.Fatalf("expected timeout")
	}
	if len(h.readyWaiters) != 0 {
		t.Fatalf("expected no waiters left, %d left", len(h.readyWaiters))
	}
}
