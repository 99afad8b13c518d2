// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package loop

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualAdvanceOrder(t *testing.T) {
	m := NewManual(epoch)
	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	if n := m.Advance(5 * time.Millisecond); n != 0 {
		t.Errorf("Advance(5ms) ran %d callbacks, want 0", n)
	}
	if n := m.Advance(50 * time.Millisecond); n != 3 {
		t.Errorf("Advance(50ms) ran %d callbacks, want 3", n)
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if m.Now() != epoch.Add(55*time.Millisecond) {
		t.Errorf("Now() = %v, want epoch+55ms", m.Now())
	}
}

func TestManualClockAtDeadline(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(20*time.Millisecond, func() { seen = m.Now() })
	m.Advance(time.Second)
	if want := epoch.Add(20 * time.Millisecond); !seen.Equal(want) {
		t.Errorf("clock in callback = %v, want %v", seen, want)
	}
}

func TestManualRearmDuringAdvance(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			m.AfterFunc(10*time.Millisecond, rearm)
		}
	}
	m.AfterFunc(10*time.Millisecond, rearm)
	m.Advance(100 * time.Millisecond)
	if count != 3 {
		t.Errorf("re-armed callback ran %d times, want 3", count)
	}
}

func TestTimerStop(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })
	if !tm.Pending() || m.Pending() != 1 {
		t.Fatal("timer should be pending")
	}
	if !tm.Stop() {
		t.Error("first Stop() should return true")
	}
	if tm.Stop() {
		t.Error("second Stop() should return false")
	}
	m.Advance(time.Second)
	if fired || tm.Pending() {
		t.Error("stopped timer fired")
	}

	var nilTimer *Timer
	if nilTimer.Stop() || nilTimer.Pending() {
		t.Error("nil timer should be inert")
	}
}

func TestTimerStopAfterFire(t *testing.T) {
	m := NewManual(epoch)
	tm := m.AfterFunc(time.Millisecond, func() {})
	m.Advance(time.Millisecond)
	if tm.Stop() {
		t.Error("Stop() after firing should return false")
	}
}

func TestManualRunPending(t *testing.T) {
	m := NewManual(epoch)
	if m.RunPending() {
		t.Error("RunPending() with no timers should return false")
	}
	m.AfterFunc(7*time.Millisecond, func() {})
	if !m.RunPending() || m.Now() != epoch.Add(7*time.Millisecond) {
		t.Errorf("RunPending() did not advance to the deadline: %v", m.Now())
	}
}

func TestLoopRunsPostedAndTimers(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	var order []string
	l.Post(func() {
		order = append(order, "post")
		l.AfterFunc(5*time.Millisecond, func() {
			order = append(order, "timer")
			close(done)
		})
	})

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timer did not fire")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if want := []string{"post", "timer"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLoopStoppedTimerDoesNotFire(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fired := make(chan struct{}, 1)
	tm := l.AfterFunc(10*time.Millisecond, func() { fired <- struct{}{} })
	tm.Stop()
	if err := l.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	select {
	case <-fired:
		t.Error("stopped timer fired")
	default:
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", l.Pending())
	}
}
