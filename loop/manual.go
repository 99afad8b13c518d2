// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package loop

import "time"

// Manual is a loop on a fake clock. Time only moves in Advance, and due
// timers run synchronously in deadline order with the clock set to each
// timer's deadline.
//
// Manual is not safe for concurrent use.
type Manual struct {
	now time.Time
	q   queue
}

// NewManual creates a manual loop starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the fake clock time.
func (m *Manual) Now() time.Time { return m.now }

// AfterFunc queues fn to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) *Timer {
	return m.q.add(m.now.Add(d), fn)
}

// Advance moves the clock forward by d, running every timer that becomes
// due, including timers queued by callbacks during the advance. It returns
// the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	end := m.now.Add(d)
	n := 0
	for t := m.q.popDue(end); t != nil; t = m.q.popDue(end) {
		if t.at.After(m.now) {
			m.now = t.at
		}
		t.fn()
		n++
	}
	m.now = end
	return n
}

// RunPending advances the clock to the next timer deadline and runs it.
// It reports whether a timer ran.
func (m *Manual) RunPending() bool {
	at, ok := m.q.next()
	if !ok {
		return false
	}
	return m.Advance(max(at.Sub(m.now), 0)) > 0
}

// Pending returns the number of queued timers.
func (m *Manual) Pending() int { return m.q.len() }

var _ Scheduler = (*Manual)(nil)
