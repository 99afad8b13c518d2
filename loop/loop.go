// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package loop provides the single-threaded main loop that drives paints
// and deferred callbacks.
//
// Loop runs posted functions and due timers on the goroutine that calls
// Run, so callbacks never race with each other. Manual is a loop with a
// fake clock for tests and offline replays: timers fire synchronously
// inside Advance.
package loop

import (
	"context"
	"time"
)

// Loop is a main loop on the wall clock.
type Loop struct {
	tasks chan func()
	wake  chan struct{}
	q     queue
}

// New creates a loop accepting up to backlog posted functions before Post
// blocks.
func New(backlog int) *Loop {
	return &Loop{
		tasks: make(chan func(), max(backlog, 1)),
		wake:  make(chan struct{}, 1),
	}
}

// Now returns the wall clock time, including the monotonic reading.
func (l *Loop) Now() time.Time { return time.Now() }

// Post queues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.tasks <- fn
}

// AfterFunc queues fn to run on the loop goroutine after d.
// Safe for concurrent use.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	t := l.q.add(l.Now().Add(d), fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return t
}

// Pending returns the number of queued timers.
func (l *Loop) Pending() int { return l.q.len() }

// Run dispatches posted functions and due timers until ctx is done.
// It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	var (
		timer  *time.Timer
		expiry <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		l.fireDue()

		expiry = nil
		if at, ok := l.q.next(); ok {
			wait := max(time.Until(at), 0)
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			expiry = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		case <-l.wake:
		case <-expiry:
		}
	}
}

func (l *Loop) fireDue() {
	now := l.Now()
	for t := l.q.popDue(now); t != nil; t = l.q.popDue(now) {
		t.fn()
	}
}

var _ Scheduler = (*Loop)(nil)
