// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package loop

import (
	"container/heap"
	"sync"
	"time"
)

// Clock reports the current time of a loop.
type Clock interface {
	Now() time.Time
}

// Scheduler runs one-shot callbacks on a loop.
type Scheduler interface {
	Clock
	// AfterFunc arranges for fn to run on the loop goroutine once d has
	// elapsed on the loop's clock.
	AfterFunc(d time.Duration, fn func()) *Timer
}

// Timer is a pending one-shot callback.
type Timer struct {
	q     *queue
	at    time.Time
	fn    func()
	seq   uint64
	index int // position in the heap, -1 once fired or stopped
}

// When returns the time the timer is due.
func (t *Timer) When() time.Time { return t.at }

// Stop cancels the timer. It reports whether the call prevented the
// callback from running. Stop on a nil Timer returns false.
func (t *Timer) Stop() bool {
	if t == nil || t.q == nil {
		return false
	}
	return t.q.remove(t)
}

// Pending reports whether the timer is still queued.
func (t *Timer) Pending() bool {
	if t == nil || t.q == nil {
		return false
	}
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	return t.index >= 0
}

// queue is a deadline-ordered set of timers.
type queue struct {
	mu  sync.Mutex
	h   timerHeap
	seq uint64
}

func (q *queue) add(at time.Time, fn func()) *Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	t := &Timer{q: q, at: at, fn: fn, seq: q.seq}
	heap.Push(&q.h, t)
	return t
}

func (q *queue) remove(t *Timer) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&q.h, t.index)
	return true
}

// next returns the earliest deadline.
func (q *queue) next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return time.Time{}, false
	}
	return q.h[0].at, true
}

// popDue removes and returns the earliest timer due at now, or nil.
func (q *queue) popDue(now time.Time) *Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 || q.h[0].at.After(now) {
		return nil
	}
	return heap.Pop(&q.h).(*Timer)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// timerHeap implements heap.Interface ordered by deadline, then by
// insertion order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
