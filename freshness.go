package shapedtex

import (
	"time"

	"github.com/gogpu/shapedtex/loop"
)

// MipmapState is the paint source chosen by a FreshnessPolicy.
type MipmapState int

const (
	// Unmipmapped paints straight from the base texture.
	Unmipmapped MipmapState = iota
	// Mipmapped paints from the mipmap tower.
	Mipmapped
)

// String returns the state name.
func (s MipmapState) String() string {
	if s == Mipmapped {
		return "mipmapped"
	}
	return "unmipmapped"
}

// FreshnessPolicy throttles mipmap regeneration by damage cadence.
//
// Content damaged within MinMipmapAge is fresh. A surface that keeps
// producing fresh damage (FastUpdateCeiling updates in a row) is painted
// from its base texture, and a one-shot timer requests a redraw once the
// content is old enough to mipmap again.
//
// FreshnessPolicy is not safe for concurrent use; it lives on the loop
// goroutine.
type FreshnessPolicy struct {
	sched   loop.Scheduler
	redraw  func()
	minAge  time.Duration
	slack   time.Duration
	ceiling int
	enabled bool

	previous    time.Time
	last        time.Time
	fastUpdates int

	earliest time.Time
	timer    *loop.Timer
}

// NewFreshnessPolicy creates a policy using cfg's timing constants.
// redraw is called from the scheduler when deferred remipmapping is due.
func NewFreshnessPolicy(cfg Config, sched loop.Scheduler, redraw func()) *FreshnessPolicy {
	return &FreshnessPolicy{
		sched:   sched,
		redraw:  redraw,
		minAge:  cfg.MinMipmapAge(),
		slack:   cfg.RemipmapSlack(),
		ceiling: cfg.FastUpdateCeiling,
		enabled: cfg.CreateMipmaps,
	}
}

// SetEnabled turns mipmapping on or off. Turning it off cancels a pending
// remipmap.
func (f *FreshnessPolicy) SetEnabled(on bool) {
	f.enabled = on
	if !on {
		f.Stop()
	}
}

// Enabled reports whether mipmapping is on.
func (f *FreshnessPolicy) Enabled() bool { return f.enabled }

// RecordDamage updates the damage timeline for damage at now.
func (f *FreshnessPolicy) RecordDamage(now time.Time) {
	f.previous, f.last = f.last, now
	if f.previous.IsZero() {
		return
	}
	if now.Sub(f.previous) < f.minAge {
		f.fastUpdates = min(f.fastUpdates+1, f.ceiling)
	} else {
		f.fastUpdates = 0
	}
}

// UseMipmaps reports whether a paint at now should use the tower.
// Content never damaged counts as old.
func (f *FreshnessPolicy) UseMipmaps(now time.Time) bool {
	if !f.enabled {
		return false
	}
	if f.last.IsZero() {
		return true
	}
	return now.Sub(f.last) >= f.minAge || f.fastUpdates < f.ceiling
}

// State returns the paint source UseMipmaps selects at now.
func (f *FreshnessPolicy) State(now time.Time) MipmapState {
	if f.UseMipmaps(now) {
		return Mipmapped
	}
	return Unmipmapped
}

// ScheduleRemipmap moves the remipmap deadline to now + MinMipmapAge - slack
// and arms the timer unless one is pending. It does nothing while
// mipmapping is off.
func (f *FreshnessPolicy) ScheduleRemipmap(now time.Time) {
	if !f.enabled {
		return
	}
	f.earliest = now.Add(f.minAge - f.slack)
	if f.timer.Pending() {
		return
	}
	f.timer = f.sched.AfterFunc(f.earliest.Sub(now), f.fire)
	Logger().Debug("shapedtex: remipmap scheduled", "at", f.earliest)
}

// fire runs on the scheduler. A deadline pushed back by later paints
// re-arms the timer for the remainder.
func (f *FreshnessPolicy) fire() {
	now := f.sched.Now()
	if now.Before(f.earliest) {
		f.timer = f.sched.AfterFunc(f.earliest.Sub(now), f.fire)
		return
	}
	f.timer = nil
	if f.redraw != nil {
		f.redraw()
	}
}

// Pending reports whether a remipmap is scheduled.
func (f *FreshnessPolicy) Pending() bool { return f.timer.Pending() }

// Stop cancels a pending remipmap.
func (f *FreshnessPolicy) Stop() {
	f.timer.Stop()
	f.timer = nil
}

// FastUpdates returns the current fast update count.
func (f *FreshnessPolicy) FastUpdates() int { return f.fastUpdates }

// LastDamage returns the time of the latest damage, zero if none.
func (f *FreshnessPolicy) LastDamage() time.Time { return f.last }
