package shapedtex

import (
	"testing"
	"time"

	"github.com/gogpu/shapedtex/loop"
)

const minAge = 200 * time.Millisecond

func newPolicy(t *testing.T) (*FreshnessPolicy, *loop.Manual, *int) {
	t.Helper()
	m := loop.NewManual(epoch)
	redraws := 0
	return NewFreshnessPolicy(DefaultConfig(), m, func() { redraws++ }), m, &redraws
}

func TestFreshnessUndamagedIsMipmapped(t *testing.T) {
	f, m, _ := newPolicy(t)
	if !f.UseMipmaps(m.Now()) {
		t.Error("never damaged content should be mipmapped")
	}
	if f.State(m.Now()) != Mipmapped {
		t.Errorf("State() = %v, want mipmapped", f.State(m.Now()))
	}
}

func TestFreshnessSlowDamageAlwaysMipmapped(t *testing.T) {
	f, m, _ := newPolicy(t)
	for _, gap := range []time.Duration{minAge, minAge, 3 * minAge, minAge} {
		m.Advance(gap)
		f.RecordDamage(m.Now())
		m.Advance(minAge)
		if !f.UseMipmaps(m.Now()) {
			t.Fatalf("damage spaced %v apart should keep mipmapping", gap)
		}
		if f.FastUpdates() != 0 {
			t.Fatalf("FastUpdates() = %d after slow damage, want 0", f.FastUpdates())
		}
	}
}

func TestFreshnessFastDamageBelowCeiling(t *testing.T) {
	f, m, _ := newPolicy(t)
	// 19 fast intervals from 20 damages: still below the ceiling.
	for range 20 {
		f.RecordDamage(m.Now())
		m.Advance(10 * time.Millisecond)
	}
	if f.FastUpdates() != 19 {
		t.Fatalf("FastUpdates() = %d, want 19", f.FastUpdates())
	}
	if !f.UseMipmaps(m.Now()) {
		t.Error("fast updates below the ceiling should still mipmap")
	}
}

func TestFreshnessSustainedFastDamage(t *testing.T) {
	f, m, _ := newPolicy(t)
	for range 30 {
		f.RecordDamage(m.Now())
		m.Advance(10 * time.Millisecond)
	}
	if f.FastUpdates() != 20 {
		t.Fatalf("FastUpdates() = %d, want capped at 20", f.FastUpdates())
	}
	if f.UseMipmaps(m.Now()) {
		t.Error("sustained fast damage with young content should not mipmap")
	}

	// Once the content is old enough it is mipmapped again.
	m.Advance(minAge)
	if !f.UseMipmaps(m.Now()) {
		t.Error("content older than the minimum age should mipmap")
	}

	// A slow damage resets the counter.
	f.RecordDamage(m.Now())
	if f.FastUpdates() != 0 {
		t.Errorf("FastUpdates() = %d after a slow damage, want 0", f.FastUpdates())
	}
}

func TestFreshnessDisabled(t *testing.T) {
	f, m, redraws := newPolicy(t)
	f.SetEnabled(false)
	if f.UseMipmaps(m.Now()) {
		t.Error("disabled policy should never mipmap")
	}
	f.ScheduleRemipmap(m.Now())
	if f.Pending() {
		t.Error("disabled policy should not schedule")
	}
	m.Advance(time.Second)
	if *redraws != 0 {
		t.Errorf("redraws = %d, want 0", *redraws)
	}
}

func TestScheduleRemipmapSingleTimer(t *testing.T) {
	f, m, redraws := newPolicy(t)
	f.ScheduleRemipmap(m.Now())
	f.ScheduleRemipmap(m.Now())
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want exactly one timer", m.Pending())
	}

	m.Advance(minAge - 2*time.Millisecond)
	if *redraws != 0 {
		t.Fatal("remipmap fired early")
	}
	m.Advance(time.Millisecond)
	if *redraws != 1 {
		t.Errorf("redraws = %d, want 1 at now+minAge-slack", *redraws)
	}
	if f.Pending() {
		t.Error("timer handle should be cleared after firing")
	}
}

func TestScheduleRemipmapDeadlineMovesLater(t *testing.T) {
	f, m, redraws := newPolicy(t)
	f.ScheduleRemipmap(m.Now())
	m.Advance(100 * time.Millisecond)
	f.ScheduleRemipmap(m.Now()) // deadline now at 100+199ms

	m.Advance(150 * time.Millisecond) // first expiry at 199ms re-arms
	if *redraws != 0 {
		t.Fatal("timer acted before the moved deadline")
	}
	if !f.Pending() {
		t.Fatal("timer should re-arm for the remaining time")
	}
	m.Advance(100 * time.Millisecond)
	if *redraws != 1 {
		t.Errorf("redraws = %d, want 1", *redraws)
	}
}

func TestFreshnessStop(t *testing.T) {
	f, m, redraws := newPolicy(t)
	f.ScheduleRemipmap(m.Now())
	f.Stop()
	m.Advance(time.Second)
	if *redraws != 0 || m.Pending() != 0 {
		t.Errorf("stopped policy fired: redraws=%d pending=%d", *redraws, m.Pending())
	}
}

func TestMipmapStateString(t *testing.T) {
	if Mipmapped.String() != "mipmapped" || Unmipmapped.String() != "unmipmapped" {
		t.Error("unexpected MipmapState names")
	}
}
