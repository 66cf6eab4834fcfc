package antispam

import (
	"testing"
	"time"
)

func TestCooldownSequence(t *testing.T) {
	g := New(3 * time.Second)
	base := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	steps := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{1 * time.Second, false},
		// A blocked attempt does not refresh the window: t=2 is still
		// judged against t=0, not t=1.
		{2 * time.Second, false},
		{4 * time.Second, true},
	}
	for _, s := range steps {
		if got := g.allowAt("x", base.Add(s.offset)); got != s.want {
			t.Fatalf("at +%v: got %v, want %v", s.offset, got, s.want)
		}
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	g := New(3 * time.Second)
	base := time.Now()

	if !g.allowAt("a", base) {
		t.Fatal("first action for a should pass")
	}
	if !g.allowAt("b", base) {
		t.Fatal("a's cooldown blocked b")
	}
	if g.allowAt("a", base.Add(time.Second)) {
		t.Fatal("a should still be cooling down")
	}
}

func TestAllowIDKeysByNumericID(t *testing.T) {
	g := New(time.Hour)
	if !g.AllowID(42) {
		t.Fatal("first action should pass")
	}
	if g.AllowID(42) {
		t.Fatal("repeat should be blocked")
	}
	if !g.AllowID(43) {
		t.Fatal("other id should pass")
	}
}

func TestSweepEvictsIdleOnly(t *testing.T) {
	g := New(time.Second)
	base := time.Now()

	g.allowAt("old", base)
	g.allowAt("fresh", base.Add(9*time.Minute))

	if n := g.sweepAt(base.Add(10 * time.Minute)); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 tracked identity, got %d", g.Len())
	}
}
