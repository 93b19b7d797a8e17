package annotate

import (
	"testing"
	"time"
)

func TestOnlyFinalGenerationSettles(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	// A rapid burst of selection-change events: each reset supersedes the
	// previous timer.
	var msgs []SettledMsg
	for i := 0; i < 4; i++ {
		cmd := d.Reset()
		msg, ok := cmd().(SettledMsg)
		if !ok {
			t.Fatalf("tick %d did not produce a SettledMsg", i)
		}
		msgs = append(msgs, msg)
	}

	settled := 0
	for _, msg := range msgs {
		if d.Settled(msg) {
			settled++
		}
	}
	if settled != 1 {
		t.Fatalf("a burst must settle exactly once, settled %d times", settled)
	}
	if !d.Settled(msgs[len(msgs)-1]) {
		t.Fatal("the surviving settle must be the final event's")
	}
}

func TestCancelInvalidatesOutstandingTimer(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	cmd := d.Reset()
	msg := cmd().(SettledMsg)

	d.Cancel()
	if d.Settled(msg) {
		t.Fatal("cancelled timer must not settle")
	}
}

func TestZeroQuietPeriodFallsBackToDefault(t *testing.T) {
	d := NewDebouncer(0)
	if d.quiet != DefaultQuietPeriod {
		t.Fatalf("quiet = %v, want default %v", d.quiet, DefaultQuietPeriod)
	}
}
