package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingAdvancer struct {
	calls atomic.Int64
	err   error
}

func (a *countingAdvancer) Advance(context.Context) (Report, error) {
	n := a.calls.Add(1)
	return Report{Tick: uint64(n)}, a.err
}

func runFor(t *testing.T, d *Driver, dur time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), dur)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestDriver_Advances(t *testing.T) {
	a := &countingAdvancer{}
	d := NewDriver(a, time.Millisecond, 1)

	runFor(t, d, 50*time.Millisecond)

	if a.calls.Load() < 3 {
		t.Errorf("expected several ticks, got %d", a.calls.Load())
	}
}

func TestDriver_PausedAtSpeedZero(t *testing.T) {
	a := &countingAdvancer{}
	d := NewDriver(a, time.Millisecond, 0)

	runFor(t, d, 30*time.Millisecond)

	testutil.AssertEqual(t, "calls", a.calls.Load(), int64(0))
}

func TestDriver_KeepsGoingAfterFailure(t *testing.T) {
	a := &countingAdvancer{err: errors.New("store unavailable")}
	d := NewDriver(a, time.Millisecond, 2)

	runFor(t, d, 50*time.Millisecond)

	ticks, failed := d.Stats()
	if ticks < 2 {
		t.Errorf("expected the driver to keep ticking, got %d", ticks)
	}
	testutil.AssertEqual(t, "failed", failed, ticks)
}

func TestDriver_SetSpeed(t *testing.T) {
	d := NewDriver(&countingAdvancer{}, time.Second, 3)
	testutil.AssertEqual(t, "initial", d.Speed(), 3)

	d.SetSpeed(-4)
	testutil.AssertEqual(t, "negative pauses", d.Speed(), 0)
}
