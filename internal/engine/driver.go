package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// pausePoll is how often a paused driver checks whether it was resumed.
const pausePoll = 100 * time.Millisecond

// Advancer runs one tick.
type Advancer interface {
	Advance(ctx context.Context) (Report, error)
}

// Driver runs ticks periodically. Speed multiplies the tick rate; 0 pauses.
type Driver struct {
	engine   Advancer
	interval time.Duration
	speed    atomic.Int64

	ticks  atomic.Uint64 // Ticks run by this driver
	failed atomic.Uint64
}

// NewDriver creates a driver that advances every interval/speed.
func NewDriver(a Advancer, interval time.Duration, speed int) *Driver {
	d := &Driver{engine: a, interval: interval}
	d.SetSpeed(speed)
	return d
}

// SetSpeed changes the tick rate multiplier. Negative values pause.
func (d *Driver) SetSpeed(speed int) {
	d.speed.Store(int64(max(speed, 0)))
}

// Speed returns the current multiplier.
func (d *Driver) Speed() int {
	return int(d.speed.Load())
}

// Stats returns how many ticks the driver ran and how many of them failed.
func (d *Driver) Stats() (ticks, failed uint64) {
	return d.ticks.Load(), d.failed.Load()
}

// Run advances until ctx is done. A tick in flight always completes; a failed
// tick is logged and the next one runs at the usual time.
func (d *Driver) Run(ctx context.Context) error {
	slog.Info("tick driver started", "interval", d.interval, "speed", d.Speed())

	for {
		wait := pausePoll
		if speed := d.Speed(); speed > 0 {
			start := time.Now()
			d.step(context.WithoutCancel(ctx))
			wait = max(d.interval/time.Duration(speed)-time.Since(start), 0)
		}

		select {
		case <-ctx.Done():
			ticks, failed := d.Stats()
			slog.Info("tick driver stopped", "ticks", ticks, "failed", failed)
			return nil
		case <-time.After(wait):
		}
	}
}

func (d *Driver) step(ctx context.Context) {
	d.ticks.Add(1)
	if _, err := d.engine.Advance(ctx); err != nil {
		d.failed.Add(1)
		slog.Error("tick failed", "error", err)
	}
}
