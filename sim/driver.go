package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultIntentQueue is the number of intents a Driver buffers between ticks.
const DefaultIntentQueue = 64

// Driver is the explicit tick loop around a Session. It is the only goroutine
// that mutates the session; other goroutines submit intents, which are applied
// before the next tick, and read state through Session.Snapshot.
type Driver struct {
	session *Session
	deltas  *DeltaSource
	period  time.Duration
	intents chan Intent
	onTick  func(State)
}

// NewDriver creates a driver ticking s every period, measuring dt with clock.
func NewDriver(s *Session, clock Clock, period time.Duration) *Driver {
	return &Driver{
		session: s,
		deltas:  NewDeltaSource(clock),
		period:  period,
		intents: make(chan Intent, DefaultIntentQueue),
	}
}

// OnTick registers a callback invoked on the driver goroutine after every tick.
// Must be called before Run.
func (d *Driver) OnTick(fn func(State)) {
	d.onTick = fn
}

// Session returns the driven session.
func (d *Driver) Session() *Session {
	return d.session
}

// Submit queues an intent without blocking. Returns false if the queue is full.
func (d *Driver) Submit(in Intent) bool {
	select {
	case d.intents <- in:
		return true
	default:
		logrus.Warnf("intent queue full, dropping %q", in)
		return false
	}
}

// Step applies every queued intent, then advances the session by the wall time
// elapsed since the previous step.
func (d *Driver) Step() State {
	d.drain()
	st := d.session.Tick(d.deltas.Next())
	if d.onTick != nil {
		d.onTick(st)
	}
	return st
}

func (d *Driver) drain() {
	for {
		select {
		case in := <-d.intents:
			if err := d.session.Apply(in); err != nil {
				logrus.Warnf("dropping intent: %v", err)
			}
		default:
			return
		}
	}
}

// Run steps the session every period until ctx is done. The session holds no
// external resources, so stopping needs no cleanup. Returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	logrus.Infof("tick loop started (period=%v)", d.period)
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("tick loop stopped at t=%.3f s", d.session.State().Time)
			return ctx.Err()
		case <-ticker.C:
			d.Step()
		}
	}
}
