package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// ScheduledIntent is an intent applied once simulation time reaches At.
type ScheduledIntent struct {
	At     float64 // simulation time in seconds
	Intent Intent
}

// Script replays a schedule of intents against a session with a fixed tick,
// for headless runs and reproducible experiments.
type Script struct {
	Tick     float64 // fixed dt per tick (s), must be > 0
	Duration float64 // stop once simulation time reaches this (s)
	Schedule []ScheduledIntent
}

// Validate checks the script before a run.
func (sc Script) Validate() error {
	if !(sc.Tick > 0) || math.IsInf(sc.Tick, 0) {
		return fmt.Errorf("script tick must be > 0, got %v", sc.Tick)
	}
	if sc.Duration < 0 || math.IsNaN(sc.Duration) || math.IsInf(sc.Duration, 0) {
		return fmt.Errorf("script duration must be >= 0, got %v", sc.Duration)
	}
	for i, ev := range sc.Schedule {
		if ev.At < 0 || math.IsNaN(ev.At) {
			return fmt.Errorf("schedule[%d]: time must be >= 0, got %v", i, ev.At)
		}
		if !validIntents[ev.Intent] {
			return fmt.Errorf("schedule[%d]: unknown intent %q", i, ev.Intent)
		}
	}
	return nil
}

// Run executes the script: before every tick, intents whose time has been
// reached are applied in schedule order (stable for equal times). Ticks run
// until simulation time reaches Duration, so a Tick above the session's
// MaxDelta takes more, shorter steps. Intents due exactly at the end are
// applied after the last tick; later ones are ignored. Returns the final state.
func (sc Script) Run(s *Session) (State, error) {
	if err := sc.Validate(); err != nil {
		return s.State(), err
	}
	events := make([]ScheduledIntent, len(sc.Schedule))
	copy(events, sc.Schedule)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	next := 0
	apply := func(now float64) {
		for next < len(events) && events[next].At <= now+1e-9 {
			ev := events[next]
			if err := s.Apply(ev.Intent); err != nil {
				logrus.Warnf("schedule: %v", err)
			}
			next++
		}
	}

	steps := 0
	for s.State().Time < sc.Duration-1e-9 {
		apply(s.State().Time)
		s.Tick(sc.Tick)
		steps++
	}
	apply(s.State().Time)
	logrus.Infof("script finished: %d ticks, t=%.3f s, %d intents applied", steps, s.State().Time, next)
	return s.State(), nil
}
