package sim

import (
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/charge-lab/sim/trace"
)

// Snapshot is a complete, read-only view of a session between ticks.
// Series shares storage with the session but is capped so it cannot be
// appended to; callers must not modify its elements.
type Snapshot struct {
	State     State
	Recording bool
	Series    []DataPoint
}

// Session owns the experiment: its State, the RecordedSeries, the recording
// flag and the Sampler. All mutating methods must be called from one goroutine
// (the tick loop). Snapshot may be called from any goroutine; each mutation
// publishes a new snapshot with a single atomic store.
type Session struct {
	cfg       Config
	state     State
	series    []DataPoint
	recording bool
	sampler   *Sampler

	metrics *Metrics
	trace   *trace.SessionTrace

	published atomic.Pointer[Snapshot]
}

// NewSession validates cfg and returns a session in its initial state:
// voltage 0, time 0, switch open, recording off, empty series.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Method == "" {
		cfg.Method = MethodEuler
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}
	s := &Session{
		cfg:     cfg,
		state:   NewState(cfg.Params),
		sampler: NewSampler(cfg.SampleInterval),
		metrics: NewMetrics(),
		trace:   trace.NewSessionTrace(cfg.TraceLevel),
	}
	s.publish()
	return s, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns the current state. Owner goroutine only; other goroutines use Snapshot.
func (s *Session) State() State {
	return s.state
}

// Recording reports whether samples are being recorded.
func (s *Session) Recording() bool {
	return s.recording
}

// Series returns a copy of the recorded series in chronological order.
func (s *Session) Series() []DataPoint {
	out := make([]DataPoint, len(s.series))
	copy(out, s.series)
	return out
}

// Metrics returns the session's counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Trace returns the session's event trace.
func (s *Session) Trace() *trace.SessionTrace {
	return s.trace
}

// Snapshot returns the most recently published view. Safe for concurrent use.
func (s *Session) Snapshot() Snapshot {
	return *s.published.Load()
}

// Tick advances the session by dt seconds: caps dt, integrates, then lets the
// sampler decide whether to append a DataPoint. Returns the new state.
func (s *Session) Tick(dt float64) State {
	if !(dt > 0) || math.IsInf(dt, 1) {
		dt = 0
	}
	raw := dt
	var dropped float64
	if s.cfg.MaxDelta > 0 && dt > s.cfg.MaxDelta {
		dropped = dt - s.cfg.MaxDelta
		dt = s.cfg.MaxDelta
		logrus.Debugf("[t=%.3f] tick of %.3fs capped to %.3fs", s.state.Time, raw, dt)
	}

	s.state = AdvanceWith(s.cfg.Method, s.state, dt)
	s.metrics.observeTick(raw, dropped, s.state)

	if s.recording && s.sampler.Observe(s.state.Time) {
		s.series = append(s.series, DataPoint{Time: s.state.Time, Voltage: s.state.Voltage})
		s.metrics.observeSample()
		logrus.Debugf("[t=%.3f] sample #%d V=%.4f", s.state.Time, len(s.series), s.state.Voltage)
	}

	s.publish()
	return s.state
}

// Toggle moves the switch one step along open → charge → discharge → open
// and returns the new position.
func (s *Session) Toggle() SwitchPosition {
	from := s.state.Switch
	s.state = Toggle(s.state)
	s.metrics.observeToggle()
	if s.trace.Level.Enabled() {
		s.trace.RecordToggle(trace.ToggleRecord{
			Time:    s.state.Time,
			Voltage: s.state.Voltage,
			From:    string(from),
			To:      string(s.state.Switch),
		})
	}
	logrus.Debugf("[t=%.3f] switch %s -> %s", s.state.Time, from, s.state.Switch)
	s.publish()
	return s.state.Switch
}

// Reset returns the session to its initial state, empties the series and
// disables recording. Params are kept.
func (s *Session) Reset() {
	if s.trace.Level.Enabled() {
		s.trace.RecordReset(trace.ResetRecord{
			Time:            s.state.Time,
			Voltage:         s.state.Voltage,
			DiscardedPoints: len(s.series),
		})
	}
	s.state = NewState(s.cfg.Params)
	s.series = nil
	s.recording = false
	s.sampler.Arm(0)
	s.metrics.observeReset(s.state)
	logrus.Debugf("session reset")
	s.publish()
}

// SetRecording switches sample recording on or off. Switching on re-arms the
// sampler so the first sample lands on the next boundary crossing; switching
// off keeps the points recorded so far.
func (s *Session) SetRecording(on bool) {
	if on == s.recording {
		return
	}
	s.recording = on
	if on {
		s.sampler.Arm(s.state.Time)
	}
	if s.trace.Level.Enabled() {
		s.trace.RecordRecording(trace.RecordingRecord{Time: s.state.Time, Enabled: on})
	}
	logrus.Debugf("[t=%.3f] recording=%v", s.state.Time, on)
	s.publish()
}

// ClearData empties the recorded series without touching the recording flag.
func (s *Session) ClearData() {
	if s.trace.Level.Enabled() {
		s.trace.RecordClear(trace.ClearRecord{Time: s.state.Time, DiscardedPoints: len(s.series)})
	}
	s.series = nil
	s.publish()
}

func (s *Session) publish() {
	n := len(s.series)
	s.published.Store(&Snapshot{
		State:     s.state,
		Recording: s.recording,
		Series:    s.series[:n:n],
	})
}
