package sim

import "math"

// Sampler gates recording to a fixed cadence that does not depend on tick rate.
// It carries the boundary at which the next sample is due; a tick at or past
// that boundary emits one sample and moves the boundary to the first multiple
// of the interval strictly after the tick. A slow tick that spans several
// boundaries therefore emits a single sample, and a fast loop emits one sample
// per interval.
//
// Thread-safety: NOT thread-safe. Owned by the Session.
type Sampler struct {
	interval float64
	bucket   int64 // index of the next due boundary; due time is bucket*interval
}

// NewSampler returns a Sampler with the given interval in seconds, armed so the
// first sample falls on the first boundary after t=0. A non-positive interval
// falls back to DefaultSampleInterval.
func NewSampler(interval float64) *Sampler {
	if !(interval > 0) {
		interval = DefaultSampleInterval
	}
	sp := &Sampler{interval: interval}
	sp.Arm(0)
	return sp
}

// Interval returns the sampling cadence in seconds.
func (sp *Sampler) Interval() float64 {
	return sp.interval
}

// NextDue returns the time at which the next sample becomes due.
func (sp *Sampler) NextDue() float64 {
	return float64(sp.bucket) * sp.interval
}

// Arm moves the due boundary to the first multiple of the interval strictly
// after now. Used when recording is switched on and on reset.
func (sp *Sampler) Arm(now float64) {
	sp.bucket = int64(math.Floor(now/sp.interval)) + 1
}

// Observe reports whether a sample is due at time now, and if so advances the
// boundary past now.
func (sp *Sampler) Observe(now float64) bool {
	if now < sp.NextDue() {
		return false
	}
	sp.Arm(now)
	return true
}
