package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampler_FirstSampleOnFirstBoundary(t *testing.T) {
	sp := NewSampler(0.5)
	assert.Equal(t, 0.5, sp.NextDue())
	assert.False(t, sp.Observe(0.25))
	assert.True(t, sp.Observe(0.5))
	assert.Equal(t, 1.0, sp.NextDue())
}

func TestSampler_LongTickEmitsOnce(t *testing.T) {
	// GIVEN a sampler due at 0.5
	sp := NewSampler(0.5)

	// WHEN a single observation jumps across six boundaries
	first := sp.Observe(3.0)
	second := sp.Observe(3.2)

	// THEN exactly one sample is emitted and the next is due after the jump
	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, 3.5, sp.NextDue())
}

func TestSampler_ArmStrictlyAfterNow(t *testing.T) {
	sp := NewSampler(0.5)
	sp.Arm(1.0)
	assert.Equal(t, 1.5, sp.NextDue(), "a boundary equal to now is already past")
	sp.Arm(1.2)
	assert.Equal(t, 1.5, sp.NextDue())
}

func TestSampler_NonPositiveIntervalFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultSampleInterval, NewSampler(0).Interval())
	assert.Equal(t, DefaultSampleInterval, NewSampler(-1).Interval())
}

func TestSampler_CadenceIndependentOfTickRate(t *testing.T) {
	const horizon = 30.0
	for _, dt := range []float64{0.001, 0.016, 0.033, 0.1} {
		// GIVEN a fast tick loop
		sp := NewSampler(0.5)
		now, count := 0.0, 0

		// WHEN observed every dt up to the horizon
		for now < horizon {
			now += dt
			if sp.Observe(now) {
				count++
			}
		}

		// THEN roughly one sample per half second
		assert.InDelta(t, horizon/0.5, count, 1, "dt=%v", dt)
	}
}
