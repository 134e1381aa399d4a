package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible session. Two sessions created with the
// same key and configuration draw the same hidden resistor.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemResistor is the RNG subsystem used to pick the hidden resistor.
const SubsystemResistor = "resistor"

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// Derivation: seed XOR fnv1a64(subsystem), so subsystems never share a stream.
func (k SimulationKey) ForSubsystem(name string) *rand.Rand {
	return rand.New(rand.NewSource(int64(k) ^ fnv1a64(name)))
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// HiddenResistance draws the session's resistor uniformly from
// [nominal*(1-jitter), nominal*(1+jitter)]. jitter must be in [0, 1).
// With jitter 0 the nominal value is returned unchanged.
func HiddenResistance(rng *rand.Rand, nominal, jitter float64) (float64, error) {
	if !(nominal > 0) {
		return 0, fmt.Errorf("%w: nominal resistance must be > 0, got %v", ErrInvalidParams, nominal)
	}
	if !(jitter >= 0 && jitter < 1) {
		return 0, fmt.Errorf("%w: resistance jitter must be in [0, 1), got %v", ErrInvalidParams, jitter)
	}
	if jitter == 0 {
		return nominal, nil
	}
	u := 2*rng.Float64() - 1
	return nominal * (1 + jitter*u), nil
}
