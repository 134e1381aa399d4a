// Package testutil provides shared test infrastructure for the lab simulator:
// bench constants and closed-form reference curves used across sim/ and its
// sub-package tests. It has no dependency on sim/ so package-internal tests
// can import it.
package testutil

import "math"

// Bench parameters for the reference scenario (RC = 50 s).
const (
	BenchCapacitance    = 10e-6
	BenchResistance     = 5e6
	BenchInitialVoltage = 10.0
	BenchTimeConstant   = BenchResistance * BenchCapacitance
)

// ExactDischarge returns V0*exp(-t/rc).
func ExactDischarge(v0, rc, t float64) float64 {
	return v0 * math.Exp(-t/rc)
}

// EulerDischarge returns the voltage after n explicit Euler steps of size dt:
// V0*(1-dt/rc)^n, clamped at zero.
func EulerDischarge(v0, rc, dt float64, n int) float64 {
	f := 1 - dt/rc
	if f <= 0 {
		return 0
	}
	return v0 * math.Pow(f, float64(n))
}

// RelErr returns |got-want|/|want|, or |got| when want is zero.
func RelErr(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}
