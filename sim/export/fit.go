package export

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/charge-lab/sim"
)

var (
	// ErrTooFewPoints is returned when fewer than two points survive the log floor.
	ErrTooFewPoints = errors.New("need at least two points above the log floor")
	// ErrNoDecay is returned when ln(V) does not fall over time.
	ErrNoDecay = errors.New("ln(V) does not decrease over time")
)

// Fit is the straight-line fit of ln(V) against t and the resistance it implies.
// For V = V0·exp(-t/RC), ln V = ln V0 - t/RC, so slope = -1/RC.
type Fit struct {
	Points       int
	Slope        float64 // d ln(V) / dt (1/s)
	Intercept    float64 // ln(V) at t=0
	RSquared     float64
	TimeConstant float64 // -1/slope (s)
	Resistance   float64 // TimeConstant / C (Ω)
}

// FitResistance fits ln(V) vs t by least squares over the points above LogFloor
// and derives R from the known capacitance.
func FitResistance(series []sim.DataPoint, capacitance float64) (Fit, error) {
	if !(capacitance > 0) {
		return Fit{}, fmt.Errorf("%w: capacitance must be > 0, got %v", sim.ErrInvalidParams, capacitance)
	}
	logs := LogSeries(series)
	if len(logs) < 2 {
		return Fit{Points: len(logs)}, ErrTooFewPoints
	}
	xs := make([]float64, len(logs))
	ys := make([]float64, len(logs))
	for i, p := range logs {
		xs[i] = p.Time
		ys[i] = p.LnV
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	fit := Fit{
		Points:    len(logs),
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
	}
	if !(beta < 0) {
		return fit, ErrNoDecay
	}
	fit.TimeConstant = -1 / beta
	fit.Resistance = fit.TimeConstant / capacitance
	return fit, nil
}

// String renders the fit for the CLI report.
func (f Fit) String() string {
	return fmt.Sprintf("slope=%.6f 1/s  RC=%.3f s  R=%.4g Ω  (R²=%.5f, n=%d)",
		f.Slope, f.TimeConstant, f.Resistance, f.RSquared, f.Points)
}
