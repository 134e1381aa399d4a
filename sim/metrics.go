// Tracks per-session counters: ticks, toggles, samples and capped deltas.
// Counters are mirrored into Prometheus collectors so a live session can
// expose them on /metrics.

package sim

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "chargelab"

// Metrics aggregates statistics about a session for final reporting.
// The plain fields are written only by the session owner; the Prometheus
// collectors are safe to scrape from any goroutine.
type Metrics struct {
	Ticks        int     // Number of integrator ticks
	Toggles      int     // Number of switch toggles
	Resets       int     // Number of explicit resets
	Samples      int     // Number of DataPoints appended
	CappedTicks  int     // Ticks whose dt exceeded MaxDelta
	DroppedTime  float64 // Seconds discarded by dt capping
	LargestDelta float64 // Largest raw dt observed (s)

	ticksTotal   prometheus.Counter
	togglesTotal prometheus.Counter
	resetsTotal  prometheus.Counter
	samplesTotal prometheus.Counter
	cappedTotal  prometheus.Counter
	voltage      prometheus.Gauge
	simTime      prometheus.Gauge
}

// NewMetrics creates a Metrics with unregistered collectors.
func NewMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		ticksTotal:   counter("ticks_total", "Integrator ticks executed."),
		togglesTotal: counter("switch_toggles_total", "Switch toggles applied."),
		resetsTotal:  counter("resets_total", "Explicit session resets."),
		samplesTotal: counter("samples_total", "Data points appended to the recorded series."),
		cappedTotal:  counter("capped_ticks_total", "Ticks whose delta exceeded the configured cap."),
		voltage:      gauge("capacitor_voltage_volts", "Capacitor terminal voltage."),
		simTime:      gauge("simulation_time_seconds", "Elapsed simulation time."),
	}
}

// Collectors returns the Prometheus collectors backing m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ticksTotal, m.togglesTotal, m.resetsTotal, m.samplesTotal, m.cappedTotal,
		m.voltage, m.simTime,
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering session metrics: %w", err)
		}
	}
	return nil
}

func (m *Metrics) observeTick(rawDT, capped float64, s State) {
	m.Ticks++
	m.ticksTotal.Inc()
	if rawDT > m.LargestDelta {
		m.LargestDelta = rawDT
	}
	if capped > 0 {
		m.CappedTicks++
		m.DroppedTime += capped
		m.cappedTotal.Inc()
	}
	m.voltage.Set(s.Voltage)
	m.simTime.Set(s.Time)
}

func (m *Metrics) observeToggle() {
	m.Toggles++
	m.togglesTotal.Inc()
}

func (m *Metrics) observeReset(s State) {
	m.Resets++
	m.resetsTotal.Inc()
	m.voltage.Set(s.Voltage)
	m.simTime.Set(s.Time)
}

func (m *Metrics) observeSample() {
	m.Samples++
	m.samplesTotal.Inc()
}

// Print writes the aggregated session metrics.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Session Metrics ===")
	fmt.Fprintf(w, "Ticks                : %d\n", m.Ticks)
	fmt.Fprintf(w, "Switch Toggles       : %d\n", m.Toggles)
	fmt.Fprintf(w, "Resets               : %d\n", m.Resets)
	fmt.Fprintf(w, "Recorded Samples     : %d\n", m.Samples)
	fmt.Fprintf(w, "Largest Tick         : %.4f s\n", m.LargestDelta)
	if m.CappedTicks > 0 {
		fmt.Fprintf(w, "Capped Ticks         : %d (%.3f s dropped)\n", m.CappedTicks, m.DroppedTime)
	}
}
