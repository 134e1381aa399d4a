package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/charge-lab/sim"
	"github.com/inference-sim/charge-lab/sim/assistant"
	"github.com/inference-sim/charge-lab/sim/live"
	"github.com/inference-sim/charge-lab/sim/trace"
)

// ExperimentConfig represents the full experiment YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ExperimentConfig struct {
	Version        string           `yaml:"version"`
	Params         ParamsConfig     `yaml:"params"`
	Integrator     string           `yaml:"integrator"`      // "euler" or "exact"
	MaxDelta       float64          `yaml:"max_delta"`       // per-tick dt cap (s); 0 disables
	SampleInterval float64          `yaml:"sample_interval"` // recording cadence (s)
	Trace          string           `yaml:"trace"`           // "none" or "events"
	Run            RunConfig        `yaml:"run"`
	Assistant      assistant.Config `yaml:"assistant"`
	Live           live.Config      `yaml:"live"`
}

// ParamsConfig holds the bench parameters.
type ParamsConfig struct {
	Capacitance      float64 `yaml:"capacitance"`       // F
	Resistance       float64 `yaml:"resistance"`        // Ω, nominal value
	InitialVoltage   float64 `yaml:"initial_voltage"`   // V
	ResistanceJitter float64 `yaml:"resistance_jitter"` // hidden-resistor spread, fraction of nominal
}

// RunConfig drives headless runs.
type RunConfig struct {
	Tick     float64         `yaml:"tick"`     // fixed dt (s)
	Duration float64         `yaml:"duration"` // simulated seconds
	Schedule []ScheduleEntry `yaml:"schedule"`
}

// ScheduleEntry is one scripted intent.
type ScheduleEntry struct {
	At     float64 `yaml:"at"`
	Intent string  `yaml:"intent"`
}

// DefaultExperimentConfig returns the bench experiment: charge at t=0, switch
// to discharge and start recording at t=2 s, run for 120 s.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Version: "1",
		Params: ParamsConfig{
			Capacitance:    sim.DefaultCapacitance,
			Resistance:     sim.DefaultResistance,
			InitialVoltage: sim.DefaultInitialVoltage,
		},
		Integrator:     string(sim.MethodEuler),
		MaxDelta:       0.25,
		SampleInterval: sim.DefaultSampleInterval,
		Trace:          string(trace.LevelNone),
		Run: RunConfig{
			Tick:     0.05,
			Duration: 120,
			Schedule: []ScheduleEntry{
				{At: 0, Intent: string(sim.IntentToggle)},
				{At: 2, Intent: string(sim.IntentToggle)},
				{At: 2, Intent: string(sim.IntentRecord)},
			},
		},
		Assistant: assistant.DefaultConfig(),
		Live:      live.DefaultConfig(),
	}
}

// LoadExperimentConfig reads path over the defaults. Unknown fields are errors
// so typos never pass silently. An empty file yields the defaults.
func LoadExperimentConfig(path string) (ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExperimentConfig{}, fmt.Errorf("reading experiment config: %w", err)
	}
	return ParseExperimentConfig(data)
}

// ParseExperimentConfig decodes YAML bytes over the defaults with strict field checking.
func ParseExperimentConfig(data []byte) (ExperimentConfig, error) {
	cfg := DefaultExperimentConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return ExperimentConfig{}, fmt.Errorf("parsing experiment config: %w", err)
	}
	return cfg, nil
}

// SessionConfig builds the session configuration. With a non-zero resistance
// jitter the resistor is drawn from the seeded RNG, once per session.
func (c ExperimentConfig) SessionConfig(seed int64) (sim.Config, error) {
	r, err := sim.HiddenResistance(
		sim.NewSimulationKey(seed).ForSubsystem(sim.SubsystemResistor),
		c.Params.Resistance, c.Params.ResistanceJitter)
	if err != nil {
		return sim.Config{}, err
	}
	cfg := sim.Config{
		Params: sim.Params{
			Capacitance:    c.Params.Capacitance,
			Resistance:     r,
			InitialVoltage: c.Params.InitialVoltage,
		},
		Method:         sim.Method(c.Integrator),
		MaxDelta:       c.MaxDelta,
		SampleInterval: c.SampleInterval,
		TraceLevel:     trace.Level(c.Trace),
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// Script builds the headless run script.
func (c ExperimentConfig) Script() (sim.Script, error) {
	sc := sim.Script{Tick: c.Run.Tick, Duration: c.Run.Duration}
	for i, e := range c.Run.Schedule {
		in, err := sim.ParseIntent(e.Intent)
		if err != nil {
			return sim.Script{}, fmt.Errorf("run.schedule[%d]: %w", i, err)
		}
		sc.Schedule = append(sc.Schedule, sim.ScheduledIntent{At: e.At, Intent: in})
	}
	if err := sc.Validate(); err != nil {
		return sim.Script{}, err
	}
	return sc, nil
}
