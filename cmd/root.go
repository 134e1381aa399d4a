package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/charge-lab/sim"
	"github.com/inference-sim/charge-lab/sim/export"
	"github.com/inference-sim/charge-lab/sim/trace"
)

var (
	// Shared flags
	configPath string // Experiment YAML file
	logLevel   string // Log verbosity level
	seed       int64  // Seed for the hidden-resistor draw

	// CLI flags for headless runs
	tick           float64 // Fixed dt per tick (s)
	duration       float64 // Simulated seconds
	integrator     string  // "euler" or "exact"
	maxDelta       float64 // Per-tick dt cap (s)
	sampleInterval float64 // Recording cadence (s)
	traceLevel     string  // "none" or "events"
	csvPath        string  // CSV output file
	chartsDir      string  // Directory for PNG charts
	reveal         bool    // Print the true resistance next to the fit
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "charge-lab",
	Short: "Loss-of-charge capacitor discharge lab simulator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes a scripted experiment headlessly
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted discharge experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		applyRunOverrides(cmd, &cfg)

		opts := runOptions{CSVPath: csvPath, ChartsDir: chartsDir, Reveal: reveal}
		if _, err := runExperiment(cfg, seed, opts, os.Stdout); err != nil {
			logrus.Fatalf("experiment failed: %v", err)
		}
		logrus.Info("Experiment complete.")
	},
}

// loadConfig returns the experiment config named by --config, or the defaults.
func loadConfig() ExperimentConfig {
	if configPath == "" {
		return DefaultExperimentConfig()
	}
	cfg, err := LoadExperimentConfig(configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

// applyRunOverrides copies explicitly set flags over the config file values.
func applyRunOverrides(cmd *cobra.Command, cfg *ExperimentConfig) {
	flags := cmd.Flags()
	if flags.Changed("tick") {
		cfg.Run.Tick = tick
	}
	if flags.Changed("duration") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("max-delta") {
		cfg.MaxDelta = maxDelta
	}
	if flags.Changed("sample-interval") {
		cfg.SampleInterval = sampleInterval
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLevel
	}
}

type runOptions struct {
	CSVPath   string
	ChartsDir string
	Reveal    bool
}

// buildSession validates cfg and creates the session.
func buildSession(cfg ExperimentConfig, seed int64) (*sim.Session, error) {
	sc, err := cfg.SessionConfig(seed)
	if err != nil {
		return nil, err
	}
	return sim.NewSession(sc)
}

// runExperiment runs the configured script and reports to out.
func runExperiment(cfg ExperimentConfig, seed int64, opts runOptions, out io.Writer) (*sim.Session, error) {
	s, err := buildSession(cfg, seed)
	if err != nil {
		return nil, err
	}
	script, err := cfg.Script()
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting experiment: C=%g F, tick=%gs, duration=%gs, integrator=%s",
		cfg.Params.Capacitance, script.Tick, script.Duration, s.Config().Method)

	final, err := script.Run(s)
	if err != nil {
		return nil, err
	}
	series := s.Series()

	fmt.Fprintf(out, "Final: %s\n", final)
	fmt.Fprintf(out, "Recorded points: %d\n", len(series))
	s.Metrics().Print(out)
	if s.Config().TraceLevel.Enabled() {
		printTraceSummary(out, trace.Summarize(s.Trace()))
	}

	fit, err := export.FitResistance(series, s.Config().Params.Capacitance)
	if err != nil {
		logrus.Warnf("no resistance fit: %v", err)
	} else {
		fmt.Fprintf(out, "Fit: %s\n", fit)
		if opts.Reveal {
			r := s.Config().Params.Resistance
			fmt.Fprintf(out, "True resistance: %.4g Ω (fit error %.2f%%)\n",
				r, 100*(fit.Resistance-r)/r)
		}
	}

	if opts.CSVPath != "" {
		if err := writeCSVFile(opts.CSVPath, series); err != nil {
			return s, err
		}
		logrus.Infof("CSV written to %s", opts.CSVPath)
	}
	if opts.ChartsDir != "" {
		files, err := export.RenderCharts(opts.ChartsDir, series)
		if err != nil {
			return s, err
		}
		logrus.Infof("charts written: %v", files)
	}
	return s, nil
}

func writeCSVFile(path string, series []sim.DataPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteCSV(f, series); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Toggles: %d (discharge legs: %d)\n", ts.TotalToggles, ts.DischargeLegs)
	fmt.Fprintf(w, "Resets: %d\n", ts.Resets)
	fmt.Fprintf(w, "Recording: %d starts, %d stops\n", ts.RecordingStarts, ts.RecordingStops)
	fmt.Fprintf(w, "Discarded points: %d\n", ts.DiscardedPoints)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to experiment YAML (defaults used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for the hidden-resistor draw")

	runCmd.Flags().Float64Var(&tick, "tick", 0.05, "Fixed time step per tick (s)")
	runCmd.Flags().Float64Var(&duration, "duration", 120, "Simulated duration (s)")
	runCmd.Flags().StringVar(&integrator, "integrator", string(sim.MethodEuler), "Discharge integrator (euler, exact)")
	runCmd.Flags().Float64Var(&maxDelta, "max-delta", 0.25, "Per-tick dt cap in seconds (0 disables)")
	runCmd.Flags().Float64Var(&sampleInterval, "sample-interval", sim.DefaultSampleInterval, "Recording interval (s)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.LevelNone), "Trace level (none, events)")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the recorded table as CSV to this file")
	runCmd.Flags().StringVar(&chartsDir, "charts", "", "Render V(t) and ln(V)(t) PNG charts into this directory")
	runCmd.Flags().BoolVar(&reveal, "reveal", false, "Print the true resistance next to the fit")

	rootCmd.AddCommand(runCmd)
}
