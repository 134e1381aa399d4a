package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/charge-lab/sim"
	"github.com/inference-sim/charge-lab/sim/assistant"
	"github.com/inference-sim/charge-lab/sim/live"
)

var (
	addr       string        // HTTP listen address
	tickPeriod time.Duration // Driver period
	pushPeriod time.Duration // Snapshot push period
)

// serveCmd runs an interactive session behind the live server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live lab session over WebSocket",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.Live.Addr = addr
		}
		if flags.Changed("tick-period") {
			cfg.Live.Tick = tickPeriod
		}
		if flags.Changed("push-period") {
			cfg.Live.Push = pushPeriod
		}

		s, err := buildSession(cfg, seed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		client, err := assistant.NewClient(cfg.Assistant)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !client.Available() {
			logrus.Warn("assistant offline: answers will use fallback text")
		}

		driver := sim.NewDriver(s, sim.NewSystemClock(), cfg.Live.Tick)
		srv, err := live.NewServer(cfg.Live, driver, assistant.NewTutor(client))
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := srv.ListenAndServe(ctx); err != nil {
			logrus.Fatalf("live server: %v", err)
		}
		s.Metrics().Print(os.Stdout)
	},
}

func init() {
	defaults := live.DefaultConfig()
	serveCmd.Flags().StringVar(&addr, "addr", defaults.Addr, "HTTP listen address")
	serveCmd.Flags().DurationVar(&tickPeriod, "tick-period", defaults.Tick, "Simulation tick period")
	serveCmd.Flags().DurationVar(&pushPeriod, "push-period", defaults.Push, "Snapshot push period")

	rootCmd.AddCommand(serveCmd)
}
