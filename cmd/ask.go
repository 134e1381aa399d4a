package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/charge-lab/sim/assistant"
)

var askAt float64 // Simulated time at which the question is asked

// askCmd asks the tutor one question against a scripted bench state
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the lab assistant a question about the bench at a given time",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client, err := assistant.NewClient(cfg.Assistant)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		question := strings.Join(args, " ")
		if err := askAtTime(cmd.Context(), cfg, seed, askAt, question, client, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// askAtTime runs the configured schedule up to at seconds and asks the tutor.
func askAtTime(ctx context.Context, cfg ExperimentConfig, seed int64, at float64, question string, client assistant.Client, out io.Writer) error {
	cfg.Run.Duration = at
	s, err := buildSession(cfg, seed)
	if err != nil {
		return err
	}
	script, err := cfg.Script()
	if err != nil {
		return err
	}
	state, err := script.Run(s)
	if err != nil {
		return err
	}
	logrus.Debugf("asking at %s", state)

	if ctx == nil {
		ctx = context.Background()
	}
	tutor := assistant.NewTutor(client)
	fmt.Fprintf(out, "[%s]\n%s\n", state, tutor.Ask(ctx, question, state))
	return nil
}

func init() {
	askCmd.Flags().Float64Var(&askAt, "at", 10, "Simulated time (s) at which to ask")

	rootCmd.AddCommand(askCmd)
}
