package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sandevgo/ember/pkg/log"
	"github.com/sandevgo/ember/pkg/srv"
	"github.com/spf13/cobra"
)

var runFlags struct {
	seedName   string
	seedFile   string
	url        string
	interval   time.Duration
	compressAt int
	noShell    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the cognition loop",
	Long:  `Loads the seed, connects to the completion server and thinks until interrupted. An interactive shell rides along for talking to the mind.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// /quit in the shell cancels the same context the signal does.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting ember")

		services := NewServices(ctx, serviceOverrides(cmd), cancel)

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)

		logger.Info().Msg("ember has been shut down gracefully")
		return nil
	},
}

// serviceOverrides turns the flags the user actually set into config
// overrides; unset flags leave the env-derived values alone.
func serviceOverrides(cmd *cobra.Command) Overrides {
	o := Overrides{}
	if cmd.Flags().Changed("seed") {
		o.SeedName = &runFlags.seedName
	}
	if cmd.Flags().Changed("seed-file") {
		o.SeedFile = &runFlags.seedFile
	}
	if cmd.Flags().Changed("url") {
		o.URL = &runFlags.url
	}
	if cmd.Flags().Changed("interval") {
		o.Interval = &runFlags.interval
	}
	if cmd.Flags().Changed("compress-at") {
		o.CompressAt = &runFlags.compressAt
	}
	o.NoShell = runFlags.noShell
	return o
}

func init() {
	runCmd.Flags().StringVar(&runFlags.seedName, "seed", "default", "builtin seed name")
	runCmd.Flags().StringVar(&runFlags.seedFile, "seed-file", "", "load the seed from a file (overrides --seed)")
	runCmd.Flags().StringVar(&runFlags.url, "url", "http://localhost:1234", "OpenAI-compatible server URL")
	runCmd.Flags().DurationVar(&runFlags.interval, "interval", 0, "pause between thought cycles (0 = continuous)")
	runCmd.Flags().IntVar(&runFlags.compressAt, "compress-at", 5000, "context size that triggers compression")
	runCmd.Flags().BoolVar(&runFlags.noShell, "no-shell", false, "run headless, without the interactive shell")

	rootCmd.AddCommand(runCmd)
}
