package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fetch and process a single batch, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := buildScheduler(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return sched.RunBatch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
