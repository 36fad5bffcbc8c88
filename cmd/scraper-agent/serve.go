package main

import (
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustcheck/scraper-agent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose an HTTP endpoint that triggers scan batches on demand",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := buildScheduler(cfg)
		if err != nil {
			return err
		}

		handler := server.NewHandler(sched, cfg.Server.BearerToken, zap.L().Named("server"))
		funcframework.RegisterHTTPFunction("/", handler.ServeHTTP)

		zap.L().Info("trigger server listening", zap.String("port", cfg.Server.Port))
		return funcframework.Start(cfg.Server.Port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
