package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/di"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the analysis request consumer and the report feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			// Blocks until signal
			return app.Run(cmd.Context())
		},
	}
}
