package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lead-hunter/internal/app"
	"lead-hunter/internal/models"
)

func runCMD(cfgPath *string) *cobra.Command {
	var query, city, user string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one hunt and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, err := app.Build(ctx, cfg, log, app.Options{ConnectRetries: 3})
			if err != nil {
				return err
			}
			defer engine.Close()

			if cfg.Hunter.HuntTimeoutMs > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Hunter.HuntTimeout())
				defer cancel()
			}

			summary, err := engine.Dispatcher.Run(ctx, models.NewSearchQuery(query, city, user))
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if !summary.Success {
				return fmt.Errorf("hunt failed: %s", summary.ErrorCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "search term")
	cmd.Flags().StringVar(&city, "city", "", "location")
	cmd.Flags().StringVar(&user, "user", "cli", "requester the leads are attributed to")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}
