package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WayneDavenport/Mediaq-sub000/internal/config"
)

func init() {
	var repair bool

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Check every queue for gaps and duplicate positions",
		Long: `Check every owner's queue numbering and print a JSON report.
With --repair, queues that are not dense are renumbered in their current order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			app, cleanup, err := initializeApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer cleanup()

			report, err := app.Engine.AuditQueues(context.Background(), repair)
			if err != nil {
				return fmt.Errorf("failed to audit queues: %w", err)
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	auditCmd.Flags().BoolVar(&repair, "repair", false, "renumber queues that are not dense")

	rootCmd.AddCommand(auditCmd)
}
