package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"curtail/internal/logship"
)

// newLogtestCommand sends a probe event straight through the shipping core so
// collector credentials and connectivity can be verified end to end.
func newLogtestCommand(ctx *commandContext) *cobra.Command {
	var stack string
	var level string
	var pkg string

	cmd := &cobra.Command{
		Use:   "logtest [MESSAGE]",
		Short: "Ship a probe event to the log collector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Collector.Enabled {
				return errors.New("collector is disabled; enable [collector] in the configuration first")
			}

			message := "curtail collector probe"
			if len(args) == 1 {
				message = args[0]
			}

			client := logship.New(logship.Config{
				BaseURL: cfg.Collector.BaseURL,
				Credentials: logship.Credentials{
					Email:        cfg.Collector.Email,
					Name:         cfg.Collector.Name,
					RollNo:       cfg.Collector.RollNo,
					AccessCode:   cfg.Collector.AccessCode,
					ClientID:     cfg.Collector.ClientID,
					ClientSecret: cfg.Collector.ClientSecret,
				},
				TimeoutSeconds: cfg.Collector.RequestTimeout,
			},
				logship.WithMaxAttempts(cfg.Collector.MaxAttempts),
				logship.WithBackoffBase(time.Duration(cfg.Collector.RetryBackoffMS)*time.Millisecond),
			)

			receipt, err := client.Send(cmd.Context(), logship.Stack(stack), logship.Level(level), pkg, message)
			if err != nil {
				return fmt.Errorf("probe event rejected (%s): %w", logship.ErrorKind(err), err)
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Collector accepted the event (log id %s)\n", receipt.LogID)
			return nil
		},
	}

	cmd.Flags().StringVar(&stack, "stack", string(logship.StackBackend), "Event stack (backend or frontend)")
	cmd.Flags().StringVar(&level, "level", string(logship.LevelInfo), "Event level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&pkg, "package", logship.PackageService, "Event package from the collector taxonomy")
	return cmd
}
