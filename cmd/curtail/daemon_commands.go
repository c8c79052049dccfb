package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"curtail/internal/daemonctl"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the curtail daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			if _, err := client.Health(cmd.Context()); err == nil {
				fmt.Fprintln(stdout, "Daemon already running")
				return nil
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			if err := daemonctl.Launch(exe, daemonctl.LaunchOptions{ConfigPath: ctx.configPath()}); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon not running, launching...")

			if err := daemonctl.WaitForHealthy(cmd.Context(), client, 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the curtail daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pid, err := daemonctl.StopAndTerminate(daemonctl.PIDPath(cfg), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", pid)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			health, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintln(stdout, "Daemon: not running")
				fmt.Fprintf(stdout, "  (%v)\n", err)
				return nil
			}

			cfg := ctx.configValue()
			pid := 0
			if cfg != nil {
				pid, _, _ = daemonctl.ReadPID(daemonctl.PIDPath(cfg))
			}

			fmt.Fprintln(stdout, "Daemon: running")
			if pid > 0 {
				fmt.Fprintf(stdout, "PID: %d\n", pid)
			}
			fmt.Fprintf(stdout, "Address: %s\n", ctx.serverBaseURL())
			fmt.Fprintf(stdout, "Links stored: %d\n", health.Links)
			fmt.Fprintf(stdout, "Links cached: %d\n", health.Cached)
			fmt.Fprintf(stdout, "Collector shipping: %s\n", health.Collector)
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}
