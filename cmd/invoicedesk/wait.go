package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var waitTimeout time.Duration

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the extraction service answers",
	Long: `Poll the extraction service once a second until it answers.

Useful in scripts that start the service and the CLI together.
The default timeout comes from ready_timeout in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		timeout := a.config.Get().ReadyTimeout
		if cmd.Flags().Changed("timeout") {
			timeout = waitTimeout
		}

		client := a.service.Client()
		if err := client.WaitReady(cmd.Context(), timeout); err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is ready\n", client.BaseURL())
		return nil
	},
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 30*time.Second, "how long to wait")
	rootCmd.AddCommand(waitCmd)
}
