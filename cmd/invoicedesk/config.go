package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/config"
	"github.com/jackzampolin/invoicedesk/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a config file with the default settings.

Without a path the file is written to the home directory
(~/.invoicedesk/config.yaml unless --home is set).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		cfg := *a.config.Get()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		view := struct {
			File   string         `json:"file,omitempty" yaml:"file,omitempty"`
			Config map[string]any `json:"config" yaml:"config"`
		}{
			File: a.config.FileUsed(),
			Config: map[string]any{
				"server_url":    cfg.ServerURL,
				"timeout":       cfg.Timeout.String(),
				"ready_timeout": cfg.ReadyTimeout.String(),
				"samples":       cfg.Samples,
				"export_dir":    a.exportDir(),
				"log_level":     cfg.LogLevel,
			},
		}
		return a.printer.Print(view)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
