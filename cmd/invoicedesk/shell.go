package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/config"
	"github.com/jackzampolin/invoicedesk/internal/shell"
)

var shellWait bool

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Review invoices interactively",
	Long: `Start an interactive session against the extraction service.

The shell keeps one document loaded: process a file or a sample, move
between pages, correct the active page, query fields, and export.
Type help for the list of commands.

Edits to the config file apply while the shell runs (log level and
sample list).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.home.EnsureExists(); err != nil {
			return err
		}
		ctx := cmd.Context()

		if shellWait {
			if err := a.service.Client().WaitReady(ctx, a.config.Get().ReadyTimeout); err != nil {
				return userError(err)
			}
		}

		sess := a.newSession()
		a.config.OnChange(func(cfg *config.Config) {
			if lvl, err := cfg.SlogLevel(); err == nil {
				a.level.Set(lvl)
			}
			sess.SetSamples(cfg.Samples)
		})
		if a.config.FileUsed() != "" {
			a.config.WatchConfig(a.logger)
		}

		interactive := isTerminal(os.Stdin)
		sh := shell.New(sess, shell.Options{
			Out:        cmd.OutOrStdout(),
			Format:     a.printer.Format(),
			Logger:     a.logger,
			ExportDir:  a.exportDir(),
			PreviewDir: a.home.PreviewsPath(),
			Quiet:      !interactive,
		})
		if interactive {
			cmd.Println("invoicedesk shell, type help for commands")
		}
		return sh.Run(ctx, cmd.InOrStdin())
	},
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func init() {
	shellCmd.Flags().BoolVar(&shellWait, "wait", false, "wait for the service to answer before starting")
	rootCmd.AddCommand(shellCmd)
}
