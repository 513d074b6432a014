package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/export"
	"github.com/jackzampolin/invoicedesk/internal/home"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the service's current invoice data",
	Long: `Fetch the invoice currently loaded in the service and save it.

The data always comes from the service, so it includes corrections made
from other clients. Fails with "No data to download." when nothing is loaded.

Examples:
  invoicedesk export                       # JSON into ~/.invoicedesk/exports
  invoicedesk export --format xlsx --out ./invoice.xlsx
  invoicedesk export --out -               # JSON to stdout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		art, err := a.newSession().Export(cmd.Context(), format)
		if err != nil {
			return userError(err)
		}

		if exportOut == "-" {
			_, err := cmd.OutOrStdout().Write(art.Data)
			return err
		}

		dir, name := a.exportDir(), art.Name
		if exportOut != "" {
			if info, err := os.Stat(exportOut); err == nil && info.IsDir() {
				dir = exportOut
			} else {
				dir, name = filepath.Dir(exportOut), filepath.Base(exportOut)
			}
		}
		path, err := home.WriteFile(dir, name, art.Data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(art.Data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "artifact format: json or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file or directory, - for stdout (default: export_dir)")
	rootCmd.AddCommand(exportCmd)
}
