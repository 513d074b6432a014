package main

import (
	"github.com/spf13/cobra"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List vendors the service has matched",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		vendors, err := a.service.ListVendors(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return a.printer.Print(vendors)
	},
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
}
