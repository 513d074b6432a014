package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/home"
	"github.com/jackzampolin/invoicedesk/internal/session"
	"github.com/jackzampolin/invoicedesk/internal/shell"
)

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Save the rendered document currently loaded in the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		recency := strconv.FormatInt(time.Now().UnixMilli(), 10)
		data, contentType, err := a.service.Preview(cmd.Context(), recency)
		if err != nil {
			return userError(err)
		}

		p := &session.Preview{Mode: session.PreviewDocument, ContentType: contentType, Data: data}
		if strings.HasPrefix(contentType, "image/") {
			p.Mode = session.PreviewImage
		}

		dir, name := a.home.PreviewsPath(), shell.PreviewName(p)
		if previewOut != "" {
			dir, name = filepath.Dir(previewOut), filepath.Base(previewOut)
		}
		path, err := home.WriteFile(dir, name, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s preview to %s\n", p.Mode, path)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewOut, "out", "", "output file (default: ~/.invoicedesk/previews/preview.<ext>)")
	rootCmd.AddCommand(previewCmd)
}
