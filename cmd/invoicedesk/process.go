package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/intake"
	"github.com/jackzampolin/invoicedesk/internal/session"
	"github.com/jackzampolin/invoicedesk/internal/types"
)

var (
	runPage    int
	runCorrect string
	runExtract string
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Extract invoice data from a PDF or image",
	Long: `Upload a PDF (PNG, JPG and WebP images also work) and print the data
extracted from every page.

A correction or a single-field query can be applied to one page in the
same run.

Examples:
  invoicedesk process invoice.pdf
  invoicedesk process scan.png -o json
  invoicedesk process invoice.pdf --page 2 --correct "PO number should be PO-9"
  invoicedesk process invoice.pdf --extract due_date`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, func(ctx context.Context, sess *session.Session) error {
			candidate, err := intake.FromFile(args[0])
			if err != nil {
				return err
			}
			doc, err := sess.Admit(candidate)
			if err != nil {
				return err
			}
			return sess.Process(ctx, doc)
		})
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample <name>",
	Short: "Extract invoice data from one of the service's samples",
	Long: `Ask the service to process one of its built-in sample documents.

The available names come from samples in the config
(default: sample.pdf, test.pdf).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, func(ctx context.Context, sess *session.Session) error {
			return sess.ProcessSample(ctx, args[0])
		})
	},
}

// runResult is printed by process and sample.
type runResult struct {
	Source      *session.Source         `json:"source" yaml:"source"`
	TotalPages  int                     `json:"total_pages" yaml:"total_pages"`
	Pages       []types.PageRecord      `json:"pages" yaml:"pages"`
	Corrected   *int                    `json:"corrected_page,omitempty" yaml:"corrected_page,omitempty"`
	FieldResult *types.FieldQueryResult `json:"field_result,omitempty" yaml:"field_result,omitempty"`
	Vendors     int                     `json:"vendors_known" yaml:"vendors_known"`
}

// runSession loads a session with load, applies the optional correction
// and field query, and prints the result.
func runSession(cmd *cobra.Command, load func(context.Context, *session.Session) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess := a.newSession()

	if err := load(ctx, sess); err != nil {
		return userError(err)
	}

	// --page only scopes --correct and --extract.
	if runCorrect != "" || runExtract != "" {
		if runPage < 1 || !sess.GoTo(runPage-1) {
			return fmt.Errorf("--page %d is out of range (document has %d pages)", runPage, sess.TotalPages())
		}
	}

	result := runResult{}
	if runCorrect != "" {
		merged, err := sess.Correct(ctx, runCorrect, sess.ActiveIndex())
		if err != nil {
			return userError(err)
		}
		if merged {
			page := runPage
			result.Corrected = &page
		} else {
			a.logger.Warn("correction returned no changes", "page", runPage)
		}
	}
	if runExtract != "" {
		res, err := sess.ExtractField(ctx, runExtract, sess.ActiveIndex())
		if err != nil {
			return userError(err)
		}
		result.FieldResult = res
	}

	st := sess.State()
	result.Source = st.Source
	result.TotalPages = st.TotalPages
	result.Pages = sess.Pages()
	result.Vendors = len(st.Vendors)
	return a.printer.Print(result)
}

func init() {
	for _, c := range []*cobra.Command{processCmd, sampleCmd} {
		c.Flags().IntVar(&runPage, "page", 1, "page to correct or query (1-based)")
		c.Flags().StringVar(&runCorrect, "correct", "", "natural-language correction for --page")
		c.Flags().StringVar(&runExtract, "extract", "", "field to query on --page")
		rootCmd.AddCommand(c)
	}
}
