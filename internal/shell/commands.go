package shell

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jackzampolin/invoicedesk/internal/export"
	"github.com/jackzampolin/invoicedesk/internal/home"
	"github.com/jackzampolin/invoicedesk/internal/intake"
	"github.com/jackzampolin/invoicedesk/internal/session"
	"github.com/jackzampolin/invoicedesk/internal/types"
)

func (sh *Shell) registry() map[string]command {
	cmds := map[string]command{
		"help":    {usage: "help", help: "list commands", run: sh.help},
		"process": {usage: "process <file>", help: "upload a PDF or image and extract every page", run: sh.process},
		"sample":  {usage: "sample <name>", help: "process a built-in sample, replacing the current session", run: sh.sample},
		"samples": {usage: "samples", help: "list available samples", run: sh.samples},
		"next":    {usage: "next", help: "go to the next page", run: sh.next},
		"prev":    {usage: "prev", help: "go to the previous page", run: sh.prev},
		"page":    {usage: "page <n>", help: "go to page n (1-based)", run: sh.page},
		"pages":   {usage: "pages", help: "list pages with their status", run: sh.pages},
		"show":    {usage: "show", help: "print the active page", run: sh.show},
		"status":  {usage: "status", help: "print session status", run: sh.status},
		"correct": {usage: "correct [text]", help: "correct the active page; without text, retries the last failed correction", run: sh.correct},
		"extract": {usage: "extract <field>", help: "query one field on the active page", run: sh.extract},
		"vendors": {usage: "vendors [refresh]", help: "list cached vendors, optionally refreshing first", run: sh.vendors},
		"export":  {usage: "export [json|xlsx] [path]", help: "download the service's current data", run: sh.export},
		"preview": {usage: "preview [path]", help: "save the rendered document or image", run: sh.preview},
		"reset":   {usage: "reset", help: "start over", run: sh.reset},
		"quit":    {usage: "quit", help: "leave the shell", run: sh.quit},
	}
	cmds["exit"] = cmds["quit"]
	return cmds
}

func (sh *Shell) help(context.Context, string) error {
	names := make([]string, 0, len(sh.commands))
	for name := range sh.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		c := sh.commands[name]
		sh.println("  %-26s %s", c.usage, c.help)
	}
	return nil
}

func usage(c string) error {
	return fmt.Errorf("usage: %s", c)
}

func (sh *Shell) process(ctx context.Context, args string) error {
	if args == "" {
		return usage(sh.commands["process"].usage)
	}
	candidate, err := intake.FromFile(args)
	if err != nil {
		return err
	}
	doc, err := sh.sess.Admit(candidate)
	if err != nil {
		return err
	}
	if err := sh.sess.Process(ctx, doc); err != nil {
		return err
	}
	sh.summary()
	return nil
}

func (sh *Shell) sample(ctx context.Context, args string) error {
	if args == "" {
		return sh.samples(ctx, args)
	}
	if err := sh.sess.ProcessSample(ctx, args); err != nil {
		return err
	}
	sh.summary()
	return nil
}

func (sh *Shell) samples(context.Context, string) error {
	samples := sh.sess.Samples()
	if len(samples) == 0 {
		sh.println("no samples configured")
		return nil
	}
	for _, s := range samples {
		sh.println("  %s", s)
	}
	return nil
}

// summary prints the outcome of a processing run.
func (sh *Shell) summary() {
	st := sh.sess.State()
	failed := 0
	for _, p := range sh.sess.Pages() {
		if p.Failed() {
			failed++
		}
	}
	sh.println("processed %s: %d page(s), %d failed, %d vendor(s) known", st.Source.Name, st.TotalPages, failed, len(st.Vendors))
	sh.showActive()
}

func (sh *Shell) next(context.Context, string) error {
	sh.sess.Next()
	sh.position()
	return nil
}

func (sh *Shell) prev(context.Context, string) error {
	sh.sess.Prev()
	sh.position()
	return nil
}

func (sh *Shell) page(_ context.Context, args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return usage(sh.commands["page"].usage)
	}
	if !sh.sess.GoTo(n - 1) {
		return session.ErrPageOutOfRange
	}
	sh.position()
	return nil
}

func (sh *Shell) position() {
	if !sh.sess.Populated() {
		sh.println("no document loaded")
		return
	}
	sh.println("page %d of %d", sh.sess.ActiveIndex()+1, sh.sess.TotalPages())
}

type pageLine struct {
	Page     int    `json:"page" yaml:"page"`
	Document string `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Vendor   string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Total    string `json:"total_amount,omitempty" yaml:"total_amount,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Active   bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

func (sh *Shell) pages(context.Context, string) error {
	pages := sh.sess.Pages()
	if len(pages) == 0 {
		return session.ErrNoSession
	}
	active := sh.sess.ActiveIndex()
	lines := make([]pageLine, len(pages))
	for i, p := range pages {
		lines[i] = pageLine{Page: p.PageNumber, Document: p.DocumentID, Error: p.Error, Active: i == active}
		if p.Vendor != nil {
			lines[i].Vendor = p.Vendor.Name
		}
		if p.InvoiceData != nil {
			lines[i].Total = p.InvoiceData.Metadata.Field("total_amount")
		}
	}
	return sh.printer.Print(lines)
}

func (sh *Shell) show(context.Context, string) error {
	if !sh.sess.Populated() {
		return session.ErrNoSession
	}
	sh.showActive()
	return nil
}

func (sh *Shell) showActive() {
	rec, ok := sh.sess.Active()
	if !ok {
		return
	}
	sh.position()
	if rec.Failed() {
		sh.println("warning: the service reported an error for this page: %s", rec.Error)
	}
	if err := sh.printer.Print(rec); err != nil {
		sh.logger.Warn("failed to print page", "error", err)
	}
}

type statusView struct {
	Page            string      `json:"page" yaml:"page"`
	Source          string      `json:"source,omitempty" yaml:"source,omitempty"`
	PreviewMode     string      `json:"preview_mode,omitempty" yaml:"preview_mode,omitempty"`
	Pending         bool        `json:"pending" yaml:"pending"`
	Vendors         int         `json:"vendors" yaml:"vendors"`
	LastError       string      `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	CorrectionDraft string      `json:"correction_draft,omitempty" yaml:"correction_draft,omitempty"`
	LastField       *fieldValue `json:"last_field,omitempty" yaml:"last_field,omitempty"`
}

type fieldValue struct {
	Name  string `json:"name" yaml:"name"`
	Page  int    `json:"page" yaml:"page"`
	Value any    `json:"value" yaml:"value"`
}

func (sh *Shell) status(context.Context, string) error {
	st := sh.sess.State()
	view := statusView{
		Page:            "none",
		PreviewMode:     string(st.PreviewMode),
		Pending:         st.Pending,
		Vendors:         len(st.Vendors),
		LastError:       st.LastError,
		CorrectionDraft: st.CorrectionDraft,
	}
	if st.Populated {
		view.Page = fmt.Sprintf("%d of %d", st.ActiveIndex+1, st.TotalPages)
	}
	if st.Source != nil {
		view.Source = fmt.Sprintf("%s (%s)", st.Source.Name, st.Source.Kind)
	}
	if st.FieldResult != nil {
		view.LastField = resultView(st.FieldResult)
	}
	return sh.printer.Print(view)
}

func resultView(r *types.FieldQueryResult) *fieldValue {
	return &fieldValue{Name: r.FieldName, Page: r.PageIndex + 1, Value: r.Value}
}

func (sh *Shell) correct(ctx context.Context, args string) error {
	query := args
	if query == "" {
		query = sh.sess.CorrectionDraft()
		if query != "" {
			sh.println("retrying: %s", query)
		}
	}
	merged, err := sh.sess.Correct(ctx, query, sh.sess.ActiveIndex())
	if err != nil {
		return err
	}
	if !merged {
		sh.println("the service returned no changes")
		return nil
	}
	sh.showActive()
	return nil
}

func (sh *Shell) extract(ctx context.Context, args string) error {
	res, err := sh.sess.ExtractField(ctx, args, sh.sess.ActiveIndex())
	if err != nil {
		return err
	}
	return sh.printer.Print(resultView(res))
}

func (sh *Shell) vendors(ctx context.Context, args string) error {
	var vendors []types.Vendor
	switch args {
	case "":
		vendors = sh.sess.Vendors()
	case "refresh":
		var err error
		vendors, err = sh.sess.RefreshVendors(ctx)
		if err != nil {
			sh.println("could not refresh vendors (%s); showing cached list", session.UserMessage(err))
		}
	default:
		return usage(sh.commands["vendors"].usage)
	}
	if len(vendors) == 0 {
		sh.println("no vendors")
		return nil
	}
	return sh.printer.Print(vendors)
}

func (sh *Shell) export(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) > 2 {
		return usage(sh.commands["export"].usage)
	}
	var formatArg, target string
	if len(fields) > 0 {
		formatArg = fields[0]
	}
	if len(fields) > 1 {
		target = fields[1]
	}
	format, err := export.ParseFormat(formatArg)
	if err != nil {
		return err
	}

	art, err := sh.sess.Export(ctx, format)
	if err != nil {
		return err
	}
	path, err := writeArtifact(sh.exportDir, target, art.Name, art.Data)
	if err != nil {
		return err
	}
	sh.println("wrote %s (%d bytes)", path, len(art.Data))
	return nil
}

func (sh *Shell) preview(ctx context.Context, args string) error {
	p, err := sh.sess.Preview(ctx)
	if err != nil {
		return err
	}
	path, err := writeArtifact(sh.previewDir, args, PreviewName(p), p.Data)
	if err != nil {
		return err
	}
	sh.println("wrote %s preview to %s", p.Mode, path)
	return nil
}

func (sh *Shell) reset(context.Context, string) error {
	sh.sess.Reset()
	sh.println("session cleared")
	return nil
}

func (sh *Shell) quit(context.Context, string) error {
	return errQuit
}

// PreviewName picks a file name for a preview from its content type,
// falling back to the preview mode.
func PreviewName(p *session.Preview) string {
	ext := ".pdf"
	if p.Mode == session.PreviewImage {
		ext = ".png"
	}
	if mediaType, _, err := mime.ParseMediaType(p.ContentType); err == nil {
		switch mediaType {
		case "application/pdf":
			ext = ".pdf"
		case "image/jpeg":
			ext = ".jpg"
		default:
			if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
				ext = exts[0]
			}
		}
	}
	return "preview" + ext
}

// writeArtifact writes data to target. An empty target means defaultDir,
// and a target naming an existing directory receives the file under name.
func writeArtifact(defaultDir, target, name string, data []byte) (string, error) {
	if target == "" {
		if defaultDir == "" {
			defaultDir = "."
		}
		return home.WriteFile(defaultDir, name, data)
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return home.WriteFile(target, name, data)
	}
	return home.WriteFile(filepath.Dir(target), filepath.Base(target), data)
}
