// Package shell is an interactive command loop over a single Session.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackzampolin/invoicedesk/internal/api"
	"github.com/jackzampolin/invoicedesk/internal/session"
)

// Prompt is printed before each command when running interactively.
const Prompt = "invoicedesk> "

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Options configures a Shell.
type Options struct {
	Out    io.Writer
	Format api.OutputFormat
	Logger *slog.Logger
	// ExportDir is where export artifacts go when no path is given.
	ExportDir string
	// PreviewDir is where previews go when no path is given.
	PreviewDir string
	// Quiet suppresses the prompt, e.g. when input is not a terminal.
	Quiet bool
}

// Shell reads commands and applies them to its session.
type Shell struct {
	sess       *session.Session
	out        io.Writer
	printer    *api.Printer
	logger     *slog.Logger
	exportDir  string
	previewDir string
	quiet      bool
	commands   map[string]command
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args string) error
}

// New creates a shell over sess.
func New(sess *session.Session, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	sh := &Shell{
		sess:       sess,
		out:        out,
		printer:    api.NewPrinter(out, opts.Format),
		logger:     logger,
		exportDir:  opts.ExportDir,
		previewDir: opts.PreviewDir,
		quiet:      opts.Quiet,
	}
	sh.commands = sh.registry()
	return sh
}

// Run reads commands from in until EOF, quit, or ctx is done. Command
// failures are reported and the loop continues.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if !sh.quiet {
			fmt.Fprint(sh.out, Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := sh.Exec(ctx, scanner.Text()); errors.Is(err, errQuit) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// Exec runs a single command line. The returned error has already been
// reported to the output.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	cmd, ok := sh.commands[name]
	if !ok {
		fmt.Fprintf(sh.out, "unknown command %q (try help)\n", name)
		return fmt.Errorf("unknown command %q", name)
	}

	err := cmd.run(ctx, args)
	switch {
	case err == nil, errors.Is(err, errQuit):
	case errors.Is(err, session.ErrStaleResponse):
		sh.logger.Debug("response discarded", "command", name)
	default:
		fmt.Fprintf(sh.out, "error: %s\n", session.UserMessage(err))
	}
	return err
}

func (sh *Shell) println(format string, args ...any) {
	fmt.Fprintf(sh.out, format+"\n", args...)
}
