package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/invoicedesk/internal/api"
	"github.com/jackzampolin/invoicedesk/internal/config"
	"github.com/jackzampolin/invoicedesk/internal/home"
	"github.com/jackzampolin/invoicedesk/internal/session"
	"github.com/jackzampolin/invoicedesk/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	serverURL    string
)

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "Review and correct invoice extractions from the command line",
	Long: `invoicedesk drives a running invoice extraction service.

Submit a PDF or image (or one of the service's samples), review the
structured data extracted from each page, correct it in plain language,
query single fields, and export the result as JSON or XLSX.

The service URL comes from --server, INVOICEDESK_SERVER_URL, or
server_url in the config file.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.invoicedesk/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "invoicedesk home directory (default: ~/.invoicedesk)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", string(api.DefaultOutput), "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&serverURL, "server", "", "extraction service URL (overrides server_url)",
	)

	rootCmd.AddCommand(versionCmd)
}

// app is what a command needs to talk to the service.
type app struct {
	home    *home.Dir
	config  *config.Manager
	level   *slog.LevelVar
	logger  *slog.Logger
	service *api.Service
	printer *api.Printer
}

// newApp loads configuration and builds the logger and service client.
func newApp(cmd *cobra.Command) (*app, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	format, err := api.ParseOutputFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	cm, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}
	cfg := cm.Get()

	level := new(slog.LevelVar)
	lvl, _ := cfg.SlogLevel()
	level.Set(lvl)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	base := cfg.ServerURL
	if serverURL != "" {
		base = serverURL
	}
	client := api.NewClient(base,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)
	logger.Debug("configured", "server", client.BaseURL(), "config_file", cm.FileUsed())

	return &app{
		home:    h,
		config:  cm,
		level:   level,
		logger:  logger,
		service: api.NewService(client),
		printer: api.NewPrinter(cmd.OutOrStdout(), format),
	}, nil
}

// newSession creates a session bound to the app's service.
func (a *app) newSession() *session.Session {
	return session.New(a.service, session.Options{
		Logger:  a.logger,
		Samples: a.config.Get().Samples,
	})
}

// exportDir returns the configured export directory, defaulting to the home exports dir.
func (a *app) exportDir() string {
	if dir := a.config.Get().ExportDir; dir != "" {
		return dir
	}
	return a.home.ExportsPath()
}

// userError replaces err with the message a user should see. cobra prints it.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(session.UserMessage(err))
}
