package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alx5409/Automatizacion/internal/batch"
	"github.com/alx5409/Automatizacion/internal/browser"
	"github.com/alx5409/Automatizacion/internal/cert"
	"github.com/alx5409/Automatizacion/internal/config"
	"github.com/alx5409/Automatizacion/internal/portal"
	"github.com/alx5409/Automatizacion/internal/session"
)

var version = "dev"

var (
	configPath   string
	maxRecords   int
	showUI       bool
	outputDir    string
	trashDir     string
	downloadsDir string
	logLevel     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "regage",
		Short:   "Download the documents of regage case files from the MITECO portal",
		Version: version,
		Long: `regage walks the output folder, builds the MITECO detail link of every
record JSON it finds, authenticates with the configured client certificate
and downloads the attached PDF documents, one record at a time. Processed
record files are moved into the trash folder, partitioned by producer.`,
		Args:         cobra.NoArgs,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "data/informacionCertsMetalls.txt", "Path to the key=value settings file")
	rootCmd.Flags().IntVarP(&maxRecords, "max-records", "n", 0, "Maximum records to process this run (0 uses the configured value)")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVar(&outputDir, "output", "", "Root folder holding the record files (overrides config)")
	rootCmd.Flags().StringVar(&trashDir, "trash", "", "Archive root for processed record files (overrides config)")
	rootCmd.Flags().StringVar(&downloadsDir, "downloads", "", "Root folder for the per-record download directories (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(&cfg)

	if cfg.CertName == "" {
		return fmt.Errorf("NOMBRE_CERT is not set in %s", configPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	selector := cert.DialogSelector{}
	auth := portal.NewAuthenticator(selector, cfg.CertName, cfg.ElementTimeout, log)

	factory := func(ctx context.Context) (session.Portal, error) {
		b, err := browser.New(browser.Config{
			Headless: cfg.Headless,
			Bin:      cfg.BrowserBin,
			ProxyURL: cfg.ProxyURL,
		})
		if err != nil {
			return nil, err
		}
		return portal.NewClient(b, auth, cfg.PageLoadTimeout, cfg.ElementTimeout)
	}

	s := session.New(factory, cfg, log)
	return batch.New(s, cfg, log).Run(ctx)
}

// applyFlags overlays the command line on the loaded configuration. Flags win
// over file values only when actually set.
func applyFlags(cfg *config.Config) {
	if maxRecords > 0 {
		cfg.MaxRecords = maxRecords
	}
	if showUI {
		cfg.Headless = false
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if trashDir != "" {
		cfg.TrashDir = trashDir
	}
	if downloadsDir != "" {
		cfg.DownloadsDir = downloadsDir
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	return slog.New(handler), nil
}
