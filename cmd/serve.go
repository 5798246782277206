package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/progress"
	"github.com/kozaktomas/makeup-coach/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Makeup Coach web server.
The server exposes the analysis, catalog and progress API under /api/v1.
Flags override WEB_PORT and WEB_HOST.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
}

// applyServeFlags lets explicit flags win over environment configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	location, err := cfg.Progress.Location()
	if err != nil {
		return fmt.Errorf("invalid progress timezone: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var cl cleanups
	defer cl.run()

	ctx := context.Background()

	services := web.Services{Logger: log}

	if cfg.Database.URL != "" {
		log.Info("connecting to PostgreSQL")
		if err := initPostgres(cfg, log, &cl); err != nil {
			return err
		}
		if services.Analyses, err = database.GetAnalysisWriter(ctx); err != nil {
			return err
		}
		log.Info("analysis storage enabled")
	}

	if services.Catalog, err = openCatalog(cfg, &cl); err != nil {
		return err
	}
	if services.Analyzer, err = buildAnalyzer(ctx, cfg, services.Catalog); err != nil {
		return err
	}

	store, err := openProgressStore(ctx, cfg, &cl)
	if err != nil {
		return err
	}
	services.Tracker = progress.NewTracker(store, progress.TrackerOptions{Location: location})
	log.Info("components ready",
		zap.String("progress_store", cfg.Progress.Store),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Int("regions", len(services.Analyzer.Regions())),
		zap.Int("products", len(services.Analyzer.Products())),
	)

	server := web.NewServer(cfg, services)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	}()

	fmt.Printf("Starting Makeup Coach API on http://%s:%d/api/v1\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
