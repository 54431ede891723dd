/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales grid server: upload a sales export,
  get back the complete date x SKU table, edit costs, download.

STARTUP SEQUENCE:
  1. Load environment defaults, parse command-line flags
  2. Build the zerolog logger
  3. Initialize the SQLite session workspace
  4. Register variants, create API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port         HTTP server port (default: 8080, env SALESGRID_PORT)
  -db           SQLite path for the session workspace
                (default: ":memory:", env SALESGRID_DB)
  -session-ttl  How long an upload stays downloadable (default: 1h)
  -variant      Variant used when an upload names none
  -max-upload   Upload limit in MB (default: 32)
  -log-level    debug, info, warn, error (default: info)
  -log-format   json or console (default: json)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults
  ./server

  # Human-readable logs, 15 minute sessions
  ./server -log-format=console -session-ttl=15m

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Environment defaults
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/sales-grid/api"
	"github.com/warp/sales-grid/config"
	"github.com/warp/sales-grid/factory"
	"github.com/warp/sales-grid/logging"
	"github.com/warp/sales-grid/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite path for the session workspace")
	sessionTTL := flag.Duration("session-ttl", cfg.SessionTTL, "How long an upload stays available")
	variant := flag.String("variant", cfg.DefaultVariant, "Default variant for uploads")
	maxUpload := flag.Int("max-upload", cfg.MaxUploadMB, "Upload size limit in MB")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	logFormat := flag.String("log-format", cfg.LogFormat, "Log format: json or console")
	flag.Parse()

	logger, err := logging.New(os.Stdout, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db", *dbPath).Msg("failed to initialize session workspace")
	}
	defer store.Close()

	variants := factory.DefaultRegistry()
	if err := variants.SetDefault(*variant); err != nil {
		logger.Fatal().Err(err).Msg("invalid default variant")
	}

	// Initialize handler
	handler := api.NewHandler(store, variants, logger)
	handler.SessionTTL = *sessionTTL
	cfg.MaxUploadMB = *maxUpload
	handler.MaxUploadBytes = cfg.MaxUploadBytes()

	// Create router
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Int("port", *port).
			Str("db", *dbPath).
			Dur("session_ttl", *sessionTTL).
			Str("default_variant", variants.Default()).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
