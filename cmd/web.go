package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kuchbhi/workspace-mcp/internal/instrumentation"
	"github.com/kuchbhi/workspace-mcp/internal/waitlist"
)

const landingPage = `<!DOCTYPE html>
<html>
<head>
  <title>workspace-mcp</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>
    body { font-family: system-ui, sans-serif; max-width: 480px; margin: 4rem auto; padding: 0 1rem; }
    input { padding: 0.5rem; font-size: 1rem; width: 60%; }
    button { background: #1a73e8; color: #fff; border: 0; border-radius: 4px; padding: 0.55rem 1.2rem; font-size: 1rem; cursor: pointer; }
  </style>
</head>
<body>
  <h1>workspace-mcp</h1>
  <p>Connect your AI assistant to Gmail, Drive, Docs and Sheets.</p>
  <form method="post" action="/api/waitlist">
    <input type="email" name="email" placeholder="you@example.com" required>
    <button type="submit">Join the waitlist</button>
  </form>
</body>
</html>
`

func newWebCmd() *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Start the marketing-site waitlist API",
		Long: `Start the web server backing the marketing site: a landing page with a
waitlist form, plus POST /api/waitlist and GET /api/waitlist.

Configuration is read from the environment (a .env file is loaded if
present): DATABASE_URL points at the Postgres instance holding the
waitlist table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("http-addr") {
				if port := os.Getenv("PORT"); port != "" {
					httpAddr = ":" + port
				}
			}
			return runWeb(httpAddr)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", ":3000", "HTTP server address. Can also use PORT env var.")

	return cmd
}

func runWeb(addr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env is a development convenience; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	store, err := waitlist.Open(shutdownCtx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(shutdownCtx); err != nil {
		return err
	}

	handlerOpts := []waitlist.HandlerOption{}
	if provider.Enabled() {
		handlerOpts = append(handlerOpts, waitlist.WithMetrics(provider.Metrics()))
	}
	handler := waitlist.NewHandler(store, handlerOpts...)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(landingPage))
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Waitlist web server starting on %s", addr)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown signal received, stopping web server...")
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(stopCtx)
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("web server stopped with error: %w", err)
		}
	}
	return nil
}
