package cmd

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kuchbhi/workspace-mcp/internal/authflow"
	"github.com/kuchbhi/workspace-mcp/internal/google"
	"github.com/kuchbhi/workspace-mcp/internal/instrumentation"
	"github.com/kuchbhi/workspace-mcp/internal/resources"
	"github.com/kuchbhi/workspace-mcp/internal/server"
	"github.com/kuchbhi/workspace-mcp/internal/session"
	"github.com/kuchbhi/workspace-mcp/internal/tools/docs_tools"
	"github.com/kuchbhi/workspace-mcp/internal/tools/drive_tools"
	"github.com/kuchbhi/workspace-mcp/internal/tools/gmail_tools"
	"github.com/kuchbhi/workspace-mcp/internal/tools/server_tools"
	"github.com/kuchbhi/workspace-mcp/internal/tools/sheets_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig holds the resolved configuration for the serve command.
type ServeConfig struct {
	Transport          string
	HTTPAddr           string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	Contact            string
	CookieKey          []byte
	DisableStreaming   bool
	DebugMode          bool
	Metrics            MetricsConfig
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		baseURL            string
		googleClientID     string
		googleClientSecret string
		contact            string
		cookieKey          string
		disableStreaming   bool
		metricsEnabled     bool
		metricsAddr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Gmail, Drive, Docs
and Sheets operations as tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with the OAuth front door

OAuth Configuration:
  HTTP Transport:
    Base URL (required for deployed instances):
      --base-url https://your-domain.com OR MCP_BASE_URL env var
      Auto-detected for localhost (development only)

    Google OAuth client (required):
      --google-client-id and --google-client-secret flags
      OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars

  STDIO Transport:
    The single default session is seeded from GOOGLE_ACCESS_TOKEN and
    GOOGLE_REFRESH_TOKEN env vars. Without a refresh token, calls fail
    permanently once the access token expires (~1 hour).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if googleClientID == "" {
				googleClientID = os.Getenv("GOOGLE_CLIENT_ID")
			}
			if googleClientSecret == "" {
				googleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
			}
			if baseURL == "" {
				baseURL = os.Getenv("MCP_BASE_URL")
			}
			if contact == "" {
				contact = os.Getenv("MCP_CONTACT")
			}
			if cookieKey == "" {
				cookieKey = os.Getenv("MCP_COOKIE_KEY")
			}

			keyBytes, err := resolveCookieKey(cookieKey)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				if os.Getenv("METRICS_ENABLED") == "false" {
					metricsEnabled = false
				}
			}

			return runServe(ServeConfig{
				Transport:          transport,
				HTTPAddr:           httpAddr,
				BaseURL:            baseURL,
				GoogleClientID:     googleClientID,
				GoogleClientSecret: googleClientSecret,
				Contact:            contact,
				CookieKey:          keyBytes,
				DisableStreaming:   disableStreaming,
				DebugMode:          debugMode,
				Metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact string returned by the validate tool. Can also use MCP_CONTACT env var.")
	cmd.Flags().StringVar(&cookieKey, "cookie-key", "", "HMAC key for the approval cookie (32 bytes, base64 encoded). A random key is generated when unset, which forgets approvals across restarts. Can also use MCP_COOKIE_KEY env var.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// resolveCookieKey decodes the configured approval-cookie key or mints a
// random one for this process.
func resolveCookieKey(encoded string) ([]byte, error) {
	if encoded == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate cookie key: %w", err)
		}
		return key, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie key (must be base64 encoded): %w", err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("cookie key must be exactly 32 bytes (got %d bytes)", len(decoded))
	}
	return decoded, nil
}

// resolveBaseURL falls back to a localhost URL derived from the listen
// address, which only makes sense for development.
func resolveBaseURL(baseURL, addr string) string {
	if baseURL != "" {
		return baseURL
	}
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func runServe(config ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if config.Transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if config.Transport != "stdio" && config.Metrics.Enabled && provider.Enabled() && provider.PrometheusEnabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    config.Metrics.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		log.Printf("Metrics server started on %s", metricsServer.Addr())
	}

	exchanger := google.NewExchanger(config.GoogleClientID, config.GoogleClientSecret)

	contextOpts := []server.ContextOption{}
	if provider.Enabled() {
		contextOpts = append(contextOpts, server.WithMetrics(provider.Metrics()))
	}
	serverContext := server.NewServerContext(shutdownCtx, exchanger, contextOpts...)
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if config.Transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext, config.Contact); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch config.Transport {
	case "stdio":
		seedDefaultSession(serverContext)
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting workspace-mcp server with %s transport...\n", config.Transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, exchanger, provider, config)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
}

// seedDefaultSession binds the stdio transport's single session to tokens
// from the environment.
func seedDefaultSession(sc *server.ServerContext) {
	accessToken := os.Getenv("GOOGLE_ACCESS_TOKEN")
	refreshToken := os.Getenv("GOOGLE_REFRESH_TOKEN")
	if accessToken == "" && refreshToken == "" {
		return
	}

	cred := session.NewCredential(accessToken, refreshToken, "", os.Getenv("GOOGLE_USER_EMAIL"), "")
	sc.RegisterSession(server.DefaultSession, cred)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, contact string) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Server",
			register: func() error {
				return server_tools.RegisterServerTools(mcpSrv, sc, contact)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, sc)
			},
		},
		{
			name: "Docs",
			register: func() error {
				return docs_tools.RegisterDocsTools(mcpSrv, sc)
			},
		},
		{
			name: "Sheets",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, sc)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, exchanger *google.Exchanger, provider *instrumentation.Provider, config ServeConfig) error {
	baseURL := resolveBaseURL(config.BaseURL, config.HTTPAddr)
	if config.BaseURL == "" {
		log.Printf("No base URL configured, using auto-detected: %s", baseURL)
		log.Printf("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		log.Printf("Using configured base URL: %s", baseURL)
	}

	if config.GoogleClientID == "" || config.GoogleClientSecret == "" {
		return fmt.Errorf("HTTP transport requires --google-client-id and --google-client-secret (or GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET env vars)")
	}

	issuer := authflow.NewIssuer(sc, sc.Logger())

	frontDoorOpts := []authflow.HandlerOption{authflow.WithLogger(sc.Logger())}
	if provider.Enabled() {
		frontDoorOpts = append(frontDoorOpts, authflow.WithMetrics(provider.Metrics()))
	}
	frontDoor := authflow.NewHandler(authflow.Config{
		ServerName:        "workspace-mcp",
		ServerDescription: "Gmail, Drive, Docs and Sheets tools over MCP",
		BaseURL:           baseURL,
		CookieKey:         config.CookieKey,
	}, exchanger, issuer, frontDoorOpts...)

	mux := http.NewServeMux()
	frontDoor.RegisterRoutes(mux)

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	streamableOpts := []mcpserver.StreamableHTTPOption{mcpserver.WithEndpointPath("/mcp")}
	if config.DisableStreaming {
		streamableOpts = append(streamableOpts, mcpserver.WithDisableStreaming(true))
	}
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv, streamableOpts...)
	mux.Handle("/mcp", authflow.RequireBearer(sc, mcpHandler))

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Streamable HTTP server with Google OAuth authorization starting on %s\n", config.HTTPAddr)
	fmt.Printf("  MCP endpoint: /mcp\n")
	fmt.Printf("  Authorization endpoints: /authorize, /callback, /token, /register\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if config.Metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", config.Metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
