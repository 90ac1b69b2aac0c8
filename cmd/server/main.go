// Package main is the entry point for the cms-blog MCP server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesprial/cms-blog/internal/auth"
	"github.com/jamesprial/cms-blog/internal/blog"
	"github.com/jamesprial/cms-blog/internal/config"
	"github.com/jamesprial/cms-blog/internal/graphql"
	"github.com/jamesprial/cms-blog/internal/safety"
	"github.com/jamesprial/cms-blog/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	defaultConfigPath = "config.yaml"
	envConfigPath     = "CMS_BLOG_CONFIG_PATH"
	mcpEndpoint       = "/mcp"
	healthEndpoint    = "/healthz"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("could not load .env", zap.Error(err))
	}

	cfg := loadConfig(logger)
	config.ApplyEnvOverrides(cfg)

	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		logger.Warn("could not generate auth token, running without authentication", zap.Error(err))
	} else if tokenBefore == "" {
		logger.Info("generated auth token (set "+config.EnvAuthToken+" to persist)", zap.String("token", token))
	}

	auditLogger, closeAudit := openAudit(cfg.Audit, logger)
	defer closeAudit()

	observe := graphql.WithObserver(graphql.LogObserver(logger))

	published, err := graphql.NewHTTPClient(cfg.CMS, observe)
	if err != nil {
		logger.Fatal("invalid CMS configuration", zap.Error(err))
	}

	managers := blog.Managers{Published: blog.NewGraphQLBlogManager(published)}
	if cfg.CMS.PreviewToken != "" {
		previewClient, err := graphql.NewHTTPClient(cfg.CMS, observe, graphql.WithPreview(true))
		if err != nil {
			logger.Fatal("invalid CMS preview configuration", zap.Error(err))
		}
		managers.Preview = blog.NewGraphQLBlogManager(previewClient)
	} else {
		logger.Info("preview disabled (set " + config.EnvPreviewToken + " to enable)")
	}

	renderer := blog.NewContentRenderer(safety.NewFilter(
		cfg.Content.Images.Allowlist,
		cfg.Content.Images.Denylist,
	))

	mcpServer := server.NewMCPServer(
		"cms-blog",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	var registrations []tools.Registration
	registrations = append(registrations, blog.BlogTools(blog.Tools{
		Managers:     managers,
		Renderer:     renderer,
		DefaultNavID: cfg.Content.DefaultNavID,
		Audit:        auditLogger,
	})...)
	registrations = append(registrations, graphql.GraphQLTools(published, auditLogger)...)

	tools.RegisterAll(mcpServer, registrations)
	logger.Info("registered tools", zap.Strings("tools", tools.Names(registrations)))

	mux := http.NewServeMux()
	mux.Handle(mcpEndpoint, server.NewStreamableHTTPServer(mcpServer, server.WithEndpointPath(mcpEndpoint)))
	mux.HandleFunc(healthEndpoint, healthHandler(managers.Preview != nil))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           auth.NewAuthMiddleware(cfg.Server.AuthToken, healthEndpoint)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("cms-blog listening", zap.String("addr", addr), zap.String("endpoint", mcpEndpoint))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// loadConfig reads the config file named by CMS_BLOG_CONFIG_PATH, or
// config.yaml in the working directory. If the file cannot be read,
// DefaultConfig is returned.
func loadConfig(logger *zap.Logger) *config.Config {
	path := os.Getenv(envConfigPath)
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Info("using default config", zap.String("path", path), zap.Error(err))
		return config.DefaultConfig()
	}

	logger.Info("loaded config", zap.String("path", path))
	return cfg
}

// openAudit opens the audit log when enabled. The returned func closes it and
// is safe to call when auditing is off.
func openAudit(cfg config.AuditConfig, logger *zap.Logger) (*safety.AuditLogger, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}
	audit, closer, err := safety.OpenAuditLog(cfg.LogPath)
	if err != nil {
		logger.Warn("audit logging disabled", zap.Error(err))
		return nil, func() {}
	}
	return audit, func() {
		if err := closer.Close(); err != nil {
			logger.Warn("close audit log", zap.Error(err))
		}
	}
}

// healthHandler reports liveness. It does not contact the CMS.
func healthHandler(preview bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "preview": preview})
	}
}
