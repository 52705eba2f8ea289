package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/couchcryptid/bmkg-mcp-server/internal/adapter/bmkg"
	httpadapter "github.com/couchcryptid/bmkg-mcp-server/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/bmkg-mcp-server/internal/adapter/kafka"
	"github.com/couchcryptid/bmkg-mcp-server/internal/config"
	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
	"github.com/couchcryptid/bmkg-mcp-server/internal/observability"
	"github.com/couchcryptid/bmkg-mcp-server/internal/tools"
)

const serverName = "bmkg-mcp-server"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol in stdio mode, so logs go to stderr.
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	store := gazetteer.NewStore(cfg.GazetteerPath, logger, func(rows int) {
		metrics.GazetteerRows.Set(float64(rows))
	})

	client := bmkg.NewClient(bmkg.Endpoints{
		DataURL: cfg.BMKGDataURL,
		APIURL:  cfg.BMKGAPIURL,
		WebURL:  cfg.BMKGWebURL,
	}, cfg.BMKGTimeout, metrics, logger)

	// Audit trail (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var (
		audit  tools.AuditSink
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		audit = writer
		metrics.AuditEnabled.Set(1)
		logger.Info("kafka audit trail enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("kafka audit trail disabled")
	}

	toolServer := tools.NewServer(client, store, audit, tools.Options{
		Attribution:       cfg.Attribution,
		DefaultRegionCode: cfg.DefaultRegionCode,
		StaticURL:         cfg.BMKGStaticURL,
	}, metrics, logger)
	mcpServer := toolServer.NewMCPServer(serverName, version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mcpHandler http.Handler
	if cfg.MCPTransport == config.TransportHTTP {
		mcpHandler = server.NewStreamableHTTPServer(mcpServer)
	}

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, store, mcpHandler, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	if cfg.MCPTransport == config.TransportStdio {
		stdio := server.NewStdioServer(mcpServer)
		stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
		go func() {
			// Listen returns when the host closes stdin or ctx ends.
			if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("stdio transport error", "error", err)
			}
			stop()
		}()
	}
	logger.Info("tool server started", "transport", cfg.MCPTransport, "version", version)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
