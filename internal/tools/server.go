// Package tools exposes BMKG data and the region gazetteer as MCP tools.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
	"github.com/couchcryptid/bmkg-mcp-server/internal/observability"
)

// Upstream fetches and decodes BMKG feeds.
type Upstream interface {
	LatestEarthquake(ctx context.Context) (domain.Earthquake, error)
	SignificantEarthquakes(ctx context.Context) ([]domain.Earthquake, error)
	FeltEarthquakes(ctx context.Context) ([]domain.Earthquake, error)
	Forecast(ctx context.Context, adm4 string) (domain.Forecast, error)
	Nowcast(ctx context.Context, lang string) (domain.NowcastFeed, error)
	AlertDetail(ctx context.Context, lang, capCode string) (domain.CAPAlert, error)
}

// Regions provides the loaded region table.
type Regions interface {
	Table() (*gazetteer.Table, error)
	Path() string
}

// AuditSink receives one event per tool call.
type AuditSink interface {
	Publish(ctx context.Context, event domain.ToolCallEvent) error
}

// Options are the formatting constants injected into tool output.
type Options struct {
	Attribution       string
	DefaultRegionCode string
	StaticURL         string // host serving shakemap images
}

// Server holds the dependencies shared by all tool handlers.
type Server struct {
	upstream Upstream
	regions  Regions
	audit    AuditSink // nil disables the audit trail
	opts     Options
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewServer creates the tool handlers. audit may be nil.
func NewServer(upstream Upstream, regions Regions, audit AuditSink, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Server {
	opts.StaticURL = strings.TrimRight(opts.StaticURL, "/")
	return &Server{
		upstream: upstream,
		regions:  regions,
		audit:    audit,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

// Definition pairs a tool schema with its instrumented handler.
type Definition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Definitions returns every tool in registration order.
func (s *Server) Definitions() []Definition {
	defs := []struct {
		tool mcp.Tool
		h    handler
	}{
		{latestEarthquakeTool(), s.latestEarthquake},
		{significantEarthquakesTool(), s.significantEarthquakes},
		{feltEarthquakesTool(), s.feltEarthquakes},
		{searchLocationCodeTool(), s.searchLocationCode},
		{villagesInDistrictTool(), s.villagesInDistrict},
		{weatherForecastTool(s.opts.DefaultRegionCode), s.weatherForecast},
		{weatherAlertsTool(), s.weatherAlerts},
		{weatherAlertDetailTool(), s.weatherAlertDetail},
		{alertsByDistrictTool(), s.alertsByDistrict},
	}
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = Definition{Tool: d.tool, Handler: s.instrument(d.tool.Name, d.h)}
	}
	return out
}

// Register adds every tool to srv.
func (s *Server) Register(srv *server.MCPServer) {
	for _, d := range s.Definitions() {
		srv.AddTool(d.Tool, d.Handler)
	}
}

// NewMCPServer builds an MCP server with all tools registered.
func (s *Server) NewMCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.Register(srv)
	return srv
}

// reply is a handler's result plus its outcome for metrics and audit.
type reply struct {
	result  *mcp.CallToolResult
	outcome string
	err     error
}

type handler func(ctx context.Context, req mcp.CallToolRequest) reply

func success(v any) reply {
	return jsonReply(v, domain.OutcomeSuccess)
}

// notFound is a structured, non-error result for lookups that matched nothing.
func notFound(v any) reply {
	return jsonReply(v, domain.OutcomeNotFound)
}

// failure is an error result whose text starts with prefix.
func failure(prefix string, err error) reply {
	return reply{
		result:  mcp.NewToolResultError(prefix + err.Error()),
		outcome: domain.OutcomeError,
		err:     err,
	}
}

func failureText(text string, err error) reply {
	return reply{
		result:  mcp.NewToolResultError(text),
		outcome: domain.OutcomeError,
		err:     err,
	}
}

func jsonReply(v any, outcome string) reply {
	text, err := encodeJSON(v)
	if err != nil {
		return failure("Gagal menyusun respons: ", err)
	}
	return reply{result: mcp.NewToolResultText(text), outcome: outcome}
}

// encodeJSON renders v with two-space indentation and without HTML escaping.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (s *Server) instrument(name string, h handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := domain.Now()
		r := h(ctx, req)
		elapsed := domain.Since(start)

		s.metrics.ToolCalls.WithLabelValues(name, r.outcome).Inc()
		s.metrics.ToolDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		if r.err != nil {
			s.logger.Warn("tool call failed", "tool", name, "error", r.err, "duration", elapsed)
		} else {
			s.logger.Debug("tool call", "tool", name, "outcome", r.outcome, "duration", elapsed)
		}

		if s.audit != nil {
			event := domain.ToolCallEvent{
				Tool:       name,
				Arguments:  req.GetArguments(),
				Outcome:    r.outcome,
				DurationMS: elapsed.Milliseconds(),
				InvokedAt:  start.UTC(),
			}
			if r.err != nil {
				event.Error = r.err.Error()
			}
			if err := s.audit.Publish(ctx, event); err != nil {
				s.metrics.AuditErrors.Inc()
				s.logger.Warn("audit publish failed", "tool", name, "error", err)
			}
		}
		return r.result, nil
	}
}
