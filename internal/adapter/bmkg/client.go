package bmkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/bmkg-mcp-server/internal/observability"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 16 << 20

const userAgent = "bmkg-mcp-server"

// Endpoints are the BMKG hosts the client talks to.
type Endpoints struct {
	DataURL string // TEWS earthquake feeds
	APIURL  string // public forecast API
	WebURL  string // nowcast RSS and CAP documents
}

// Client fetches and decodes BMKG feeds. Every method issues exactly one
// request and never retries.
type Client struct {
	httpClient *http.Client
	dataURL    string
	apiURL     string
	webURL     string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a BMKG client.
func NewClient(endpoints Endpoints, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dataURL: strings.TrimRight(endpoints.DataURL, "/"),
		apiURL:  strings.TrimRight(endpoints.APIURL, "/"),
		webURL:  strings.TrimRight(endpoints.WebURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// StatusError is returned when BMKG answers with a non-200 status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bmkg %s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// get fetches fullURL and returns the body. endpoint labels logs and metrics.
func (c *Client) get(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.do(ctx, endpoint, fullURL)

	outcome := "success"
	if err != nil {
		outcome = "error"
		c.logger.Warn("bmkg request failed", "endpoint", endpoint, "url", fullURL, "error", err)
	} else {
		c.logger.Debug("bmkg request", "endpoint", endpoint, "url", fullURL, "bytes", len(body))
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return body, err
}

func (c *Client) do(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return body, nil
}

// NormalizeLanguage returns lang when it is "id" or "en", and "id" otherwise.
func NormalizeLanguage(lang string) string {
	if lang == "en" {
		return "en"
	}
	return "id"
}
