package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
)

// Transports the tool server can be reached over.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultAttribution credits BMKG as the data source in tool output.
const DefaultAttribution = "Sumber: BMKG (Badan Meteorologi, Klimatologi, dan Geofisika) - https://www.bmkg.go.id"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	MCPTransport    string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Region table.
	GazetteerPath string

	// BMKG upstream endpoints.
	BMKGTimeout   time.Duration
	BMKGDataURL   string
	BMKGAPIURL    string
	BMKGWebURL    string
	BMKGStaticURL string

	// Output formatting.
	DefaultRegionCode string
	Attribution       string

	// Kafka audit trail of tool calls.
	KafkaBrokers    []string
	KafkaAuditTopic string
	KafkaEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	bmkgTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("BMKG_TIMEOUT", "15s"))
	if err != nil || bmkgTimeout <= 0 {
		return nil, errors.New("invalid BMKG_TIMEOUT")
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	// An explicitly empty HTTP_ADDR disables the listener in stdio mode.
	httpAddr, ok := os.LookupEnv("HTTP_ADDR")
	if !ok {
		httpAddr = ":8080"
	}

	cfg := &Config{
		HTTPAddr:        httpAddr,
		MCPTransport:    strings.ToLower(sharedcfg.EnvOrDefault("MCP_TRANSPORT", TransportStdio)),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GazetteerPath: sharedcfg.EnvOrDefault("GAZETTEER_PATH", "data/base.csv"),

		BMKGTimeout:   bmkgTimeout,
		BMKGDataURL:   sharedcfg.EnvOrDefault("BMKG_DATA_URL", "https://data.bmkg.go.id"),
		BMKGAPIURL:    sharedcfg.EnvOrDefault("BMKG_API_URL", "https://api.bmkg.go.id"),
		BMKGWebURL:    sharedcfg.EnvOrDefault("BMKG_WEB_URL", "https://www.bmkg.go.id"),
		BMKGStaticURL: sharedcfg.EnvOrDefault("BMKG_STATIC_URL", "https://static.bmkg.go.id"),

		DefaultRegionCode: sharedcfg.EnvOrDefault("DEFAULT_REGION_CODE", "31.71.01.1001"),
		Attribution:       sharedcfg.EnvOrDefault("BMKG_ATTRIBUTION", DefaultAttribution),

		KafkaBrokers:    brokers,
		KafkaAuditTopic: sharedcfg.EnvOrDefault("KAFKA_AUDIT_TOPIC", "bmkg-tool-calls"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.MCPTransport != TransportStdio && cfg.MCPTransport != TransportHTTP {
		return nil, fmt.Errorf("invalid MCP_TRANSPORT %q: want stdio or http", cfg.MCPTransport)
	}
	if cfg.MCPTransport == TransportHTTP && cfg.HTTPAddr == "" {
		return nil, errors.New("MCP_TRANSPORT is http but HTTP_ADDR is empty")
	}
	if cfg.GazetteerPath == "" {
		return nil, errors.New("GAZETTEER_PATH is required")
	}
	for name, raw := range map[string]string{
		"BMKG_DATA_URL":   cfg.BMKGDataURL,
		"BMKG_API_URL":    cfg.BMKGAPIURL,
		"BMKG_WEB_URL":    cfg.BMKGWebURL,
		"BMKG_STATIC_URL": cfg.BMKGStaticURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid %s", name)
		}
	}
	if gazetteer.Classify(cfg.DefaultRegionCode) != gazetteer.LevelVillage {
		return nil, errors.New("DEFAULT_REGION_CODE must be a four-segment village code")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_AUDIT_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}
