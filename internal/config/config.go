// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, shared by the widget client
// and the development backend.
type Config struct {
	// ServerURL is the websocket endpoint the widget connects to.
	ServerURL string
	// DBPath locates the local state database.
	DBPath string
	// ReconnectDelay is the fixed wait before a guarded reconnect attempt.
	ReconnectDelay time.Duration
	// PingInterval spaces keepalive pings while the connection is open.
	// Zero disables the keepalive.
	PingInterval time.Duration
	// Port is the devserver listen port.
	Port string
	// FrontendURL is the allowed origin for devserver websocket upgrades.
	FrontendURL string
	// FrameLog controls NDJSON protocol-traffic logging.
	FrameLog FrameLogConfig
}

// FrameLogConfig controls NDJSON frame logging.
type FrameLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("FRAME_LOG_QUEUE_SIZE", 256)
	if queueSize <= 0 {
		queueSize = 256
	}

	cfg := &Config{
		ServerURL:      getEnv("SERVER_URL", "ws://localhost:8080/ws"),
		DBPath:         getEnv("DB_PATH", "./data/widget.db"),
		ReconnectDelay: time.Duration(getEnvInt("RECONNECT_DELAY_MS", 2000)) * time.Millisecond,
		PingInterval:   time.Duration(getEnvInt("PING_INTERVAL", 30)) * time.Second,
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		FrameLog: FrameLogConfig{
			Enabled:   getEnvBool("FRAME_LOG_ENABLED", false),
			Dir:       getEnv("FRAME_LOG_DIR", "./data/logs/frames"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("SERVER_URL cannot be empty")
	}
	if !strings.HasPrefix(c.ServerURL, "ws://") && !strings.HasPrefix(c.ServerURL, "wss://") {
		return fmt.Errorf("SERVER_URL must be a ws:// or wss:// endpoint")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("RECONNECT_DELAY_MS must be > 0")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.FrameLog.Enabled && c.FrameLog.Dir == "" {
		return fmt.Errorf("FRAME_LOG_DIR cannot be empty when frame logging is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
