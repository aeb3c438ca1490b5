package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "ws://localhost:8080/ws" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v, want 2s", cfg.ReconnectDelay)
	}
	if cfg.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %v, want 30s", cfg.PingInterval)
	}
	if cfg.FrameLog.Enabled {
		t.Error("frame logging should default off")
	}
	if cfg.FrameLog.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want 256", cfg.FrameLog.QueueSize)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_URL", "wss://chat.example.com/ws")
	t.Setenv("RECONNECT_DELAY_MS", "500")
	t.Setenv("FRAME_LOG_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "wss://chat.example.com/ws" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("ReconnectDelay = %v, want 500ms", cfg.ReconnectDelay)
	}
	if !cfg.FrameLog.Enabled {
		t.Error("frame logging should be enabled")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServerURL:      "ws://localhost:8080/ws",
		DBPath:         "./data/widget.db",
		ReconnectDelay: time.Second,
		Port:           "8080",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty server url", func(c *Config) { c.ServerURL = "" }, true},
		{"http server url", func(c *Config) { c.ServerURL = "http://localhost:8080" }, true},
		{"wss url", func(c *Config) { c.ServerURL = "wss://example.com/ws" }, false},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"zero reconnect delay", func(c *Config) { c.ReconnectDelay = 0 }, true},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"frame log enabled without dir", func(c *Config) {
			c.FrameLog.Enabled = true
			c.FrameLog.Dir = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true}, {"true", true}, {"YES", true}, {"on", true},
		{"0", false}, {"false", false}, {"off", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)
		if got := getEnvBool("TEST_BOOL", false); got != tt.want {
			t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
