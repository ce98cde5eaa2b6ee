package config

import (
	"os"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.HTTPAddr != DefaultHTTPPort {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, DefaultHTTPPort)
	}
	if cfg.MCPAddr != DefaultMCPPort {
		t.Errorf("MCPAddr = %q, want %q", cfg.MCPAddr, DefaultMCPPort)
	}
	if cfg.Store != "file" {
		t.Errorf("Store = %q, want file", cfg.Store)
	}
	if cfg.SimulatorInterval != 5*time.Second {
		t.Errorf("SimulatorInterval = %v, want 5s", cfg.SimulatorInterval)
	}
	if cfg.LLMChatModel != "gpt-4" {
		t.Errorf("LLMChatModel = %q, want gpt-4", cfg.LLMChatModel)
	}
	if cfg.ImportTimeout != 30*time.Second {
		t.Errorf("ImportTimeout = %v, want 30s", cfg.ImportTimeout)
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("AGENTMATRIX_HTTP_ADDR", ":9090")
	t.Setenv("AGENTMATRIX_STORE", "memory")
	t.Setenv("AGENTMATRIX_SIMULATOR_INTERVAL", "250ms")
	t.Setenv("AGENTMATRIX_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Store != "memory" {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.SimulatorInterval != 250*time.Millisecond {
		t.Errorf("SimulatorInterval = %v", cfg.SimulatorInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestParse_InvalidStore(t *testing.T) {
	tests := []struct {
		name  string
		store string
	}{
		{name: "unknown backend", store: "etcd"},
		{name: "redis without url", store: "redis"},
		{name: "postgres without dsn", store: "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AGENTMATRIX_STORE", tt.store)
			t.Setenv("AGENTMATRIX_REDIS_URL", "")
			t.Setenv("AGENTMATRIX_POSTGRES_DSN", "")
			if _, err := Parse(); err == nil {
				t.Errorf("Parse() with store %q should fail", tt.store)
			}
		})
	}
}

func TestParse_BadDuration(t *testing.T) {
	t.Setenv("AGENTMATRIX_SIMULATOR_INTERVAL", "soon")
	if _, err := Parse(); err == nil {
		t.Error("Parse() should reject an invalid duration")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue string
		want         string
	}{
		{
			name:         "env set",
			key:          "TEST_KEY",
			value:        "test-value",
			defaultValue: "default",
			want:         "test-value",
		},
		{
			name:         "env not set",
			key:          "NONEXISTENT_KEY_XYZ",
			value:        "",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				os.Setenv(tt.key, tt.value)
				defer os.Unsetenv(tt.key)
			}
			if got := GetEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("GetEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
