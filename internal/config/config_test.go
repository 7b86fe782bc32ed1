package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeServer {
		t.Errorf("Expected default mode to be 'server', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8000 {
		t.Errorf("Expected default port to be 8000, got %d", cfg.Port)
	}
	if cfg.ServerName != "pdf-parser-service" {
		t.Errorf("Expected default server name to be 'pdf-parser-service', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected default workers to be 1, got %d", cfg.Workers)
	}
	if cfg.Thresholds() != reconstruct.DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", cfg.Thresholds())
	}
	if cfg.UnicodeNFC {
		t.Error("Expected unicode NFC to be off by default")
	}

	currentDir, _ := os.Getwd()
	if cfg.PDFDirectory != currentDir {
		t.Errorf("Expected default PDF directory to be '%s', got '%s'", currentDir, cfg.PDFDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.PDFDirectory = tempDir
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid server config", mutate: func(*Config) {}},
		{name: "valid stdio config", mutate: func(c *Config) { c.Mode = ModeStdio; c.Port = 0 }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port must be"},
		{name: "empty directory", mutate: func(c *Config) { c.PDFDirectory = "" }, wantErr: "cannot be empty"},
		{name: "zero max file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers"},
		{name: "negative paragraph gap", mutate: func(c *Config) { c.ParagraphGap = -7 }, wantErr: "paragraph gap"},
		{name: "zero indent delta", mutate: func(c *Config) { c.IndentDelta = 0 }, wantErr: "indent delta"},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_CreatesDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = filepath.Join(t.TempDir(), "pdfs", "incoming")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if info, err := os.Stat(cfg.PDFDirectory); err != nil || !info.IsDir() {
		t.Errorf("Validate() should create %s", cfg.PDFDirectory)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9000

	if got := cfg.Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %s, want 0.0.0.0:9000", got)
	}
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("expected server mode")
	}
	if cfg.IsDebug() {
		t.Error("IsDebug() should be false for info level")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug() should be true for debug level")
	}

	s := cfg.String()
	for _, want := range []string{"Mode: server", "Port: 9000", "Workers: 1", "ParagraphGap: 7"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %s, missing %q", s, want)
		}
	}
}
