package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8000
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultWorkers     = 1

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_PARSER"
)

// Config holds all configuration for the PDF parser service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string // root for the file-based MCP tools
	MaxFileSize  int64  // Maximum PDF file size in bytes
	Workers      int    // pages reconstructed concurrently per document

	// Reconstruction heuristics, in page points
	ParagraphGap float64
	IndentDelta  float64
	IndentMinGap float64
	UnicodeNFC   bool

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	thresholds := reconstruct.DefaultThresholds()
	return &Config{
		Mode:         ModeServer,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		Workers:      DefaultWorkers,
		ParagraphGap: thresholds.ParagraphGap,
		IndentDelta:  thresholds.IndentDelta,
		IndentMinGap: thresholds.IndentMinGap,
		Version:      "1.0.0",
		ServerName:   "pdf-parser-service",
		LogLevel:     DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// PDF_PARSER_PARAGRAPH_GAP maps to paragraph-gap
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("paragraph-gap", cfg.ParagraphGap)
	viper.SetDefault("indent-delta", cfg.IndentDelta)
	viper.SetDefault("indent-min-gap", cfg.IndentMinGap)
	viper.SetDefault("unicode-nfc", cfg.UnicodeNFC)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for HTTP + MCP over SSE, 'stdio' for MCP over standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory the file-based MCP tools may read from")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("workers", cfg.Workers, "Pages reconstructed concurrently per document")
	pflag.Float64("paragraph-gap", cfg.ParagraphGap, "Vertical gap (points) that starts a new paragraph")
	pflag.Float64("indent-delta", cfg.IndentDelta, "Horizontal shift (points) that marks an indented paragraph")
	pflag.Float64("indent-min-gap", cfg.IndentMinGap, "Minimum vertical gap (points) for an indent to start a paragraph")
	pflag.Bool("unicode-nfc", cfg.UnicodeNFC, "Compose extracted text to Unicode NFC")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize",
		"workers", "paragraph-gap", "indent-delta", "indent-min-gap", "unicode-nfc",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Parser Service - reading-order text extraction for PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # HTTP server on 127.0.0.1:8000 (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081 --workers=4    # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/pdfs           # MCP over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_MODE            Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_DIR             PDF directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_WORKERS         Pages reconstructed concurrently\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_PARAGRAPH_GAP   Paragraph gap\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_INDENT_DELTA    Indent delta\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_INDENT_MIN_GAP  Indent minimum gap\n")
		fmt.Fprintf(os.Stderr, "  PDF_PARSER_UNICODE_NFC     Unicode NFC composition\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Workers = viper.GetInt("workers")
	cfg.ParagraphGap = viper.GetFloat64("paragraph-gap")
	cfg.IndentDelta = viper.GetFloat64("indent-delta")
	cfg.IndentMinGap = viper.GetFloat64("indent-min-gap")
	cfg.UnicodeNFC = viper.GetBool("unicode-nfc")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if err := c.Thresholds().Validate(); err != nil {
		return err
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Thresholds returns the paragraph segmentation thresholds
func (c *Config) Thresholds() reconstruct.Thresholds {
	return reconstruct.Thresholds{
		ParagraphGap: c.ParagraphGap,
		IndentDelta:  c.IndentDelta,
		IndentMinGap: c.IndentMinGap,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Workers: %d, ParagraphGap: %g, IndentDelta: %g, IndentMinGap: %g, UnicodeNFC: %t}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.Workers, c.ParagraphGap, c.IndentDelta, c.IndentMinGap, c.UnicodeNFC)
}

// IsServerMode returns true if the service runs the HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service serves MCP over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
