package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-parser-service/internal/config"
	"github.com/a3tai/pdf-parser-service/internal/mcp"
	"github.com/a3tai/pdf-parser-service/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. Logs always go to stderr so
// stdout stays free for the MCP protocol in stdio mode.
func setupLogging(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return logger
}

// newServer wires the PDF service into the MCP server
func newServer(cfg *config.Config, log *logrus.Entry) (*mcp.Server, error) {
	pdfService, err := pdf.NewService(pdf.ServiceConfig{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory,
		Parser: pdf.ParserConfig{
			Thresholds: cfg.Thresholds(),
			Workers:    cfg.Workers,
			UnicodeNFC: cfg.UnicodeNFC,
		},
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server, nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, log *logrus.Entry) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("Initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	log.Info("Server stopped successfully")
	return nil
}

// runStdioMode handles stdio mode execution. The parent process controls
// the lifecycle; the server returns when stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx)
}

func main() {
	if versionRequested(os.Args[1:]) {
		printVersion(os.Stdout)
		return
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg)
	log := logrus.NewEntry(logger).WithField("mode", cfg.Mode)
	log.WithField("config", cfg.String()).Debug("Starting with configuration")

	server, err := newServer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cancel, server, log)
	} else {
		err = runStdioMode(ctx, server)
	}
	if err != nil {
		log.WithError(err).Error("Server error")
		cancel()
		os.Exit(1)
	}
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Parser Service\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
