package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-parser-service/internal/config"
	"github.com/a3tai/pdf-parser-service/internal/descriptions"
	"github.com/a3tai/pdf-parser-service/internal/httpapi"
	"github.com/a3tai/pdf-parser-service/internal/pdf"
)

const shutdownTimeout = 10 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	log        *logrus.Entry

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, log *logrus.Entry) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list never changes at runtime
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		log:        log,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathParam := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file, absolute or relative to the server directory"),
	)

	s.mcpServer.AddTool(mcp.NewTool("pdf_parse_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_parse_file")),
		pathParam,
	), s.handlePDFParseFile)

	s.mcpServer.AddTool(mcp.NewTool("pdf_parse_text_only_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_parse_text_only_file")),
		pathParam,
	), s.handlePDFParseTextOnlyFile)

	s.mcpServer.AddTool(mcp.NewTool("pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		pathParam,
	), s.handlePDFValidateFile)

	s.mcpServer.AddTool(mcp.NewTool("pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFParseFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFParseFile(ctx, pdf.PDFParseFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatParseResult(result)), nil
}

func (s *Server) handlePDFParseTextOnlyFile(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFParseTextOnlyFile(ctx, pdf.PDFParseFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Text of %s (%d pages):\n\n", result.Filename, result.PageCount)
	responseText += result.Text
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(ctx, pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
		if result.Encrypted {
			responseText += "\nThe document is encrypted but opens without a password."
		}
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// Formatting methods
func formatParseResult(result *pdf.ParseResult) string {
	meta := result.Metadata

	text := fmt.Sprintf("Parsed PDF: %s\n", meta.Filename)
	text += fmt.Sprintf("Pages: %d\n", meta.PageCount)
	text += fmt.Sprintf("Size: %d bytes\n", meta.FileSize)
	if meta.Version != "" {
		text += fmt.Sprintf("PDF Version: %s\n", meta.Version)
	}
	if meta.Title != "" {
		text += fmt.Sprintf("Title: %s\n", meta.Title)
	}
	if meta.Author != "" {
		text += fmt.Sprintf("Author: %s\n", meta.Author)
	}
	if meta.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", meta.Producer)
	}
	if len(meta.Tiers) > 0 {
		text += fmt.Sprintf("Extraction tiers: %s\n", formatTiers(meta.Tiers))
	}
	if meta.Degraded {
		text += "\n⚠️  WARNING: The document stream was damaged. Every page was read with plain text extraction, so reading order may be off.\n"
	}

	for _, page := range result.Pages {
		text += fmt.Sprintf("\n--- Page %d ---\n", page.PageNumber)
		text += page.Text + "\n"
	}

	return text
}

func formatTiers(tiers map[string]int) string {
	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, tiers[name])
	}
	return strings.Join(parts, ", ")
}

func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("⚙️  Page Workers: %d\n\n", result.Workers)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		if result.Truncated {
			text += "   (scan stopped early, more files may exist)\n"
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the server in the configured mode and blocks until ctx is
// canceled or the transport fails
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Mode {
	case config.ModeServer:
		return s.runServerMode(ctx)
	case config.ModeStdio:
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %q", s.config.Mode)
	}
}

// runStdioMode serves MCP over stdin and stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	s.log.WithField("directory", s.pdfService.Directory()).Info("Starting PDF MCP server in stdio mode")

	errWriter := s.log.WriterLevel(logrus.ErrorLevel)
	defer errWriter.Close()

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(stdlog.New(errWriter, "", 0))

	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the HTTP parse endpoints and MCP over SSE on one
// listener
func (s *Server) runServerMode(ctx context.Context) error {
	sseServer := server.NewSSEServer(s.mcpServer,
		server.WithBaseURL("http://"+s.config.Address()),
	)

	router := httpapi.NewRouter(s.pdfService, s.log, httpapi.WithMCP(sseServer))
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"address":   s.config.Address(),
			"directory": s.pdfService.Directory(),
		}).Info("Starting PDF parser service")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down PDF parser service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("MCP SSE shutdown failed")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
