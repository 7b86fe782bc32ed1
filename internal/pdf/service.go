package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
	"github.com/a3tai/pdf-parser-service/internal/pdf/security"
)

// ServiceConfig contains the settings of a Service
type ServiceConfig struct {
	MaxFileSize int64
	Directory   string // root for file-based operations
	Parser      ParserConfig
	Logger      *logrus.Entry
}

// Service handles PDF operations by orchestrating the parser, the upload
// validator and the file-based tools
type Service struct {
	maxFileSize   int64
	parser        *Parser
	reader        *Reader
	validator     *Validator
	scanner       *DirectoryScanner
	pathValidator *security.PathValidator
	log           *logrus.Entry
}

// NewService creates a new PDF service with all components
func NewService(config ServiceConfig, opts ...ParserOption) (*Service, error) {
	if config.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}

	pathValidator, err := security.NewPathValidator(config.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	parser, err := NewParser(config.Parser, append([]ParserOption{WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	return &Service{
		maxFileSize:   config.MaxFileSize,
		parser:        parser,
		reader:        NewReader(config.MaxFileSize),
		validator:     NewValidator(config.MaxFileSize, parser.opener),
		scanner:       NewDirectoryScanner(5, 100, 3*time.Second), // max 5 levels, 100 files, 3 second limit
		pathValidator: pathValidator,
		log:           log,
	}, nil
}

// Parse reconstructs every page of an uploaded document
func (s *Service) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	return s.parser.Parse(ctx, req)
}

// ParseTextOnly returns the complete text of an uploaded document
func (s *Service) ParseTextOnly(ctx context.Context, req ParseRequest) (*TextOnlyResult, error) {
	return s.parser.ParseTextOnly(ctx, req)
}

// ValidateUpload checks content type, content and size of an upload
func (s *Service) ValidateUpload(contentType string, data []byte) error {
	return s.validator.ValidateUpload(contentType, data)
}

// PDFParseFile parses a PDF file inside the configured directory
func (s *Service) PDFParseFile(ctx context.Context, req PDFParseFileRequest) (*ParseResult, error) {
	parseReq, err := s.readConfined(req.Path)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(ctx, *parseReq)
}

// PDFParseTextOnlyFile returns the text of a PDF file inside the configured directory
func (s *Service) PDFParseTextOnlyFile(ctx context.Context, req PDFParseFileRequest) (*TextOnlyResult, error) {
	parseReq, err := s.readConfined(req.Path)
	if err != nil {
		return nil, err
	}
	return s.parser.ParseTextOnly(ctx, *parseReq)
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(ctx context.Context, req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "security validation failed")
	}
	return s.validator.ValidateFile(ctx, PDFValidateFileRequest{Path: path})
}

// PDFServerInfo returns server information, the available tools and the
// PDF files found in the configured directory
func (s *Service) PDFServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	root := s.pathValidator.Root()

	scanCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	scan, err := s.scanner.Scan(scanCtx, root)
	if err != nil {
		// A failed scan should not fail server info.
		s.log.WithError(err).WithField("directory", root).Warn("directory scan failed")
		scan = &ScanResult{Files: []FileInfo{}}
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  root,
		MaxFileSize:       s.maxFileSize,
		Workers:           s.parser.Config().Workers,
		AvailableTools:    availableTools(),
		DirectoryContents: scan.Files,
		Truncated:         scan.Truncated,
		UsageGuidance:     usageGuidance(s.maxFileSize),
	}, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Directory returns the absolute root for file-based operations
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

func (s *Service) readConfined(path string) (*ParseRequest, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindInvalidInput, err, "security validation failed")
	}
	return s.reader.ReadFile(resolved)
}
