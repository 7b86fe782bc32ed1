package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-parser-service/internal/descriptions"
	perrors "github.com/a3tai/pdf-parser-service/internal/pdf/errors"
	"github.com/a3tai/pdf-parser-service/internal/pdf/pdftest"
)

func newTestService(t *testing.T, dir string, opts ...ParserOption) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		MaxFileSize: 1024 * 1024,
		Directory:   dir,
		Parser:      DefaultParserConfig(),
	}, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  ServiceConfig
		wantErr string
	}{
		{
			name:   "valid",
			config: ServiceConfig{MaxFileSize: 1024, Directory: dir, Parser: DefaultParserConfig()},
		},
		{
			name:    "zero max file size",
			config:  ServiceConfig{MaxFileSize: 0, Directory: dir, Parser: DefaultParserConfig()},
			wantErr: "maxFileSize",
		},
		{
			name:    "empty directory",
			config:  ServiceConfig{MaxFileSize: 1024, Parser: DefaultParserConfig()},
			wantErr: "path validator",
		},
		{
			name:    "invalid parser config",
			config:  ServiceConfig{MaxFileSize: 1024, Directory: dir},
			wantErr: "parser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.MaxFileSize, svc.GetMaxFileSize())
			assert.Equal(t, dir, svc.Directory())
		})
	}
}

func TestService_PDFParseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4 stub"), 0o644))

	doc := &fakeDocument{pages: []fakePage{{plain: "first page"}, {plain: "second page"}}}
	svc := newTestService(t, dir, WithOpener(openerFor(doc)))

	result, err := svc.PDFParseFile(context.Background(), PDFParseFileRequest{Path: "doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", result.Metadata.Filename)
	assert.Equal(t, int64(len("%PDF-1.4 stub")), result.Metadata.FileSize)
	assert.Equal(t, "first page\nsecond page", result.Text)

	text, err := svc.PDFParseTextOnlyFile(context.Background(), PDFParseFileRequest{Path: filepath.Join(dir, "doc.pdf")})
	require.NoError(t, err)
	assert.Equal(t, &TextOnlyResult{Text: "first page\nsecond page", PageCount: 2, Filename: "doc.pdf"}, text)
}

func TestService_PathConfinement(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "outside.pdf")
	require.NoError(t, os.WriteFile(outside, pdftest.Build(""), 0o644))

	svc := newTestService(t, root)
	ctx := context.Background()

	_, err := svc.PDFParseFile(ctx, PDFParseFileRequest{Path: outside})
	require.Error(t, err)
	assert.Equal(t, perrors.KindInvalidInput, perrors.KindOf(err))
	assert.Contains(t, err.Error(), "security validation failed")

	_, err = svc.PDFParseTextOnlyFile(ctx, PDFParseFileRequest{Path: "../outside.pdf"})
	require.Error(t, err)

	_, err = svc.PDFValidateFile(ctx, PDFValidateFileRequest{Path: outside})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside configured directory")
}

func TestService_PDFValidateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.pdf"), pdftest.Build(""), 0o644))

	svc := newTestService(t, dir)
	result, err := svc.PDFValidateFile(context.Background(), PDFValidateFileRequest{Path: "real.pdf"})
	require.NoError(t, err)
	assert.True(t, result.Valid, result.Message)
	assert.Equal(t, filepath.Join(dir, "real.pdf"), result.Path)
	assert.Equal(t, 1, result.Pages)
}

func TestService_ValidateUpload(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	assert.NoError(t, svc.ValidateUpload("application/pdf", pdftest.Build("")))
	err := svc.ValidateUpload("image/png", pdftest.Build(""))
	assert.Equal(t, perrors.KindUnsupportedMedia, perrors.KindOf(err))
}

func TestService_PDFServerInfo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))
	for _, name := range []string{"a.pdf", "nested/b.PDF", ".hidden/c.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
	}

	svc := newTestService(t, dir)
	info, err := svc.PDFServerInfo(context.Background(), "pdf-parser-service", "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "pdf-parser-service", info.ServerName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, dir, info.DefaultDirectory)
	assert.Equal(t, int64(1024*1024), info.MaxFileSize)
	assert.Equal(t, 1, info.Workers)
	assert.Contains(t, info.UsageGuidance, "1MB")

	var names []string
	for _, f := range info.DirectoryContents {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a.pdf", "b.PDF"}, names)
	assert.False(t, info.Truncated)

	var tools []string
	for _, tool := range info.AvailableTools {
		tools = append(tools, tool.Name)
		assert.NotEqual(t, "Tool description not available", tool.Description)
	}
	assert.ElementsMatch(t, descriptions.GetAllToolNames(), tools)
}

func TestDirectoryScanner_Limits(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "deep", "deeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deep", "deeper", "d.pdf"), []byte("%PDF-1.4"), 0o644))

	t.Run("file limit", func(t *testing.T) {
		result, err := NewDirectoryScanner(0, 2, 0).Scan(context.Background(), dir)
		require.NoError(t, err)
		assert.Len(t, result.Files, 2)
		assert.True(t, result.Truncated)
	})

	t.Run("depth limit", func(t *testing.T) {
		result, err := NewDirectoryScanner(2, 0, 0).Scan(context.Background(), dir)
		require.NoError(t, err)
		assert.Len(t, result.Files, 3)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewDirectoryScanner(0, 0, 0).Scan(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
