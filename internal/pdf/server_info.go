package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/pdf-parser-service/internal/descriptions"
)

// DirectoryScanner lists PDF files under a directory with depth, count and
// time limits
type DirectoryScanner struct {
	maxDepth   int
	fileLimit  int
	timeLimit  time.Duration
	skipHidden bool
}

// ScanResult represents the result of a directory scan
type ScanResult struct {
	Files        []FileInfo
	ScanTime     time.Duration
	FilesScanned int
	Truncated    bool
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *DirectoryScanner {
	return &DirectoryScanner{
		maxDepth:   maxDepth,
		fileLimit:  fileLimit,
		timeLimit:  timeLimit,
		skipHidden: true,
	}
}

// Scan walks root and collects PDF files until a limit is hit
func (s *DirectoryScanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	start := time.Now()
	result := &ScanResult{Files: []FileInfo{}}

	err := s.scan(ctx, root, 0, start, result)
	result.ScanTime = time.Since(start)
	return result, err
}

func (s *DirectoryScanner) scan(ctx context.Context, dir string, depth int, start time.Time, result *ScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // unreadable directories are skipped
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.limitReached(start, result) {
			result.Truncated = true
			return nil
		}

		result.FilesScanned++
		name := entry.Name()
		if s.skipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if err := s.scan(ctx, path, depth+1, start, result); err != nil {
				return err
			}
			continue
		}

		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result.Files = append(result.Files, FileInfo{
			Name:         name,
			Path:         path,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

func (s *DirectoryScanner) limitReached(start time.Time, result *ScanResult) bool {
	if s.fileLimit > 0 && len(result.Files) >= s.fileLimit {
		return true
	}
	return s.timeLimit > 0 && time.Since(start) > s.timeLimit
}

// availableTools returns the tools served over MCP
func availableTools() []ToolInfo {
	pathParam := "path (required): Path to the PDF file, absolute or relative to the configured directory"
	return []ToolInfo{
		{
			Name:        "pdf_parse_file",
			Description: descriptions.GetToolDescription("pdf_parse_file"),
			Usage:       "Use this tool to get per-page text in reading order plus document metadata.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_parse_text_only_file",
			Description: descriptions.GetToolDescription("pdf_parse_text_only_file"),
			Usage:       "Use this tool when only the complete document text is needed.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Usage:       "Use this tool to check if a file is a valid PDF before parsing it.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get server information and the PDF files available.",
			Parameters:  "No parameters required",
		},
	}
}

func usageGuidance(maxFileSize int64) string {
	return fmt.Sprintf(`PDF Parser Usage Guide:

1. DISCOVER:
   - Use 'pdf_server_info' to list the PDF files in the configured directory

2. VALIDATE FILES:
   - Use 'pdf_validate_file' to check that a file is a readable PDF

3. READ CONTENT:
   - Use 'pdf_parse_file' for per-page text and metadata
   - Use 'pdf_parse_text_only_file' for the complete text only
   - metadata.tiers tells which extraction level produced each page:
     * "rich": lines and paragraphs rebuilt from glyph positions
     * "block": text blocks in reading order, no paragraph detection
     * "plain": linear text as stored in the document
   - metadata.degraded is true when the document was damaged and only plain text could be read

IMPORTANT NOTES:
- Paths are resolved relative to the configured directory and cannot leave it
- The server can handle files up to %dMB
- Encrypted documents are only readable when they open with an empty password
- Scanned documents without a text layer yield empty pages; OCR is not performed`, maxFileSize/(1024*1024))
}
