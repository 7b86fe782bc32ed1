package pdf

import "github.com/a3tai/pdf-parser-service/internal/pdf/reconstruct"

// ParseRequest carries one document to parse. Data is owned by the parser
// for the duration of the call.
type ParseRequest struct {
	Filename string
	Data     []byte
}

// Page is the reconstructed text of one page
type Page struct {
	PageNumber int    `json:"page_number"` // 1-based
	Text       string `json:"text"`
}

// Metadata describes the parsed document
type Metadata struct {
	PageCount int    `json:"page_count"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"file_size"`

	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Version   string `json:"pdf_version,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`

	// Degraded is set when the primary attempt failed on the byte stream
	// and every page was read with plain extraction only.
	Degraded bool `json:"degraded,omitempty"`

	// Tiers counts pages by the extraction tier that produced their text.
	Tiers map[string]int `json:"tiers,omitempty"`
}

// ParseResult is the outcome of a successful parse
type ParseResult struct {
	Text     string   `json:"text"`
	Pages    []Page   `json:"pages"`
	Metadata Metadata `json:"metadata"`
}

// TextOnlyResult is the outcome of a text-only parse
type TextOnlyResult struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	Filename  string `json:"filename"`
}

// ParserConfig contains the tunables of the reconstruction pipeline
type ParserConfig struct {
	Thresholds reconstruct.Thresholds
	Workers    int  // pages reconstructed concurrently, at least 1
	UnicodeNFC bool // compose text to NFC before normalizing
}

// DefaultParserConfig returns the configuration used when nothing is set
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Thresholds: reconstruct.DefaultThresholds(),
		Workers:    1,
	}
}

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFParseFileRequest represents a request to parse a PDF file on disk
type PDFParseFileRequest struct {
	Path string `json:"path"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	MimeType  string `json:"mime_type,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Workers           int        `json:"workers"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	Truncated         bool       `json:"truncated,omitempty"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
