package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFParseFileDescription = `Reconstruct the text of a PDF document page by page, in reading order.

**When to use:** Need the text of a PDF with paragraphs and columns kept in the order a person would read them.

**Why it's useful:** Lines are rebuilt from positioned glyphs and grouped into paragraphs. Pages where layout information is missing fall back to block or plain extraction automatically.

**Examples:**
• Read a report: "Get the text of quarterly-report.pdf page by page"
• Feed a search index: "Parse contract.pdf and index each page separately"
• Check extraction quality: "Parse scan-export.pdf and look at metadata.tiers to see which pages fell back"

**Common workflows:**
1. Document Ingestion: Validate → Parse → Store pages
2. Quality Review: Parse → Inspect metadata.tiers and metadata.degraded → Re-export bad documents

**Best practices:** Validate unknown files first. The response carries per-page text, the whole text and document metadata.`

	PDFParseTextOnlyFileDescription = `Extract the whole text of a PDF document as a single string.

**When to use:** Only the complete text is needed, without per-page results or metadata.

**Why it's useful:** Same reading-order reconstruction as pdf_parse_file with a smaller response.

**Examples:**
• Summarize a paper: "Get the text of paper.pdf for summarization"
• Full-text search: "Extract the text of manual.pdf and search it for 'warranty'"

**Best practices:** Use pdf_parse_file when page boundaries matter.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before parsing any PDF file, especially in automated workflows or when handling unknown files.

**Why it's useful:** Checks the file type by content, the size limit and that the document opens, including encrypted documents that open with an empty password.

**Examples:**
• Batch processing safety: "Validate all PDFs in /invoices/ before bulk parsing"
• Upload verification: "Check contract.pdf is valid before processing"

**Common workflows:**
1. Automated Processing: Validate → Parse if valid → Handle errors gracefully
2. File Quality Check: Validate → Report issues → Fix or reject bad files

**Best practices:** Always run this first in automated workflows.`

	PDFServerInfoDescription = `Describe the server, its limits, its tools and the PDF files available in the configured directory.

**When to use:** At the start of a session, to discover what can be parsed and how.

**Examples:**
• Discovery: "What PDF files can this server read?"
• Limits: "What is the largest file this server accepts?"

**Best practices:** Call once per session; directory listings are limited in depth and size.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_parse_file":           PDFParseFileDescription,
	"pdf_parse_text_only_file": PDFParseTextOnlyFileDescription,
	"pdf_validate_file":        PDFValidateFileDescription,
	"pdf_server_info":          PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
