// Package httpapi exposes the PDF parser over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-parser-service/internal/pdf"
)

// Service is the part of the PDF service the HTTP surface needs
type Service interface {
	Parse(ctx context.Context, req pdf.ParseRequest) (*pdf.ParseResult, error)
	ParseTextOnly(ctx context.Context, req pdf.ParseRequest) (*pdf.TextOnlyResult, error)
	ValidateUpload(contentType string, data []byte) error
	GetMaxFileSize() int64
}

// Option configures the router
type Option func(*routerConfig)

type routerConfig struct {
	mcp http.Handler
}

// WithMCP mounts an MCP SSE handler on /sse and /message
func WithMCP(h http.Handler) Option {
	return func(c *routerConfig) {
		c.mcp = h
	}
}

// NewRouter builds the gin engine serving the parse endpoints
func NewRouter(svc Service, log *logrus.Entry, opts ...Option) *gin.Engine {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	h := &handler{
		svc:         svc,
		maxFileSize: svc.GetMaxFileSize(),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(log), accessLog(), corsMiddleware())

	router.GET("/health", h.health)
	router.POST("/parse", h.parse)
	router.POST("/parse-text-only", h.parseTextOnly)

	if cfg.mcp != nil {
		mcpHandler := gin.WrapH(cfg.mcp)
		router.GET("/sse", mcpHandler)
		router.POST("/message", mcpHandler)
	}

	return router
}
