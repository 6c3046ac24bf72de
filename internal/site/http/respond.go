package http

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/logging"
	"github.com/folio-studio/folio-web/internal/viewmodel"
)

const (
	errorTemplate = "pages/error"

	msgNotFound    = "Not Found"
	msgUnavailable = "content service unavailable"
	msgInternal    = "internal server error"
)

const notFoundHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url=/">
<title>Not Found</title>
</head>
<body><p>Not Found. <a href="/">Continue to the homepage</a>.</p></body>
</html>
`

// statusFor maps a request failure to its status and the message the client
// sees. Upstream details stay in the log.
func statusFor(err error) (int, string) {
	var oe *viewmodel.OrderingError
	switch {
	case errors.As(err, &oe):
		return http.StatusInternalServerError, oe.Error()
	case errors.Is(err, content.ErrUpstream),
		errors.Is(err, content.ErrUnauthorized),
		errors.Is(err, content.ErrNoMasterRef):
		return http.StatusBadGateway, msgUnavailable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail logs err, records it on the gin context and writes the negotiated
// error response.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	logging.FromContext(c.Request.Context(), h.logger).Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.respondError(c, status, msg)
	c.Abort()
}

func (h *Handler) respondError(c *gin.Context, status int, msg string) {
	switch negotiate(c) {
	case formatHTML:
		if h.renderer != nil && h.renderer.Has(errorTemplate) {
			c.HTML(status, errorTemplate, &Page{
				Title:        http.StatusText(status),
				ProjectIndex: -1,
				PostIndex:    -1,
				Status:       status,
				Message:      msg,
			})
			return
		}
		c.Data(status, "text/plain; charset=utf-8", []byte(msg))
	case formatJSON:
		c.JSON(status, gin.H{"error": msg})
	default:
		c.Data(status, "text/plain; charset=utf-8", []byte(msg))
	}
}

// NotFound answers an unmatched path. HTML clients also get a Location
// header and a refresh to the homepage.
func NotFound(c *gin.Context) {
	switch negotiate(c) {
	case formatHTML:
		c.Header("Location", "/")
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundHTML))
	case formatJSON:
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		c.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte(msgNotFound))
	}
}

func (h *Handler) fallback(c *gin.Context) {
	if h.serveStatic(c) {
		return
	}
	NotFound(c)
}

// serveStatic serves a regular file from the static directory when one exists
// at the request path.
func (h *Handler) serveStatic(c *gin.Context) bool {
	if h.staticDir == "" {
		return false
	}
	if m := c.Request.Method; m != http.MethodGet && m != http.MethodHead {
		return false
	}

	rel := path.Clean("/" + c.Request.URL.Path)
	file := filepath.Join(h.staticDir, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	c.File(file)
	return true
}
