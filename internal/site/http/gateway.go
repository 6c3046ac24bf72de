package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/logging"
)

const apiKey = "content.api"

// Connect opens the content API for the request and stores the handle in the
// gin context. A failure aborts the request through the error responder.
func (h *Handler) Connect() gin.HandlerFunc {
	return func(c *gin.Context) {
		api, err := h.gateway.Connect(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		logging.FromContext(c.Request.Context(), h.logger).Debug("content api connected", zap.String("ref", api.Ref))
		c.Set(apiKey, api)
		c.Next()
	}
}

func apiFrom(c *gin.Context) *content.API {
	return c.MustGet(apiKey).(*content.API)
}
