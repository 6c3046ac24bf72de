package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/folio-studio/folio-web/internal/api/http"
	"github.com/folio-studio/folio-web/internal/content"
)

func healthRouter(cache httpapi.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpapi.NewHealthHandler("folio-web", "1.2.3", cache).RegisterRoutes(r)
	return r
}

func getHealth(t *testing.T, r *gin.Engine, path string) httpapi.HealthResponse {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp httpapi.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck_CacheDisabled(t *testing.T) {
	r := healthRouter(nil)

	for _, path := range []string{"/health", "/healthz"} {
		resp := getHealth(t, r, path)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "folio-web", resp.Service)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, "disabled", resp.Cache)
		assert.False(t, resp.Timestamp.IsZero())
	}
}

func TestHealthCheck_CacheUpAndDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := healthRouter(content.NewResultCache(client, 0))
	assert.Equal(t, "up", getHealth(t, r, "/health").Cache)

	mr.Close()
	assert.Equal(t, "down", getHealth(t, r, "/health").Cache)
}
