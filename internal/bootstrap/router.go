package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/folio-studio/folio-web/internal/api/http"
	"github.com/folio-studio/folio-web/internal/api/http/middleware"
	"github.com/folio-studio/folio-web/internal/metrics"
	"github.com/folio-studio/folio-web/internal/render"
	sitehttp "github.com/folio-studio/folio-web/internal/site/http"
	"github.com/folio-studio/folio-web/internal/viewmodel"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Analytics      string
	StaticDir      string
	AllowedOrigins []string

	Gateway  sitehttp.Gateway
	Renderer *render.Renderer
	// Cache is reported by the health endpoints; nil means disabled.
	Cache  httpapi.Pinger
	Logger *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(logger))
	r.Use(middleware.MetricsMiddleware())

	if len(dep.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  dep.AllowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Accept", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Cache)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	site := sitehttp.New(sitehttp.Options{
		Gateway:   dep.Gateway,
		Renderer:  dep.Renderer,
		Builder:   viewmodel.NewBuilder(dep.Analytics, logger),
		Logger:    logger,
		StaticDir: dep.StaticDir,
	})
	site.Register(r)

	return r
}
