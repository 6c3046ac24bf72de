package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/render"
	"github.com/folio-studio/folio-web/internal/viewmodel"
)

// Gateway opens a content API session for one request.
type Gateway interface {
	Connect(ctx context.Context) (*content.API, error)
}

// Page is the data every site template receives: the standard context plus
// whichever route fields the page needs. Entities that are not found stay nil.
type Page struct {
	viewmodel.Standard

	Title string

	Home     *content.Entry
	Index    *content.Entry
	About    *content.Entry
	Essays   *content.Entry
	Creation *content.Entry
	Cases    *content.Entry
	Articles *content.Entry

	Project      *content.Entry
	ProjectIndex int
	Post         *content.Entry
	PostIndex    int
	Related      *content.Entry

	// Status and Message are set on error pages.
	Status  int
	Message string
}

type Options struct {
	Gateway   Gateway
	Renderer  *render.Renderer
	Builder   *viewmodel.Builder
	Logger    *zap.Logger
	StaticDir string
}

type Handler struct {
	gateway   Gateway
	renderer  *render.Renderer
	builder   *viewmodel.Builder
	logger    *zap.Logger
	staticDir string
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := opts.Builder
	if builder == nil {
		builder = viewmodel.NewBuilder("", logger)
	}
	return &Handler{
		gateway:   opts.Gateway,
		renderer:  opts.Renderer,
		builder:   builder,
		logger:    logger,
		staticDir: opts.StaticDir,
	}
}

// Register mounts the site pages behind the content gateway and installs the
// static file and not-found fallback.
func (h *Handler) Register(r *gin.Engine) {
	if h.renderer != nil {
		r.HTMLRender = h.renderer
	}

	site := r.Group("/", h.Connect())
	site.GET("/", h.home)
	site.GET("/index", h.index)
	site.GET("/about", h.about)
	site.GET("/essays", h.essays)
	site.GET("/creation", h.creation)
	site.GET("/case/:id", h.caseStudy)
	site.GET("/article/:uid", h.article)

	r.NoRoute(h.fallback)
}
