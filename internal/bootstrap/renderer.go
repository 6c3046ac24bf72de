package bootstrap

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/config"
	"github.com/folio-studio/folio-web/internal/render"
	"github.com/folio-studio/folio-web/web"
)

// OpenRenderer loads templates from TemplatesDir, or from the embedded set
// when none is configured. Reload only applies to a directory.
func OpenRenderer(ctx context.Context, cfg config.RenderConfig, logger *zap.Logger) (*render.Renderer, error) {
	if cfg.TemplatesDir == "" {
		return render.New(web.Templates(), logger)
	}

	r, err := render.New(os.DirFS(cfg.TemplatesDir), logger)
	if err != nil {
		return nil, err
	}
	if cfg.Reload {
		if _, err := r.Watch(ctx, cfg.TemplatesDir); err != nil {
			return nil, err
		}
	}
	return r, nil
}
