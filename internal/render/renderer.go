package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

const (
	layoutsGlob  = "layouts/*.html"
	partialsGlob = "partials/*.html"
	pagesGlob    = "pages/*.html"

	// entryTemplate is the template every page set executes.
	entryTemplate = "layout"
)

var ErrUnknownPage = errors.New("unknown page template")

// Renderer owns the parsed template tree. Each page is parsed into its own
// clone of the layouts and partials, keyed "pages/<name>".
type Renderer struct {
	fsys   fs.FS
	logger *zap.Logger
	pages  atomic.Pointer[map[string]*template.Template]
}

// New parses the template tree rooted at fsys.
func New(fsys fs.FS, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{fsys: fsys, logger: logger}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load re-parses the tree. On failure the previously loaded tree stays active.
func (r *Renderer) Load() error {
	pages, err := parseTree(r.fsys)
	if err != nil {
		return err
	}
	r.pages.Store(&pages)
	return nil
}

func parseTree(fsys fs.FS) (map[string]*template.Template, error) {
	layouts, err := fs.Glob(fsys, layoutsGlob)
	if err != nil {
		return nil, fmt.Errorf("glob layouts: %w", err)
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layout templates matching %s", layoutsGlob)
	}
	partials, err := fs.Glob(fsys, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("glob partials: %w", err)
	}

	base, err := template.New("").Funcs(Funcs()).ParseFS(fsys, append(layouts, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("parse layouts and partials: %w", err)
	}
	if base.Lookup(entryTemplate) == nil {
		return nil, fmt.Errorf("layouts do not define %q", entryTemplate)
	}

	files, err := fs.Glob(fsys, pagesGlob)
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		set, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", f, err)
		}
		if _, err := set.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		name := "pages/" + strings.TrimSuffix(path.Base(f), ".html")
		pages[name] = set
	}
	return pages, nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	pages := r.pages.Load()
	if pages == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	set, ok := (*pages)[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	return set, nil
}

// Has reports whether a page template is loaded.
func (r *Renderer) Has(name string) bool {
	_, err := r.lookup(name)
	return err == nil
}

// Render executes page name with data into w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	set, err := r.lookup(name)
	if err != nil {
		return err
	}
	if err := set.ExecuteTemplate(w, entryTemplate, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Instance implements gin's render.HTMLRender so the renderer can back
// c.HTML.
func (r *Renderer) Instance(name string, data any) render.Render {
	set, err := r.lookup(name)
	if err != nil {
		return failedRender{err: err}
	}
	return render.HTML{Template: set, Name: entryTemplate, Data: data}
}

type failedRender struct {
	err error
}

func (f failedRender) Render(http.ResponseWriter) error { return f.err }

func (f failedRender) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}
