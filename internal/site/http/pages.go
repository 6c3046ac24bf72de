package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/render"
	"github.com/folio-studio/folio-web/internal/viewmodel"
)

// load fetches every entry and builds the standard context. On failure the
// response has already been written.
func (h *Handler) load(c *gin.Context) ([]content.Entry, *Page, bool) {
	entries, err := apiFrom(c).Entries(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return nil, nil, false
	}
	std, err := h.builder.Build(c.Request, entries)
	if err != nil {
		h.fail(c, err)
		return nil, nil, false
	}
	return entries, &Page{Standard: *std, ProjectIndex: -1, PostIndex: -1}, true
}

func (h *Handler) home(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	page.Home = content.Find(entries, content.KindHome)
	h.render(c, "pages/home", page)
}

func (h *Handler) index(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	if page.IsPhone {
		c.Redirect(http.StatusFound, "/")
		return
	}
	page.Title = render.Title(string(content.KindIndex))
	page.Index = content.Find(entries, content.KindIndex)
	h.render(c, "pages/index", page)
}

func (h *Handler) about(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	page.Title = render.Title(string(content.KindAbout))
	page.About = content.Find(entries, content.KindAbout)
	h.render(c, "pages/about", page)
}

func (h *Handler) essays(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	page.Title = render.Title(string(content.KindEssays))
	page.About = content.Find(entries, content.KindAbout)
	page.Essays = content.Find(entries, content.KindEssays)
	h.render(c, "pages/essays", page)
}

func (h *Handler) creation(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	page.Title = render.Title(string(content.KindCreation))
	page.About = content.Find(entries, content.KindAbout)
	page.Creation = content.Find(entries, content.KindCreation)
	h.render(c, "pages/creation", page)
}

// caseStudy renders one project. An unknown id still renders, with no
// project, index -1 and the first project as related.
func (h *Handler) caseStudy(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	id := c.Param("id")
	page.Cases = content.Find(entries, content.KindProjects)
	page.Project = content.FindByUID(page.Projects, id)
	page.ProjectIndex = viewmodel.IndexOfUID(page.Projects, id)
	page.Related = viewmodel.Related(page.Projects, page.ProjectIndex)
	page.Title = render.AsText(render.Field(page.Project, "title"))
	h.render(c, "pages/case", page)
}

func (h *Handler) article(c *gin.Context) {
	entries, page, ok := h.load(c)
	if !ok {
		return
	}
	uid := c.Param("uid")
	page.Articles = content.Find(entries, content.KindPosts)
	page.Post = content.FindByUID(page.Posts, uid)
	page.PostIndex = viewmodel.IndexOfUID(page.Posts, uid)
	page.Related = viewmodel.Related(page.Posts, page.PostIndex)
	page.Title = render.AsText(render.Field(page.Post, "title"))
	h.render(c, "pages/article", page)
}

// render executes into a buffer so a template failure never leaves a
// half-written 200 behind.
func (h *Handler) render(c *gin.Context, name string, page *Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
