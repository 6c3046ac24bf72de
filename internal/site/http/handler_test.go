package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/content/contenttest"
	"github.com/folio-studio/folio-web/internal/render"
	sitehttp "github.com/folio-studio/folio-web/internal/site/http"
	"github.com/folio-studio/folio-web/internal/viewmodel"
	"github.com/folio-studio/folio-web/web"
)

const (
	uaDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
)

type site struct {
	router    *gin.Engine
	upstream  *contenttest.Server
	staticDir string
}

func setupSite(t *testing.T, entries []content.Entry, token string) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := contenttest.NewServer(t, entries)
	upstream.Token = token

	client, err := content.NewClient(content.ClientOptions{Endpoint: upstream.Endpoint(), AccessToken: token})
	require.NoError(t, err)

	renderer, err := render.New(web.Templates(), nil)
	require.NoError(t, err)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "main.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(staticDir, "img"), 0o755))

	r := gin.New()
	sitehttp.New(sitehttp.Options{
		Gateway:   client,
		Renderer:  renderer,
		Builder:   viewmodel.NewBuilder("UA-1", nil),
		StaticDir: staticDir,
	}).Register(r)

	return &site{router: r, upstream: upstream, staticDir: staticDir}
}

func (s *site) do(method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *site) get(path, ua string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, path, map[string]string{"User-Agent": ua, "Accept": "text/html"})
}

// assertOrder checks that each needle appears in body after the previous one.
func assertOrder(t *testing.T, body string, needles ...string) {
	t.Helper()
	last := -1
	for _, n := range needles {
		i := strings.Index(body, n)
		require.GreaterOrEqual(t, i, 0, "missing %q", n)
		assert.Greater(t, i, last, "%q out of order", n)
		last = i
	}
}

func TestHome(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	w := s.get("/", uaDesktop)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "<title>Folio</title>")
	assert.Contains(t, body, "<h1>Home</h1>")
	assert.Contains(t, body, `class="is-desktop"`)
	assert.Contains(t, body, "UA-1")
	assertOrder(t, body, `href="/case/alpha">Alpha`, `href="/case/beta">Beta`, `href="/case/gamma">Gamma`)

	assert.Equal(t, 1, s.upstream.Connects())
	assert.Equal(t, 1, s.upstream.Queries())
}

func TestIndex_DeviceHandling(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		wantCode int
	}{
		{"desktop renders", uaDesktop, http.StatusOK},
		{"tablet renders", uaIPad, http.StatusOK},
		{"phone redirects", uaIPhone, http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupSite(t, contenttest.SiteEntries(), "")
			w := s.get("/index", tt.ua)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, "/", w.Header().Get("Location"))
				return
			}
			assert.Contains(t, w.Body.String(), "<h1>Index</h1>")
			assertOrder(t, w.Body.String(), `data-index="1"`, `data-index="2"`, `data-index="3"`)
		})
	}
}

func TestStaticPages(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	tests := []struct {
		path  string
		title string
		want  []string
	}{
		{"/about", "About", []string{"<h1>About</h1>"}},
		{"/essays", "Essays", []string{"<h1>Essays</h1>", `href="/article/two">Post Two`, `href="/article/one">Post One`, "about-summary"}},
		{"/creation", "Creation", []string{"<h1>Creation</h1>", "about-summary"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.get(tt.path, uaDesktop)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "<title>"+tt.title+" | Folio</title>")
			assertOrder(t, w.Body.String(), tt.want...)
		})
	}
}

func TestCase(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	tests := []struct {
		name        string
		path        string
		wantHeading string
		wantRelated string
	}{
		{"first", "/case/alpha", "<h1>Alpha</h1>", `<a href="/case/beta">Beta</a>`},
		{"last wraps to first", "/case/gamma", "<h1>Gamma</h1>", `<a href="/case/alpha">Alpha</a>`},
		{"unknown id", "/case/ghost", "This case is not available.", `<a href="/case/alpha">Alpha</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.get(tt.path, uaDesktop)
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, tt.wantHeading)
			assert.Contains(t, body, "Next: "+tt.wantRelated)
			assert.Contains(t, body, `<p class="section-title">Cases</p>`)
		})
	}
}

func TestCase_UnknownIDHasNoIndex(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	w := s.get("/case/ghost", uaDesktop)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "data-index")

	w = s.get("/case/gamma", uaDesktop)
	assert.Contains(t, w.Body.String(), `data-index="2"`)
}

func TestArticle(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	// Posts are ordered two, one.
	w := s.get("/article/two", uaDesktop)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Post Two</h1>")
	assert.Contains(t, w.Body.String(), `Next: <a href="/article/one">Post One</a>`)
	assert.Contains(t, w.Body.String(), "<title>Post Two | Folio</title>")

	w = s.get("/article/one", uaDesktop)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `Next: <a href="/article/two">Post Two</a>`)

	w = s.get("/article/ghost", uaDesktop)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This article is not available.")
}

func TestNotFound_Negotiation(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	tests := []struct {
		name        string
		accept      string
		contentType string
		check       func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{"no accept header", "", "text/html; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "/", w.Header().Get("Location"))
			assert.Contains(t, w.Body.String(), `http-equiv="refresh"`)
		}},
		{"html", "text/html,application/xhtml+xml", "text/html; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "/", w.Header().Get("Location"))
		}},
		{"json", "application/json", "application/json; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Not Found", body["error"])
			assert.Empty(t, w.Header().Get("Location"))
		}},
		{"other", "text/plain", "text/plain; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "Not Found", w.Body.String())
		}},
		{"html refused with q=0", "text/html;q=0, application/json", "application/json; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
			assert.Empty(t, w.Header().Get("Location"))
		}},
		{"json listed before html", "application/json, text/html", "text/html; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "/", w.Header().Get("Location"))
		}},
		{"html through wildcard", "application/json, text/plain, */*", "text/html; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "/", w.Header().Get("Location"))
		}},
		{"html through text wildcard", "text/*", "text/html; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "/", w.Header().Get("Location"))
		}},
		{"specific refusal beats wildcard", "text/html;q=0, */*;q=0.5", "application/json; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
		}},
		{"html and json refused", "text/html;q=0, application/json;q=0, text/plain", "text/plain; charset=utf-8", func(t *testing.T, w *httptest.ResponseRecorder) {
			assert.Equal(t, "Not Found", w.Body.String())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.accept != "" {
				headers["Accept"] = tt.accept
			}
			w := s.do(http.MethodGet, "/no/such/page", headers)
			require.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			tt.check(t, w)
		})
	}

	assert.Equal(t, 0, s.upstream.Connects(), "unmatched paths never reach the content API")
}

func TestStaticFiles(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	w := s.do(http.MethodGet, "/main.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())

	w = s.do(http.MethodHead, "/main.css", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/main.css", map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/img", map[string]string{"Accept": "text/plain"})
	assert.Equal(t, http.StatusNotFound, w.Code, "directories are not served")

	w = s.do(http.MethodGet, "/../../etc/passwd", map[string]string{"Accept": "text/plain"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMissingOrderingDocument(t *testing.T) {
	entries := contenttest.Without(contenttest.SiteEntries(), content.KindProjectOrdering)
	s := setupSite(t, entries, "")

	w := s.do(http.MethodGet, "/", map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, `content ordering document "ordering" not found`, body["error"])

	w = s.do(http.MethodGet, "/essays", map[string]string{"Accept": "text/plain"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, `content ordering document "ordering" not found`, w.Body.String())

	w = s.do(http.MethodGet, "/about", map[string]string{"Accept": "text/html;q=0, application/json"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	w = s.do(http.MethodGet, "/about", map[string]string{"Accept": "application/json, text/plain, */*"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `<section class="error">`)
	assert.Contains(t, w.Body.String(), "<h1>500</h1>")
}

func TestGatewayFailure_StopsBeforeHandler(t *testing.T) {
	// The upstream wants a token the client does not send.
	gin.SetMode(gin.TestMode)
	upstream := contenttest.NewServer(t, contenttest.SiteEntries())
	upstream.Token = "secret"

	client, err := content.NewClient(content.ClientOptions{Endpoint: upstream.Endpoint()})
	require.NoError(t, err)
	renderer, err := render.New(web.Templates(), nil)
	require.NoError(t, err)

	r := gin.New()
	sitehttp.New(sitehttp.Options{Gateway: client, Renderer: renderer}).Register(r)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"content service unavailable"}`, w.Body.String())
	assert.Equal(t, 0, upstream.Queries())
}

func TestGatewayWithToken(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "secret")

	w := s.get("/about", uaDesktop)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPhoneBodyClass(t *testing.T) {
	s := setupSite(t, contenttest.SiteEntries(), "")

	w := s.get("/", uaIPhone)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="is-phone"`)
	assert.NotContains(t, w.Body.String(), `href="/index"`)
}
