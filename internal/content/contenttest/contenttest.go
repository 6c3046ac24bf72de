// Package contenttest provides fixtures and a fake content API for tests.
package contenttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/folio-studio/folio-web/internal/content"
)

const (
	APIPath = "/api/v2"
	// MasterRef is the ref the fake API advertises unless changed.
	MasterRef = "master-ref-1"
)

// NewEntry builds an entry through its JSON form so the raw data payload is
// populated the same way the real decoder does it.
func NewEntry(kind content.Kind, uid string, data map[string]any) content.Entry {
	doc := map[string]any{
		"id":   fmt.Sprintf("%s-%s", kind, uid),
		"type": string(kind),
		"lang": "en-us",
	}
	if uid != "" {
		doc["uid"] = uid
	}
	if data != nil {
		doc["data"] = data
	}

	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var e content.Entry
	if err := json.Unmarshal(b, &e); err != nil {
		panic(err)
	}
	return e
}

// NewOrdering builds an ordering document referencing uids in order.
func NewOrdering(kind content.Kind, uids ...string) content.Entry {
	list := make([]any, 0, len(uids))
	for _, uid := range uids {
		list = append(list, map[string]any{"project": map[string]any{"uid": uid, "type": "project"}})
	}
	return NewEntry(kind, "", map[string]any{"list": list})
}

// SiteEntries is a complete site whose API order differs from the ordering
// documents: projects arrive as gamma, alpha, beta but are ordered alpha,
// beta, gamma; posts arrive as one, two but are ordered two, one.
func SiteEntries() []content.Entry {
	return []content.Entry{
		NewEntry(content.KindProject, "gamma", map[string]any{"title": "Gamma"}),
		NewEntry(content.KindHome, "", map[string]any{"title": "Home"}),
		NewEntry(content.KindIndex, "", map[string]any{"title": "Index"}),
		NewEntry(content.KindAbout, "", map[string]any{"title": "About"}),
		NewEntry(content.KindEssays, "", map[string]any{"title": "Essays"}),
		NewEntry(content.KindCreation, "", map[string]any{"title": "Creation"}),
		NewEntry(content.KindProjects, "", map[string]any{"title": "Cases"}),
		NewEntry(content.KindPosts, "", map[string]any{"title": "Articles"}),
		NewEntry(content.KindProject, "alpha", map[string]any{"title": "Alpha"}),
		NewEntry(content.KindPost, "one", map[string]any{"title": "Post One"}),
		NewEntry(content.KindNavigation, "", map[string]any{"title": "Navigation"}),
		NewEntry(content.KindMeta, "", map[string]any{"title": "Folio", "description": "A studio"}),
		NewEntry(content.KindFunctionals, "", map[string]any{"title": "Functionals"}),
		NewEntry(content.KindSharing, "", map[string]any{"title": "Sharing"}),
		NewEntry(content.KindSocial, "", map[string]any{"title": "Social"}),
		NewEntry(content.KindProject, "beta", map[string]any{"title": "Beta"}),
		NewEntry(content.KindPost, "two", map[string]any{"title": "Post Two"}),
		NewOrdering(content.KindProjectOrdering, "alpha", "beta", "gamma"),
		NewOrdering(content.KindPostOrdering, "two", "one"),
	}
}

// Without returns entries minus every entry of kind k.
func Without(entries []content.Entry, k content.Kind) []content.Entry {
	out := make([]content.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type != k {
			out = append(out, e)
		}
	}
	return out
}

// Server is a fake Prismic-style content API.
type Server struct {
	*httptest.Server

	// Token, when set, must arrive both as access_token and as a bearer header.
	Token string

	mu      sync.Mutex
	ref     string
	entries []content.Entry

	connects atomic.Int32
	queries  atomic.Int32
}

// NewServer starts a fake API serving entries. It is closed with the test.
func NewServer(t testing.TB, entries []content.Entry) *Server {
	t.Helper()
	s := &Server{ref: MasterRef, entries: entries}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the API document URL to configure clients with.
func (s *Server) Endpoint() string {
	return s.URL + APIPath
}

// SetRef changes the advertised master ref, as a publish would.
func (s *Server) SetRef(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ref = ref
}

// SetEntries replaces the served entries.
func (s *Server) SetEntries(entries []content.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Connects and Queries count calls to the API document and search endpoints.
func (s *Server) Connects() int { return int(s.connects.Load()) }
func (s *Server) Queries() int  { return int(s.queries.Load()) }

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.Token != "" {
		if r.URL.Query().Get("access_token") != s.Token || r.Header.Get("Authorization") != "Bearer "+s.Token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid access token"}`))
			return
		}
	}

	s.mu.Lock()
	ref := s.ref
	entries := s.entries
	s.mu.Unlock()

	switch r.URL.Path {
	case APIPath:
		s.connects.Add(1)
		writeJSON(w, map[string]any{
			"refs": []map[string]any{
				{"id": "master", "ref": ref, "label": "Master", "isMasterRef": true},
			},
		})
	case APIPath + "/documents/search":
		s.queries.Add(1)
		if r.URL.Query().Get("ref") != ref {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"unknown ref"}`))
			return
		}
		pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if err != nil || pageSize <= 0 {
			pageSize = 20
		}
		results := entries
		if len(results) > pageSize {
			results = results[:pageSize]
		}
		writeJSON(w, map[string]any{
			"page":               1,
			"results_per_page":   pageSize,
			"results_size":       len(results),
			"total_results_size": len(entries),
			"total_pages":        1,
			"results":            results,
		})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
