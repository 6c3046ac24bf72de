package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/content/contenttest"
	"github.com/folio-studio/folio-web/internal/render"
)

func block(kind, text string, spans ...map[string]any) map[string]any {
	b := map[string]any{"type": kind, "text": text}
	if len(spans) > 0 {
		list := make([]any, 0, len(spans))
		for _, s := range spans {
			list = append(list, s)
		}
		b["spans"] = list
	}
	return b
}

func sp(start, end int, kind string, data map[string]any) map[string]any {
	s := map[string]any{"start": float64(start), "end": float64(end), "type": kind}
	if data != nil {
		s["data"] = data
	}
	return s
}

func TestAsText(t *testing.T) {
	field := []any{
		block("heading1", "Hello"),
		block("paragraph", "world"),
		map[string]any{"type": "image", "url": "https://img"},
	}
	assert.Equal(t, "Hello world", render.AsText(field))
	assert.Equal(t, "plain", render.AsText("plain"))
	assert.Equal(t, "", render.AsText(nil))
}

func TestAsHTML_Blocks(t *testing.T) {
	field := []any{
		block("heading2", "Title"),
		block("paragraph", "a < b"),
		block("list-item", "one"),
		block("list-item", "two"),
		block("o-list-item", "first"),
		block("preformatted", "code"),
	}
	got := string(render.AsHTML(field))
	assert.Equal(t,
		"<h2>Title</h2><p>a &lt; b</p><ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><pre>code</pre>",
		got)
}

func TestAsHTML_Spans(t *testing.T) {
	field := []any{
		block("paragraph", "Hi there friend",
			sp(0, 2, "strong", nil),
			sp(3, 8, "hyperlink", map[string]any{"link_type": "Web", "url": "https://example.com", "target": "_blank"}),
		),
	}
	got := string(render.AsHTML(field))
	assert.Equal(t,
		`<p><strong>Hi</strong> <a href="https://example.com" target="_blank" rel="noopener">there</a> friend</p>`,
		got)
}

func TestAsHTML_OverlappingSpansStayWellFormed(t *testing.T) {
	field := []any{
		block("paragraph", "abcd", sp(0, 3, "strong", nil), sp(1, 4, "em", nil)),
	}
	got := string(render.AsHTML(field))
	assert.Equal(t, "<p><strong>a</strong><strong><em>bc</em></strong><em>d</em></p>", got)
}

func TestAsHTML_SpanOffsetsCountUTF16Units(t *testing.T) {
	// The emoji occupies two UTF-16 units.
	field := []any{block("paragraph", "😀 ok", sp(3, 5, "em", nil))}
	assert.Equal(t, "<p>😀 <em>ok</em></p>", string(render.AsHTML(field)))
}

func TestAsHTML_ImageAndEmbed(t *testing.T) {
	field := []any{
		map[string]any{
			"type": "image", "url": "https://img/x.png", "alt": `a "quote"`,
			"linkTo": map[string]any{"link_type": "Document", "type": "project", "uid": "alpha"},
		},
		map[string]any{
			"type":   "embed",
			"oembed": map[string]any{"embed_url": "https://video", "html": "<iframe></iframe>"},
		},
	}
	got := string(render.AsHTML(field))
	assert.Contains(t, got, `<p class="block-img"><a href="/case/alpha"><img src="https://img/x.png" alt="a &#34;quote&#34;"></a></p>`)
	assert.Contains(t, got, `<div data-oembed="https://video"><iframe></iframe></div>`)
}

func TestAsHTML_UnsafeLinksAreDropped(t *testing.T) {
	field := []any{
		block("paragraph", "click me",
			sp(0, 5, "hyperlink", map[string]any{"link_type": "Web", "url": "javascript:alert(1)"}),
		),
		block("paragraph", "mail or case",
			sp(0, 4, "hyperlink", map[string]any{"link_type": "Web", "url": "mailto:hi@example.com"}),
			sp(8, 12, "hyperlink", map[string]any{"link_type": "Web", "url": "/case/alpha"}),
		),
		block("paragraph", "sneaky",
			sp(0, 6, "hyperlink", map[string]any{"link_type": "Web", "url": " JavaScript:alert(1)"}),
		),
		map[string]any{
			"type": "image", "url": "https://img/y.png", "alt": "y",
			"linkTo": map[string]any{"link_type": "Web", "url": "data:text/html,<script>alert(1)</script>"},
		},
	}
	got := string(render.AsHTML(field))
	assert.Contains(t, got, "<p><span>click</span> me</p>")
	assert.Contains(t, got, `<p><a href="mailto:hi@example.com">mail</a> or <a href="/case/alpha">case</a></p>`)
	assert.Contains(t, got, "<p><span>sneaky</span></p>")
	assert.Contains(t, got, `<p class="block-img"><img src="https://img/y.png" alt="y"></p>`)
	assert.NotContains(t, got, "javascript:")
	assert.NotContains(t, got, "data:")
}

func TestAsHTML_StringIsEscaped(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;", string(render.AsHTML("<b>")))
}

func TestResolveLink(t *testing.T) {
	project := contenttest.NewEntry(content.KindProject, "alpha", nil)
	post := contenttest.NewEntry(content.KindPost, "one", nil)
	about := contenttest.NewEntry(content.KindAbout, "", nil)
	var nilEntry *content.Entry

	tests := []struct {
		name string
		link any
		want string
	}{
		{"nil", nil, ""},
		{"string", "/x", "/x"},
		{"project entry", &project, "/case/alpha"},
		{"post entry", &post, "/article/one"},
		{"page entry", &about, "/about"},
		{"nil entry", nilEntry, ""},
		{"home doc", map[string]any{"link_type": "Document", "type": "home"}, "/"},
		{"broken doc", map[string]any{"link_type": "Document", "type": "post", "uid": "x", "isBroken": true}, ""},
		{"web", map[string]any{"link_type": "Web", "url": "https://example.com"}, "https://example.com"},
		{"media", map[string]any{"link_type": "Media", "url": "https://cdn/file.pdf"}, "https://cdn/file.pdf"},
		{"other", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.ResolveLink(tt.link))
		})
	}
}
