package render

import (
	"html"
	"html/template"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/folio-studio/folio-web/internal/content"
)

// Rich text fields arrive as a list of blocks:
//
//	[{"type":"paragraph","text":"Hi there","spans":[{"start":0,"end":2,"type":"strong"}]}]
//
// Span offsets count UTF-16 code units.

type span struct {
	start, end int
	kind       string
	data       map[string]any
}

// AsText flattens a rich text field to plain text, blocks joined by a space.
func AsText(field any) string {
	if s, ok := field.(string); ok {
		return s
	}
	blocks := toBlocks(field)
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if text, ok := b["text"].(string); ok && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// AsHTML renders a rich text field.
func AsHTML(field any) template.HTML {
	if s, ok := field.(string); ok {
		return template.HTML(html.EscapeString(s))
	}

	var sb strings.Builder
	var openList string
	closeList := func() {
		if openList != "" {
			sb.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, b := range toBlocks(field) {
		kind, _ := b["type"].(string)

		listTag := ""
		switch kind {
		case "list-item":
			listTag = "ul"
		case "o-list-item":
			listTag = "ol"
		}
		if listTag != openList {
			closeList()
			if listTag != "" {
				sb.WriteString("<" + listTag + ">")
				openList = listTag
			}
		}

		switch kind {
		case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
			tag := "h" + strings.TrimPrefix(kind, "heading")
			writeElement(&sb, tag, b)
		case "paragraph":
			writeElement(&sb, "p", b)
		case "preformatted":
			writeElement(&sb, "pre", b)
		case "list-item", "o-list-item":
			writeElement(&sb, "li", b)
		case "image":
			writeImage(&sb, b)
		case "embed":
			writeEmbed(&sb, b)
		default:
			if _, ok := b["text"]; ok {
				writeElement(&sb, "p", b)
			}
		}
	}
	closeList()

	return template.HTML(sb.String())
}

func writeElement(sb *strings.Builder, tag string, block map[string]any) {
	text, _ := block["text"].(string)
	sb.WriteString("<" + tag + ">")
	sb.WriteString(applySpans(text, parseSpans(block["spans"])))
	sb.WriteString("</" + tag + ">")
}

func writeImage(sb *strings.Builder, block map[string]any) {
	src, _ := block["url"].(string)
	if src == "" {
		return
	}
	alt, _ := block["alt"].(string)
	img := `<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `">`
	if link, ok := block["linkTo"]; ok {
		if href := safeHref(ResolveLink(link)); href != "" {
			img = `<a href="` + html.EscapeString(href) + `">` + img + `</a>`
		}
	}
	sb.WriteString(`<p class="block-img">` + img + `</p>`)
}

func writeEmbed(sb *strings.Builder, block map[string]any) {
	oembed, _ := block["oembed"].(map[string]any)
	if oembed == nil {
		return
	}
	embedURL, _ := oembed["embed_url"].(string)
	markup, _ := oembed["html"].(string)
	sb.WriteString(`<div data-oembed="` + html.EscapeString(embedURL) + `">` + markup + `</div>`)
}

func parseSpans(raw any) []span {
	items, _ := raw.([]any)
	out := make([]span, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		start, ok1 := m["start"].(float64)
		end, ok2 := m["end"].(float64)
		kind, _ := m["type"].(string)
		if !ok1 || !ok2 || end <= start {
			continue
		}
		data, _ := m["data"].(map[string]any)
		if kind == "hyperlink" && safeHref(ResolveLink(data)) == "" {
			kind = ""
		}
		out = append(out, span{start: int(start), end: int(end), kind: kind, data: data})
	}
	return out
}

// applySpans wraps ranges of text in markup. Whenever a span starts or ends,
// all open tags are closed and the active ones reopened, which keeps the
// output well formed even for overlapping spans.
func applySpans(text string, spans []span) string {
	units := utf16.Encode([]rune(text))
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	boundaries := map[int]bool{}
	for _, s := range spans {
		boundaries[s.start] = true
		boundaries[s.end] = true
	}

	var sb strings.Builder
	var open []span
	segStart := 0
	flush := func(end int) {
		if end > segStart {
			if end > len(units) {
				end = len(units)
			}
			if segStart < end {
				sb.WriteString(html.EscapeString(string(utf16.Decode(units[segStart:end]))))
			}
			segStart = end
		}
	}

	for i := 0; i <= len(units); i++ {
		if !boundaries[i] {
			continue
		}
		flush(i)
		for j := len(open) - 1; j >= 0; j-- {
			sb.WriteString(closeTag(open[j]))
		}
		open = open[:0]
		for _, s := range spans {
			if s.start <= i && i < s.end {
				open = append(open, s)
			}
		}
		sort.SliceStable(open, func(a, b int) bool {
			if open[a].start != open[b].start {
				return open[a].start < open[b].start
			}
			return open[a].end > open[b].end
		})
		for _, s := range open {
			sb.WriteString(openTag(s))
		}
	}
	flush(len(units))
	for j := len(open) - 1; j >= 0; j-- {
		sb.WriteString(closeTag(open[j]))
	}
	return sb.String()
}

func openTag(s span) string {
	switch s.kind {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "hyperlink":
		href := safeHref(ResolveLink(s.data))
		attrs := `href="` + html.EscapeString(href) + `"`
		if target, _ := s.data["target"].(string); target != "" {
			attrs += ` target="` + html.EscapeString(target) + `" rel="noopener"`
		}
		return "<a " + attrs + ">"
	case "label":
		label, _ := s.data["label"].(string)
		return `<span class="` + html.EscapeString(label) + `">`
	default:
		return "<span>"
	}
}

func closeTag(s span) string {
	switch s.kind {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	default:
		return "</span>"
	}
}

// safeHref returns href when it is relative or uses a scheme a reader can
// follow without running code, and "" otherwise.
func safeHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return href
	default:
		return ""
	}
}

// ResolveLink turns a link field or an entry into a site URL. Document links
// map to the route that renders them.
func ResolveLink(link any) string {
	switch l := link.(type) {
	case nil:
		return ""
	case string:
		return l
	case *content.Entry:
		if l == nil {
			return ""
		}
		return documentURL(l.Type, l.UID)
	case map[string]any:
		linkType, _ := l["link_type"].(string)
		switch linkType {
		case "Document":
			if broken, _ := l["isBroken"].(bool); broken {
				return ""
			}
			kind, _ := l["type"].(string)
			uid, _ := l["uid"].(string)
			return documentURL(content.Kind(kind), uid)
		default:
			u, _ := l["url"].(string)
			return u
		}
	default:
		return ""
	}
}

func documentURL(kind content.Kind, uid string) string {
	switch kind {
	case content.KindHome:
		return "/"
	case content.KindProject:
		return "/case/" + uid
	case content.KindPost:
		return "/article/" + uid
	case "":
		return ""
	default:
		return "/" + string(kind)
	}
}

func toBlocks(field any) []map[string]any {
	items, _ := field.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
