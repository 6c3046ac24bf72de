package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/folio-studio/folio-web/internal/content"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"asText":   AsText,
		"asHTML":   AsHTML,
		"linkURL":  ResolveLink,
		"field":    Field,
		"markdown": Markdown,
		"title":    Title,
		"add":      func(a, b int) int { return a + b },
	}
}

// Field looks up a dotted path in an entry's data or in a nested map. It
// returns nil when any step is missing.
func Field(src any, path string) any {
	var cur any
	switch s := src.(type) {
	case *content.Entry:
		if s == nil {
			return nil
		}
		cur = s.Data
	case map[string]any:
		cur = s
	default:
		return nil
	}

	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Markdown renders a key-text field written in markdown. Raw HTML in the
// source is not passed through.
func Markdown(src any) (template.HTML, error) {
	s, _ := src.(string)
	if s == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownParser.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Title title-cases s.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
