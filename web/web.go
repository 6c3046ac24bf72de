// Package web carries the site's default HTML templates.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var files embed.FS

// Templates returns the embedded template tree (layouts/, partials/, pages/).
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
