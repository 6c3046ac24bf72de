package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munnerz/goautoneg"
)

type format int

const (
	formatHTML format = iota
	formatJSON
	formatText
)

// negotiate picks the response body format: HTML when the client accepts it,
// then JSON, then plain text. A missing Accept header means HTML. Listing
// order does not matter; a q=0 clause refuses the type.
func negotiate(c *gin.Context) format {
	header := c.GetHeader("Accept")
	if strings.TrimSpace(header) == "" {
		return formatHTML
	}

	clauses := goautoneg.ParseAccept(header)
	switch {
	case acceptable(clauses, "text", "html"):
		return formatHTML
	case acceptable(clauses, "application", "json"):
		return formatJSON
	default:
		return formatText
	}
}

// acceptable applies the most specific clause matching typ/sub.
func acceptable(clauses []goautoneg.Accept, typ, sub string) bool {
	best, q := -1, 0.0
	for _, a := range clauses {
		rank := -1
		switch {
		case a.Type == typ && a.SubType == sub:
			rank = 2
		case a.Type == typ && a.SubType == "*":
			rank = 1
		case a.Type == "*" && a.SubType == "*":
			rank = 0
		}
		if rank > best {
			best, q = rank, a.Q
		}
	}
	return best >= 0 && q > 0
}
