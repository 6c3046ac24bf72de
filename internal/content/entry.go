package content

import (
	"encoding/json"
	"fmt"
)

// Kind is the type discriminator carried by every entry.
type Kind string

const (
	KindHome     Kind = "home"
	KindIndex    Kind = "index"
	KindAbout    Kind = "about"
	KindEssays   Kind = "essays"
	KindCreation Kind = "creation"
	KindProjects Kind = "projects"
	KindPosts    Kind = "posts"

	KindProject Kind = "project"
	KindPost    Kind = "post"

	KindProjectOrdering Kind = "ordering"
	KindPostOrdering    Kind = "orderart"

	KindFunctionals Kind = "functionals"
	KindMeta        Kind = "meta"
	KindNavigation  Kind = "navigation"
	KindSharing     Kind = "sharing"
	KindSocial      Kind = "social"
)

// Role groups kinds by how the site consumes them.
type Role int

const (
	RoleUnknown Role = iota
	// RolePage is a singleton that backs one route.
	RolePage
	// RoleItem is one element of an ordered collection.
	RoleItem
	// RoleOrdering is a document listing the order of a collection.
	RoleOrdering
	// RoleSite is a site-wide singleton shared by every page.
	RoleSite
)

func (r Role) String() string {
	switch r {
	case RolePage:
		return "page"
	case RoleItem:
		return "item"
	case RoleOrdering:
		return "ordering"
	case RoleSite:
		return "site"
	default:
		return "unknown"
	}
}

// Role classifies k. Every declared kind is listed; anything else is
// RoleUnknown.
func (k Kind) Role() Role {
	switch k {
	case KindHome, KindIndex, KindAbout, KindEssays, KindCreation, KindProjects, KindPosts:
		return RolePage
	case KindProject, KindPost:
		return RoleItem
	case KindProjectOrdering, KindPostOrdering:
		return RoleOrdering
	case KindFunctionals, KindMeta, KindNavigation, KindSharing, KindSocial:
		return RoleSite
	default:
		return RoleUnknown
	}
}

// Known reports whether k is one of the declared kinds.
func (k Kind) Known() bool {
	return k.Role() != RoleUnknown
}

// Entry is one content record returned by the content API. Data is left
// schemaless; templates read fields by convention.
type Entry struct {
	ID                   string         `json:"id"`
	UID                  string         `json:"uid,omitempty"`
	Type                 Kind           `json:"type"`
	Href                 string         `json:"href,omitempty"`
	Tags                 []string       `json:"tags,omitempty"`
	Lang                 string         `json:"lang,omitempty"`
	FirstPublicationDate string         `json:"first_publication_date,omitempty"`
	LastPublicationDate  string         `json:"last_publication_date,omitempty"`
	Data                 map[string]any `json:"data,omitempty"`

	raw json.RawMessage
}

// RawData returns the undecoded JSON of the entry's data payload.
func (e *Entry) RawData() json.RawMessage {
	return e.raw
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	var aux struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}

	*e = Entry(aux.plain)
	e.Data = nil
	e.raw = nil
	if len(aux.Data) > 0 && string(aux.Data) != "null" {
		if err := json.Unmarshal(aux.Data, &e.Data); err != nil {
			return fmt.Errorf("decode entry %s data: %w", aux.ID, err)
		}
		e.raw = append(json.RawMessage(nil), aux.Data...)
	}
	return nil
}

// Find returns the first entry of kind k, or nil.
func Find(entries []Entry, k Kind) *Entry {
	for i := range entries {
		if entries[i].Type == k {
			return &entries[i]
		}
	}
	return nil
}

// Filter returns every entry of kind k in input order.
func Filter(entries []Entry, k Kind) []*Entry {
	var out []*Entry
	for i := range entries {
		if entries[i].Type == k {
			out = append(out, &entries[i])
		}
	}
	return out
}

// FindByUID returns the first non-nil entry in list whose UID matches.
func FindByUID(list []*Entry, uid string) *Entry {
	for _, e := range list {
		if e != nil && e.UID == uid {
			return e
		}
	}
	return nil
}
