package content

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Ordering is the parsed form of an ordering document: the UIDs of a
// collection in display order.
type Ordering struct {
	Kind Kind
	UIDs []string
}

// OrderingFor maps a collection item kind to the ordering document kind that
// orders it.
func OrderingFor(item Kind) (Kind, bool) {
	switch item {
	case KindProject:
		return KindProjectOrdering, true
	case KindPost:
		return KindPostOrdering, true
	default:
		return "", false
	}
}

// ParseOrdering reads data.list[].project.uid from an ordering entry. Both
// ordering kinds use the "project" key for their references. An element
// without a uid yields an empty string so the slot is kept.
func ParseOrdering(e *Entry) (Ordering, error) {
	if e == nil {
		return Ordering{}, ErrOrderingMissing
	}
	if e.Type.Role() != RoleOrdering {
		return Ordering{}, fmt.Errorf("entry %s has type %q, not an ordering document", e.ID, e.Type)
	}

	o := Ordering{Kind: e.Type}
	list := gjson.GetBytes(e.RawData(), "list")
	if !list.IsArray() {
		return o, nil
	}
	list.ForEach(func(_, item gjson.Result) bool {
		o.UIDs = append(o.UIDs, item.Get("project.uid").String())
		return true
	})
	return o, nil
}
