package viewmodel

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/logging"
	"github.com/folio-studio/folio-web/internal/metrics"
)

// Standard holds the view fields every page receives.
type Standard struct {
	Analytics string

	Functionals *content.Entry
	Meta        *content.Entry
	Navigation  *content.Entry
	Sharing     *content.Entry
	Social      *content.Entry

	Device    Device
	IsDesktop bool
	IsPhone   bool
	IsTablet  bool

	// Projects and Posts follow their ordering documents. A reference that
	// matches no entry leaves a nil slot.
	Projects []*content.Entry
	Posts    []*content.Entry
}

// OrderingError reports that the ordering document for a collection is
// absent from the fetched entries.
type OrderingError struct {
	Kind content.Kind
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("content ordering document %q not found", e.Kind)
}

func (e *OrderingError) Unwrap() error {
	return content.ErrOrderingMissing
}

// Builder derives the standard context for a request.
type Builder struct {
	analytics string
	logger    *zap.Logger
}

func NewBuilder(analytics string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{analytics: analytics, logger: logger}
}

// Build assembles the standard context from the full entry list and the
// incoming request.
func (b *Builder) Build(r *http.Request, entries []content.Entry) (*Standard, error) {
	device := ClassifyDevice(r.UserAgent())

	std := &Standard{
		Analytics:   b.analytics,
		Functionals: content.Find(entries, content.KindFunctionals),
		Meta:        content.Find(entries, content.KindMeta),
		Navigation:  content.Find(entries, content.KindNavigation),
		Sharing:     content.Find(entries, content.KindSharing),
		Social:      content.Find(entries, content.KindSocial),
		Device:      device,
		IsDesktop:   device == Desktop,
		IsPhone:     device == Phone,
		IsTablet:    device == Tablet,
	}

	logger := logging.FromContext(r.Context(), b.logger)
	if unknown := unknownKinds(entries); len(unknown) > 0 {
		logger.Debug("entries of unknown kind ignored", zap.Strings("kinds", unknown))
	}

	var err error
	if std.Projects, err = b.collection(logger, entries, content.KindProject); err != nil {
		return nil, err
	}
	if std.Posts, err = b.collection(logger, entries, content.KindPost); err != nil {
		return nil, err
	}
	return std, nil
}

func unknownKinds(entries []content.Entry) []string {
	var out []string
	seen := map[content.Kind]bool{}
	for _, e := range entries {
		if e.Type.Known() || seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		out = append(out, string(e.Type))
	}
	return out
}

func (b *Builder) collection(logger *zap.Logger, entries []content.Entry, item content.Kind) ([]*content.Entry, error) {
	list, unresolved, err := Ordered(entries, item)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		orderingKind, _ := content.OrderingFor(item)
		metrics.UnresolvedRefs(string(orderingKind), len(unresolved))
		logger.Warn("ordering references unknown entries",
			zap.String("ordering", string(orderingKind)),
			zap.Strings("uids", unresolved),
		)
	}
	return list, nil
}

// Ordered resolves the ordering document for item against the flat list of
// item entries. The result has one slot per reference, in document order;
// unresolved references stay nil and their UIDs are returned alongside.
func Ordered(entries []content.Entry, item content.Kind) ([]*content.Entry, []string, error) {
	orderingKind, ok := content.OrderingFor(item)
	if !ok {
		return nil, nil, fmt.Errorf("kind %q has no ordering document", item)
	}

	doc := content.Find(entries, orderingKind)
	if doc == nil {
		return nil, nil, &OrderingError{Kind: orderingKind}
	}
	ordering, err := content.ParseOrdering(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", orderingKind, err)
	}

	flat := content.Filter(entries, item)
	out := make([]*content.Entry, len(ordering.UIDs))
	var unresolved []string
	for i, uid := range ordering.UIDs {
		out[i] = content.FindByUID(flat, uid)
		if out[i] == nil {
			unresolved = append(unresolved, uid)
		}
	}
	return out, unresolved, nil
}

// IndexOfUID returns the position of the entry with uid, or -1. Unresolved
// slots never match, so a uid missing from the ordering gives -1 even when
// the list holds nil slots, and Related then yields the first entry.
func IndexOfUID(list []*content.Entry, uid string) int {
	for i, e := range list {
		if e != nil && e.UID == uid {
			return i
		}
	}
	return -1
}

// Related returns the entry after index i, wrapping to the first entry when
// there is no (resolved) next one. i == -1 therefore yields the first entry.
func Related(list []*content.Entry, i int) *content.Entry {
	if len(list) == 0 {
		return nil
	}
	if next := i + 1; next >= 0 && next < len(list) && list[next] != nil {
		return list[next]
	}
	return list[0]
}
