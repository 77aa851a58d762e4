package catalog

import (
	"net/url"
	"strings"

	"librarycat/internal/apperr"
)

// SearchField tags which attribute a search targets.
type SearchField int

const (
	ByTitle SearchField = iota + 1
	BySubtitle
	ByAuthor
	ByCategory
	ByEditor
	ByFreeText
)

// searchParams lists query parameters in priority order.
var searchParams = []struct {
	param string
	field SearchField
}{
	{"title", ByTitle},
	{"subtitle", BySubtitle},
	{"author", ByAuthor},
	{"category", ByCategory},
	{"editor", ByEditor},
	{"q", ByFreeText},
}

func (f SearchField) String() string {
	for _, p := range searchParams {
		if p.field == f {
			return p.param
		}
	}
	return "unknown"
}

// SearchKey is the single active search criterion of a request.
type SearchKey struct {
	Field SearchField
	Value string
}

// ParseSearchKey picks the highest-priority non-blank parameter.
func ParseSearchKey(query url.Values) (SearchKey, error) {
	for _, p := range searchParams {
		if v := strings.TrimSpace(query.Get(p.param)); v != "" {
			return SearchKey{Field: p.field, Value: v}, nil
		}
	}
	return SearchKey{}, apperr.MissingParameter("one of title, subtitle, author, category, editor or q is required")
}

// ProviderQuery maps the key to the provider's query syntax.
func (k SearchKey) ProviderQuery() string {
	switch k.Field {
	case ByTitle:
		return "intitle:" + k.Value
	case ByAuthor:
		return "inauthor:" + k.Value
	case ByCategory:
		return "subject:" + k.Value
	default:
		return k.Value
	}
}
