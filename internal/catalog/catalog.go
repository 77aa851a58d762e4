package catalog

// Kind selects one of the simple named entity tables.
type Kind string

const (
	KindAuthor   Kind = "author"
	KindCategory Kind = "category"
)

func (k Kind) table() string {
	if k == KindCategory {
		return "categories"
	}
	return "authors"
}

// Label is the capitalised kind, used in client-facing messages.
func (k Kind) Label() string {
	if k == KindCategory {
		return "Category"
	}
	return "Author"
}

// Entity is an Author or a Category.
type Entity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Record sources.
const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// BookRecord is the public Book shape. Local and external results share it.
type BookRecord struct {
	ID          int64    `json:"id,omitempty"`
	ExternalID  string   `json:"external_id,omitempty"`
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Editor      string   `json:"editor"`
	Description string   `json:"description"`
	URLImage    string   `json:"url_image"`
	Authors     []string `json:"authors"`
	Categories  []string `json:"categories"`
}

// NewBook is what the store persists for a create request. AuthorIDs and
// CategoryIDs are in attachment order.
type NewBook struct {
	ExternalID  string
	Title       string
	Subtitle    string
	Editor      string
	Description string
	URLImage    string
	AuthorIDs   []int64
	CategoryIDs []int64
}

// Volume is a provider record normalized to the local field set. A nil
// pointer means the provider did not send the field.
type Volume struct {
	ExternalID  string
	Title       *string
	Subtitle    *string
	Publisher   *string
	Description *string
	CoverURL    *string
	Authors     []string
	Categories  []string
}

// Record converts v to the public shape.
func (v Volume) Record() BookRecord {
	rec := BookRecord{
		ExternalID: v.ExternalID,
		Source:     SourceExternal,
		Authors:    []string{},
		Categories: []string{},
	}
	if v.Title != nil {
		rec.Title = *v.Title
	}
	if v.Subtitle != nil {
		rec.Subtitle = *v.Subtitle
	}
	if v.Publisher != nil {
		rec.Editor = *v.Publisher
	}
	if v.Description != nil {
		rec.Description = *v.Description
	}
	if v.CoverURL != nil {
		rec.URLImage = *v.CoverURL
	}
	if v.Authors != nil {
		rec.Authors = append(rec.Authors, v.Authors...)
	}
	if v.Categories != nil {
		rec.Categories = append(rec.Categories, v.Categories...)
	}
	return rec
}
