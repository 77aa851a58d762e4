package catalog

import (
	"net/url"
	"testing"

	"librarycat/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchKey(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  SearchKey
	}{
		{"title", "title=Dune", SearchKey{Field: ByTitle, Value: "Dune"}},
		{"title beats author", "author=Herbert&title=Dune", SearchKey{Field: ByTitle, Value: "Dune"}},
		{"subtitle beats category", "category=Fiction&subtitle=Part%20One", SearchKey{Field: BySubtitle, Value: "Part One"}},
		{"editor beats q", "q=spice&editor=Chilton", SearchKey{Field: ByEditor, Value: "Chilton"}},
		{"blank is absent", "title=%20%20&author=Herbert", SearchKey{Field: ByAuthor, Value: "Herbert"}},
		{"trimmed", "q=%20spice%20", SearchKey{Field: ByFreeText, Value: "spice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseSearchKey(values)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSearchKey_Missing(t *testing.T) {
	_, err := ParseSearchKey(url.Values{"page": {"2"}, "title": {""}})
	assert.ErrorIs(t, err, apperr.ErrMissingParameter)
}

func TestSearchKey_ProviderQuery(t *testing.T) {
	assert.Equal(t, "intitle:Dune", SearchKey{Field: ByTitle, Value: "Dune"}.ProviderQuery())
	assert.Equal(t, "inauthor:Frank Herbert", SearchKey{Field: ByAuthor, Value: "Frank Herbert"}.ProviderQuery())
	assert.Equal(t, "subject:Fiction", SearchKey{Field: ByCategory, Value: "Fiction"}.ProviderQuery())
	assert.Equal(t, "spice", SearchKey{Field: ByFreeText, Value: "spice"}.ProviderQuery())
}

func TestVolume_Record(t *testing.T) {
	title := "Dune"
	rec := Volume{ExternalID: "abcd1234", Title: &title}.Record()

	assert.Equal(t, SourceExternal, rec.Source)
	assert.Equal(t, "Dune", rec.Title)
	assert.Equal(t, "", rec.Editor)
	assert.NotNil(t, rec.Authors)
	assert.NotNil(t, rec.Categories)
	assert.Zero(t, rec.ID)
}
