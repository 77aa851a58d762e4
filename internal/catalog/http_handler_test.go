package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"librarycat/internal/apperr"
	"librarycat/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *MockRepository, *MockProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	mockProvider := NewMockProvider(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, mockProvider, nil))

	r := chi.NewRouter()
	handler.Routes(r)
	return r, mockRepo, mockProvider
}

func serve(h http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func strp(s string) *string { return &s }

func TestHTTPHandler_CreateBook(t *testing.T) {
	t.Run("full fields", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().FindByName(gomock.Any(), KindAuthor, "Frank Herbert").
			Return(Entity{}, apperr.NotFound("Author does not exist"))
		mockRepo.EXPECT().Create(gomock.Any(), KindAuthor, "Frank Herbert").
			Return(Entity{ID: 1, Name: "Frank Herbert"}, nil)
		mockRepo.EXPECT().FindByName(gomock.Any(), KindCategory, "Fiction").
			Return(Entity{ID: 3, Name: "Fiction"}, nil)
		mockRepo.EXPECT().CreateBook(gomock.Any(), NewBook{
			Title:       "Dune",
			Editor:      "Chilton",
			AuthorIDs:   []int64{1},
			CategoryIDs: []int64{3},
		}).Return(BookRecord{
			ID:         10,
			Source:     SourceLocal,
			Title:      "Dune",
			Editor:     "Chilton",
			Authors:    []string{"Frank Herbert"},
			Categories: []string{"Fiction"},
		}, nil)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{
			"title":      "Dune",
			"editor":     "Chilton",
			"authors":    []string{"Frank Herbert"},
			"categories": []string{"Fiction"},
		}))

		require.Equal(t, http.StatusCreated, res.Code)
		data := res.Data().(map[string]any)
		assert.Equal(t, float64(10), data["id"])
		assert.Equal(t, "Dune", data["title"])
		assert.Equal(t, []any{"Frank Herbert"}, data["authors"])
	})

	t.Run("repeated author attaches once", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().FindByName(gomock.Any(), KindAuthor, "A").
			Return(Entity{ID: 7, Name: "A"}, nil).Times(1)
		mockRepo.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, b NewBook) (BookRecord, error) {
				assert.Equal(t, []int64{7}, b.AuthorIDs)
				return BookRecord{ID: 1, Source: SourceLocal, Title: b.Title, Authors: []string{"A"}, Categories: []string{}}, nil
			})

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{
			"title":   "Twice",
			"authors": []string{"A", "A"},
		}))

		assert.Equal(t, http.StatusCreated, res.Code)
	})

	t.Run("import by external id", func(t *testing.T) {
		router, mockRepo, mockProvider := newTestRouter(t)

		mockProvider.EXPECT().LookupByID(gomock.Any(), "zyTCAlFPjgYC").Return(Volume{
			ExternalID: "zyTCAlFPjgYC",
			Title:      strp("The Google Story"),
			Authors:    []string{"David A. Vise"},
		}, nil)
		mockRepo.EXPECT().FindByName(gomock.Any(), KindAuthor, "David A. Vise").
			Return(Entity{ID: 2, Name: "David A. Vise"}, nil)
		mockRepo.EXPECT().CreateBook(gomock.Any(), NewBook{
			ExternalID:  "zyTCAlFPjgYC",
			Title:       "The Google Story",
			AuthorIDs:   []int64{2},
			CategoryIDs: []int64{},
		}).Return(BookRecord{ID: 4, ExternalID: "zyTCAlFPjgYC", Source: SourceLocal, Title: "The Google Story"}, nil)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{"id": "zyTCAlFPjgYC"}))

		assert.Equal(t, http.StatusCreated, res.Code)
	})

	t.Run("unknown external id", func(t *testing.T) {
		router, _, mockProvider := newTestRouter(t)

		mockProvider.EXPECT().LookupByID(gomock.Any(), "nosuchvolume").
			Return(Volume{}, apperr.NotFound("Book does not exist"))

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{"id": "nosuchvolume"}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Book does not exist", res.ErrorDescription())
	})

	t.Run("missing title", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{"editor": "Chilton"}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "title is required", res.ErrorDescription())
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", "{not json"))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid request body", res.ErrorDescription())
	})

	t.Run("blank author name rejected", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/books/", map[string]any{
			"title":   "Dune",
			"authors": []string{"  "},
		}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid input", res.ErrorDescription())
	})
}

func TestHTTPHandler_Search(t *testing.T) {
	t.Run("local hit does not call provider", func(t *testing.T) {
		router, mockRepo, mockProvider := newTestRouter(t)

		mockRepo.EXPECT().FindBooks(gomock.Any(), SearchKey{Field: ByTitle, Value: "Dune"}).
			Return([]BookRecord{{ID: 1, Source: SourceLocal, Title: "Dune", Authors: []string{}, Categories: []string{}}}, nil)
		mockProvider.EXPECT().LookupByQuery(gomock.Any(), gomock.Any()).Times(0)

		res := serve(router, testutil.NewRequest(http.MethodGet, "/books/search/?title=Dune", nil))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Len(t, res.Data(), 1)
	})

	t.Run("falls back to provider", func(t *testing.T) {
		router, mockRepo, mockProvider := newTestRouter(t)

		mockRepo.EXPECT().FindBooks(gomock.Any(), SearchKey{Field: ByAuthor, Value: "Vise"}).
			Return([]BookRecord{}, nil)
		mockProvider.EXPECT().LookupByQuery(gomock.Any(), "inauthor:Vise").
			Return([]Volume{{ExternalID: "zyTCAlFPjgYC", Title: strp("The Google Story")}}, nil)

		res := serve(router, testutil.NewRequest(http.MethodGet, "/books/search?author=Vise", nil))

		require.Equal(t, http.StatusOK, res.Code)
		items := res.Data().([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, SourceExternal, item["source"])
		assert.Equal(t, "zyTCAlFPjgYC", item["external_id"])
		assert.NotContains(t, item, "id")
		assert.Equal(t, []any{}, item["authors"])
	})

	t.Run("no results anywhere", func(t *testing.T) {
		router, mockRepo, mockProvider := newTestRouter(t)

		mockRepo.EXPECT().FindBooks(gomock.Any(), gomock.Any()).Return([]BookRecord{}, nil)
		mockProvider.EXPECT().LookupByQuery(gomock.Any(), "qwzx").Return([]Volume{}, nil)

		res := serve(router, testutil.NewRequest(http.MethodGet, "/books/search/?q=qwzx", nil))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []any{}, res.Data())
	})

	t.Run("missing parameter", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		res := serve(router, testutil.NewRequest(http.MethodGet, "/books/search/", nil))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Contains(t, res.ErrorDescription(), "is required")
	})

	t.Run("provider unreachable", func(t *testing.T) {
		router, mockRepo, mockProvider := newTestRouter(t)

		mockRepo.EXPECT().FindBooks(gomock.Any(), gomock.Any()).Return([]BookRecord{}, nil)
		mockProvider.EXPECT().LookupByQuery(gomock.Any(), gomock.Any()).
			Return(nil, apperr.ErrConnectionFailure.WithCause(errors.New("dial tcp: timeout")))

		res := serve(router, testutil.NewRequest(http.MethodGet, "/books/search/?category=Fiction", nil))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Connection error", res.ErrorDescription())
	})
}

func TestHTTPHandler_DeleteBook(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().DeleteBook(gomock.Any(), int64(5)).Return(nil)

		res := serve(router, testutil.NewRequest(http.MethodDelete, "/books/", map[string]any{"id": 5}))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, map[string]any{"id": float64(5)}, res.Data())
	})

	t.Run("ambiguous title", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().FindBooksByTitle(gomock.Any(), "Dune").
			Return([]BookRecord{{ID: 1, Title: "Dune"}, {ID: 2, Title: "Dune"}}, nil)

		res := serve(router, testutil.NewRequest(http.MethodDelete, "/books/", map[string]any{"title": "Dune"}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Contains(t, res.ErrorDescription(), "ids 1, 2")
	})

	t.Run("unknown id", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().DeleteBook(gomock.Any(), int64(99)).Return(apperr.NotFound("Book does not exist"))

		res := serve(router, testutil.NewRequest(http.MethodDelete, "/books/", map[string]any{"id": 99}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Book does not exist", res.ErrorDescription())
	})
}

func TestHTTPHandler_Authors(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().Create(gomock.Any(), KindAuthor, "Ursula K. Le Guin").
			Return(Entity{ID: 1, Name: "Ursula K. Le Guin"}, nil)

		res := serve(router, testutil.NewRequest(http.MethodPost, "/authors/", map[string]any{"name": "Ursula K. Le Guin"}))

		require.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, map[string]any{"id": float64(1), "name": "Ursula K. Le Guin"}, res.Data())
	})

	t.Run("duplicate", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().Create(gomock.Any(), KindAuthor, "Ursula K. Le Guin").
			Return(Entity{}, apperr.Duplicate("Author already exist"))

		res := serve(router, testutil.NewRequest(http.MethodPost, "/authors/", map[string]any{"name": "Ursula K. Le Guin"}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Author already exist", res.ErrorDescription())
	})

	t.Run("list empty", func(t *testing.T) {
		router, mockRepo, _ := newTestRouter(t)

		mockRepo.EXPECT().ListAll(gomock.Any(), KindAuthor).Return([]Entity{}, nil)

		res := serve(router, testutil.NewRequest(http.MethodGet, "/authors/", nil))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []any{}, res.Data())
	})
}

func TestHTTPHandler_Categories(t *testing.T) {
	router, mockRepo, _ := newTestRouter(t)

	mockRepo.EXPECT().ListAll(gomock.Any(), KindCategory).Return(nil, errors.New("conn reset"))

	res := serve(router, testutil.NewRequest(http.MethodGet, "/categories/", nil))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Error while processing request", res.ErrorDescription())
}
