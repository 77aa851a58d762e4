package catalog

import (
	"context"
	"net/http"

	"librarycat/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Routes mounts the catalog endpoints on r.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.ListBooks)
		r.Post("/", h.CreateBook)
		r.Delete("/", h.DeleteBook)
		r.Get("/search", h.Search)
		r.Get("/search/", h.Search)
	})
	r.Route("/authors", func(r chi.Router) {
		r.Get("/", h.ListAuthors)
		r.Post("/", h.CreateAuthor)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
	})
}

type createBookReq struct {
	ID          string   `json:"id" validate:"omitempty,volume_id"`
	Title       string   `json:"title" validate:"max=255"`
	Subtitle    string   `json:"subtitle" validate:"max=255"`
	Editor      string   `json:"editor" validate:"max=255"`
	Description string   `json:"description" validate:"max=4000"`
	URLImage    string   `json:"url_image" validate:"omitempty,url,max=2048"`
	Authors     []string `json:"authors" validate:"dive,nonblank,max=80"`
	Categories  []string `json:"categories" validate:"dive,nonblank,max=80"`
}

type deleteBookReq struct {
	ID    int64  `json:"id" validate:"gte=0"`
	Title string `json:"title" validate:"max=255"`
}

type namedReq struct {
	Name string `json:"name" validate:"nonblank,max=80"`
}

// ListBooks handles GET /books
// @Summary List books
// @Description List every stored book with its author and category names
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

// CreateBook handles POST /books
// @Summary Create a book
// @Description Create a book from full fields, or import it by provider volume id
// @Tags books
// @Accept json
// @Produce json
// @Param request body createBookReq true "Book fields or {id}"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid input", details)
		return
	}

	book, err := h.svc.CreateBook(r.Context(), CreateBookInput{
		ExternalID:  req.ID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Editor:      req.Editor,
		Description: req.Description,
		URLImage:    req.URLImage,
		Authors:     req.Authors,
		Categories:  req.Categories,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, book)
}

// DeleteBook handles DELETE /books
// @Summary Delete a book
// @Description Delete a book by id; a title is accepted when it matches exactly one book
// @Tags books
// @Accept json
// @Produce json
// @Param request body deleteBookReq true "{id} or {title}"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [delete]
func (h *HTTPHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	var req deleteBookReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid input", details)
		return
	}

	id, err := h.svc.DeleteBook(r.Context(), DeleteBookInput{ID: req.ID, Title: req.Title})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"id": id})
}

// Search handles GET /books/search/
// @Summary Search books
// @Description Search the local catalog; fall back to the external provider when nothing matches
// @Tags books
// @Produce json
// @Param title query string false "Title substring"
// @Param subtitle query string false "Subtitle substring"
// @Param author query string false "Author name"
// @Param category query string false "Category name"
// @Param editor query string false "Publisher substring"
// @Param q query string false "Free text"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/search/ [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	key, err := ParseSearchKey(r.URL.Query())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	books, err := h.svc.Search(r.Context(), key)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

func (h *HTTPHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.svc.ListAuthors(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, authors)
}

func (h *HTTPHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	h.createNamed(w, r, h.svc.CreateAuthor)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, categories)
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.createNamed(w, r, h.svc.CreateCategory)
}

func (h *HTTPHandler) createNamed(w http.ResponseWriter, r *http.Request, create func(ctx context.Context, name string) (Entity, error)) {
	var req namedReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid input", details)
		return
	}

	entity, err := create(r.Context(), req.Name)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, entity)
}
