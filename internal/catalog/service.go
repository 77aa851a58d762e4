package catalog

import (
	"context"
	"fmt"
	"strings"

	"librarycat/internal/apperr"

	"go.uber.org/zap"
)

// CreateBookInput carries either an external identifier or the full fields.
type CreateBookInput struct {
	ExternalID  string
	Title       string
	Subtitle    string
	Editor      string
	Description string
	URLImage    string
	Authors     []string
	Categories  []string
}

// DeleteBookInput selects a book by id, or by exact title when ID is zero.
type DeleteBookInput struct {
	ID    int64
	Title string
}

// Service coordinates the local store and the external provider.
type Service struct {
	repo     Repository
	provider Provider
	log      *zap.Logger
}

func NewService(repo Repository, provider Provider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, provider: provider, log: log}
}

// Search answers from the local store and falls back to the provider when the
// store has nothing. Provider results are never persisted here.
func (s *Service) Search(ctx context.Context, key SearchKey) ([]BookRecord, error) {
	local, err := s.repo.FindBooks(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		return local, nil
	}

	query := key.ProviderQuery()
	volumes, err := s.provider.LookupByQuery(ctx, query)
	if err != nil {
		s.log.Warn("external lookup failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	s.log.Debug("search served by provider",
		zap.String("field", key.Field.String()),
		zap.Int("results", len(volumes)),
	)

	out := make([]BookRecord, 0, len(volumes))
	for _, v := range volumes {
		out = append(out, v.Record())
	}
	return out, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookRecord, error) {
	return s.repo.ListBooks(ctx)
}

// CreateBook resolves the record (from the provider when an external id is
// given), get-or-creates its authors and categories, then persists it.
func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (BookRecord, error) {
	if id := strings.TrimSpace(in.ExternalID); id != "" {
		v, err := s.provider.LookupByID(ctx, id)
		if err != nil {
			return BookRecord{}, err
		}
		in = inputFromVolume(v)
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return BookRecord{}, apperr.Validation("title is required")
	}

	resolver := NewResolver(s.repo)
	authors, err := resolver.ResolveAll(ctx, KindAuthor, in.Authors)
	if err != nil {
		return BookRecord{}, err
	}
	categories, err := resolver.ResolveAll(ctx, KindCategory, in.Categories)
	if err != nil {
		return BookRecord{}, err
	}

	book, err := s.repo.CreateBook(ctx, NewBook{
		ExternalID:  in.ExternalID,
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Editor:      in.Editor,
		Description: in.Description,
		URLImage:    in.URLImage,
		AuthorIDs:   entityIDs(authors),
		CategoryIDs: entityIDs(categories),
	})
	if err != nil {
		return BookRecord{}, err
	}
	s.log.Info("book created", zap.Int64("id", book.ID), zap.String("title", book.Title))
	return book, nil
}

// inputFromVolume maps a provider record onto create fields. Absent optional
// fields become empty strings only here, at the persistence boundary.
func inputFromVolume(v Volume) CreateBookInput {
	in := CreateBookInput{
		ExternalID: v.ExternalID,
		Authors:    v.Authors,
		Categories: v.Categories,
	}
	if v.Title != nil {
		in.Title = *v.Title
	}
	if v.Subtitle != nil {
		in.Subtitle = *v.Subtitle
	}
	if v.Publisher != nil {
		in.Editor = *v.Publisher
	}
	if v.Description != nil {
		in.Description = *v.Description
	}
	if v.CoverURL != nil {
		in.URLImage = *v.CoverURL
	}
	return in
}

func entityIDs(entities []Entity) []int64 {
	ids := make([]int64, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
	}
	return ids
}

// DeleteBook removes a book by id. A title is accepted only when it names
// exactly one book.
func (s *Service) DeleteBook(ctx context.Context, in DeleteBookInput) (int64, error) {
	id := in.ID
	if id == 0 {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return 0, apperr.Validation("id is required")
		}
		matches, err := s.repo.FindBooksByTitle(ctx, title)
		if err != nil {
			return 0, err
		}
		switch len(matches) {
		case 0:
			return 0, apperr.NotFound("Book does not exist")
		case 1:
			id = matches[0].ID
		default:
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = fmt.Sprint(m.ID)
			}
			return 0, apperr.Ambiguous(fmt.Sprintf("%d books titled %q (ids %s); delete by id",
				len(matches), title, strings.Join(ids, ", ")))
		}
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return 0, err
	}
	s.log.Info("book deleted", zap.Int64("id", id))
	return id, nil
}

func (s *Service) ListAuthors(ctx context.Context) ([]Entity, error) {
	return s.repo.ListAll(ctx, KindAuthor)
}

func (s *Service) CreateAuthor(ctx context.Context, name string) (Entity, error) {
	return s.createNamed(ctx, KindAuthor, name)
}

func (s *Service) ListCategories(ctx context.Context) ([]Entity, error) {
	return s.repo.ListAll(ctx, KindCategory)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (Entity, error) {
	return s.createNamed(ctx, KindCategory, name)
}

func (s *Service) createNamed(ctx context.Context, kind Kind, name string) (Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entity{}, apperr.Validation("name is required")
	}
	return s.repo.Create(ctx, kind, name)
}
