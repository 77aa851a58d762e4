package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"librarycat/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const bookColumns = `
	b.id, COALESCE(b.external_id, ''), b.title, b.subtitle, b.editor, b.description, b.url_image,
	ARRAY(SELECT a.name FROM book_authors ba JOIN authors a ON a.id = ba.author_id
	      WHERE ba.book_id = b.id ORDER BY ba.position),
	ARRAY(SELECT c.name FROM book_categories bc JOIN categories c ON c.id = bc.category_id
	      WHERE bc.book_id = b.id ORDER BY bc.position)`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) FindByName(ctx context.Context, kind Kind, name string) (Entity, error) {
	query := fmt.Sprintf("SELECT id, name FROM %s WHERE name = $1", kind.table())
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entity
	err := r.db.QueryRow(timeoutCtx, query, name).Scan(&e.ID, &e.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entity{}, apperr.NotFound(kind.Label() + " does not exist")
		}
		return Entity{}, persistence(fmt.Errorf("find %s by name: %w", kind, err))
	}
	return e, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, kind Kind, id int64) (Entity, error) {
	query := fmt.Sprintf("SELECT id, name FROM %s WHERE id = $1", kind.table())
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entity
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&e.ID, &e.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entity{}, apperr.NotFound(kind.Label() + " does not exist")
		}
		return Entity{}, persistence(fmt.Errorf("find %s by id: %w", kind, err))
	}
	return e, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context, kind Kind) ([]Entity, error) {
	query := fmt.Sprintf("SELECT id, name FROM %s ORDER BY id", kind.table())
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, persistence(fmt.Errorf("list %s: %w", kind, err))
	}
	defer rows.Close()

	out := []Entity{}
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, persistence(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(err)
	}
	return out, nil
}

func (r *PostgresRepo) Create(ctx context.Context, kind Kind, name string) (Entity, error) {
	query := fmt.Sprintf("INSERT INTO %s (name) VALUES ($1) RETURNING id, name", kind.table())
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entity
	if err := r.db.QueryRow(timeoutCtx, query, name).Scan(&e.ID, &e.Name); err != nil {
		if isUniqueViolation(err) {
			return Entity{}, apperr.Duplicate(kind.Label() + " already exist").WithCause(err)
		}
		return Entity{}, persistence(fmt.Errorf("create %s: %w", kind, err))
	}
	return e, nil
}

func (r *PostgresRepo) ListBooks(ctx context.Context) ([]BookRecord, error) {
	return r.queryBooks(ctx, "SELECT"+bookColumns+" FROM books b ORDER BY b.id")
}

func (r *PostgresRepo) GetBook(ctx context.Context, id int64) (BookRecord, error) {
	books, err := r.queryBooks(ctx, "SELECT"+bookColumns+" FROM books b WHERE b.id = $1", id)
	if err != nil {
		return BookRecord{}, err
	}
	if len(books) == 0 {
		return BookRecord{}, apperr.NotFound("Book does not exist")
	}
	return books[0], nil
}

func (r *PostgresRepo) FindBooksByTitle(ctx context.Context, title string) ([]BookRecord, error) {
	return r.queryBooks(ctx, "SELECT"+bookColumns+" FROM books b WHERE b.title = $1 ORDER BY b.id", title)
}

func (r *PostgresRepo) FindBooks(ctx context.Context, key SearchKey) ([]BookRecord, error) {
	where, args := searchClause(key)
	return r.queryBooks(ctx, "SELECT"+bookColumns+" FROM books b WHERE "+where+" ORDER BY b.id", args...)
}

// searchClause builds the local-probe predicate for key.
func searchClause(key SearchKey) (string, []any) {
	pattern := "%" + escapeLike(key.Value) + "%"
	switch key.Field {
	case ByTitle:
		return `b.title ILIKE $1`, []any{pattern}
	case BySubtitle:
		return `b.subtitle ILIKE $1`, []any{pattern}
	case ByEditor:
		return `b.editor ILIKE $1`, []any{pattern}
	case ByAuthor:
		return `EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id AND lower(a.name) = lower($1))`, []any{key.Value}
	case ByCategory:
		return `EXISTS (SELECT 1 FROM book_categories bc JOIN categories c ON c.id = bc.category_id
			WHERE bc.book_id = b.id AND lower(c.name) = lower($1))`, []any{key.Value}
	default:
		return `(b.title ILIKE $1 OR b.subtitle ILIKE $1 OR b.editor ILIKE $1 OR b.description ILIKE $1)`, []any{pattern}
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepo) queryBooks(ctx context.Context, query string, args ...any) ([]BookRecord, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, persistence(fmt.Errorf("query books: %w", err))
	}
	defer rows.Close()

	out := []BookRecord{}
	for rows.Next() {
		b := BookRecord{Source: SourceLocal}
		if err := rows.Scan(
			&b.ID, &b.ExternalID, &b.Title, &b.Subtitle, &b.Editor, &b.Description, &b.URLImage,
			&b.Authors, &b.Categories,
		); err != nil {
			return nil, persistence(err)
		}
		if b.Authors == nil {
			b.Authors = []string{}
		}
		if b.Categories == nil {
			b.Categories = []string{}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence(err)
	}
	return out, nil
}

func (r *PostgresRepo) CreateBook(ctx context.Context, nb NewBook) (BookRecord, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return BookRecord{}, persistence(err)
	}
	defer tx.Rollback(timeoutCtx)

	const bookSQL = `
		INSERT INTO books (external_id, title, subtitle, editor, description, url_image)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err = tx.QueryRow(timeoutCtx, bookSQL, nb.ExternalID, nb.Title, nb.Subtitle, nb.Editor, nb.Description, nb.URLImage).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return BookRecord{}, apperr.Duplicate("Book already exist").WithCause(err)
		}
		return BookRecord{}, persistence(fmt.Errorf("insert book: %w", err))
	}

	const authorSQL = `
		INSERT INTO book_authors (book_id, author_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	for i, authorID := range nb.AuthorIDs {
		if _, err := tx.Exec(timeoutCtx, authorSQL, id, authorID, i); err != nil {
			return BookRecord{}, persistence(fmt.Errorf("link author %d: %w", authorID, err))
		}
	}

	const categorySQL = `
		INSERT INTO book_categories (book_id, category_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	for i, categoryID := range nb.CategoryIDs {
		if _, err := tx.Exec(timeoutCtx, categorySQL, id, categoryID, i); err != nil {
			return BookRecord{}, persistence(fmt.Errorf("link category %d: %w", categoryID, err))
		}
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return BookRecord{}, persistence(fmt.Errorf("commit book: %w", err))
	}

	return r.GetBook(ctx, id)
}

func (r *PostgresRepo) DeleteBook(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return persistence(fmt.Errorf("delete book %d: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book does not exist")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func persistence(err error) error {
	return apperr.ErrPersistence.WithCause(err)
}
