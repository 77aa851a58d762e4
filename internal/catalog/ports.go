package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=catalog

// Repository defines the contract for catalog storage.
type Repository interface {
	FindByName(ctx context.Context, kind Kind, name string) (Entity, error)
	FindByID(ctx context.Context, kind Kind, id int64) (Entity, error)
	ListAll(ctx context.Context, kind Kind) ([]Entity, error)
	Create(ctx context.Context, kind Kind, name string) (Entity, error)

	ListBooks(ctx context.Context) ([]BookRecord, error)
	GetBook(ctx context.Context, id int64) (BookRecord, error)
	FindBooks(ctx context.Context, key SearchKey) ([]BookRecord, error)
	FindBooksByTitle(ctx context.Context, title string) ([]BookRecord, error)
	CreateBook(ctx context.Context, book NewBook) (BookRecord, error)
	DeleteBook(ctx context.Context, id int64) error
}

// Provider is the external book-metadata catalog.
type Provider interface {
	LookupByID(ctx context.Context, id string) (Volume, error)
	// LookupByQuery returns an empty slice and a nil error when the provider
	// reports zero matches.
	LookupByQuery(ctx context.Context, query string) ([]Volume, error)
}
