package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"librarycat/internal/apperr"
)

// Resolver get-or-creates authors and categories by name. It is scoped to a
// single request: names already resolved are served from memory so a list
// repeating a name never triggers a second create.
type Resolver struct {
	repo Repository
	seen map[Kind]map[string]Entity
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, seen: make(map[Kind]map[string]Entity)}
}

// Resolve returns the entity named name, creating it when absent. The create
// is committed right away. A concurrent create of the same name surfaces as a
// duplicate from the store, in which case the winner is read back.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, name string) (Entity, error) {
	if e, ok := r.seen[kind][name]; ok {
		return e, nil
	}

	e, err := r.repo.FindByName(ctx, kind, name)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		e, err = r.repo.Create(ctx, kind, name)
		if errors.Is(err, apperr.ErrDuplicate) {
			e, err = r.repo.FindByName(ctx, kind, name)
		}
		if err != nil {
			return Entity{}, fmt.Errorf("resolve %s %q: %w", kind, name, err)
		}
	default:
		return Entity{}, fmt.Errorf("resolve %s %q: %w", kind, name, err)
	}

	if r.seen[kind] == nil {
		r.seen[kind] = make(map[string]Entity)
	}
	r.seen[kind][name] = e
	return e, nil
}

// ResolveAll resolves each distinct non-blank name in first-seen order.
func (r *Resolver) ResolveAll(ctx context.Context, kind Kind, names []string) ([]Entity, error) {
	out := make([]Entity, 0, len(names))
	ids := make(map[int64]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		e, err := r.Resolve(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		if ids[e.ID] {
			continue
		}
		ids[e.ID] = true
		out = append(out, e)
	}
	return out, nil
}
