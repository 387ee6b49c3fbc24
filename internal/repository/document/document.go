// Package document implements the domain repositories on top of store.Store,
// so every repository runs unchanged on the memory, postgres and mongo backends.
package document

import (
	"context"
	"errors"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"
)

// idOnly decodes just the key of a document.
type idOnly struct {
	ID string `json:"id" bson:"_id"`
}

// translate maps store sentinels onto the application error taxonomy.
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNoDocument):
		return apperror.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return apperror.Conflict(conflict)
	default:
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Internal(err)
	}
}

func pageOptions(page domain.Page, sort ...store.SortField) store.FindOptions {
	return store.FindOptions{Sort: sort, Skip: page.Skip(), Limit: int64(page.Limit)}
}

// findPage runs the page query and the total count for the same filter.
func findPage[T any](ctx context.Context, s store.Store, collection string, filter store.Filter, page domain.Page, sort ...store.SortField) ([]T, int64, error) {
	total, err := s.CountDocuments(ctx, collection, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	items := make([]T, 0, page.Limit)
	if total == 0 {
		return items, 0, nil
	}
	if err := s.Find(ctx, collection, filter, pageOptions(page, sort...), &items); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

// findByIDs loads the documents for ids keyed by id. Missing ids are absent from the map.
func findByIDs[T any](ctx context.Context, s store.Store, collection string, ids []string, key func(T) string) (map[string]T, error) {
	ids = distinct(ids)
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var docs []T
	if err := s.Find(ctx, collection, store.Where(store.In(store.IDField, ids)), store.FindOptions{}, &docs); err != nil {
		return nil, apperror.Internal(err)
	}
	for _, d := range docs {
		out[key(d)] = d
	}
	return out, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
