package descriptions

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunDescriptionRepository implements DescriptionRepository with optional caching.
type BunDescriptionRepository struct {
	repo repository.Repository[*Description]
}

// NewBunDescriptionRepository creates a description repository without caching.
func NewBunDescriptionRepository(db *bun.DB) *BunDescriptionRepository {
	return NewBunDescriptionRepositoryWithCache(db, nil, nil)
}

// NewBunDescriptionRepositoryWithCache creates a description repository with caching support.
func NewBunDescriptionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunDescriptionRepository {
	base := NewDescriptionRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunDescriptionRepository{repo: base}
}

func (r *BunDescriptionRepository) Create(ctx context.Context, description *Description) (*Description, error) {
	record, err := r.repo.Create(ctx, description)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunDescriptionRepository) Update(ctx context.Context, description *Description) (*Description, error) {
	record, err := r.repo.Update(ctx, description)
	if err != nil {
		return nil, mapRepositoryError(err, description.ID.String())
	}
	return record, nil
}

func (r *BunDescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Description, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

// GetByHandle looks up a community by handle. Profiles and events carry no
// handle and never match.
func (r *BunDescriptionRepository) GetByHandle(ctx context.Context, handle string) (*Description, error) {
	if handle == "" {
		return nil, &NotFoundError{Resource: "description", Key: handle}
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.kind = ?", KindCommunity).
				Where("?TableAlias.handle = ?", handle)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, handle)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "description", Key: handle}
	}
	return records[0], nil
}

func (r *BunDescriptionRepository) ListByKind(ctx context.Context, kind Kind) ([]*Description, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.kind = ?", kind).OrderExpr("?TableAlias.owner_id ASC")
		}),
	)
	return records, err
}

func (r *BunDescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Description{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "description", Key: key}
	}
	return fmt.Errorf("description repository error: %w", err)
}
