package descriptions

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DescriptionRepository exposes persistence operations for descriptions.
type DescriptionRepository interface {
	Create(ctx context.Context, description *Description) (*Description, error)
	Update(ctx context.Context, description *Description) (*Description, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Description, error)
	GetByHandle(ctx context.Context, handle string) (*Description, error)
	ListByKind(ctx context.Context, kind Kind) ([]*Description, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a description cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// NewDescriptionRecordRepository creates the go-repository-bun repository
// for descriptions. Community handles are the lookup identifier.
func NewDescriptionRecordRepository(db *bun.DB) repository.Repository[*Description] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Description]{
		NewRecord:          func() *Description { return &Description{} },
		GetID:              func(d *Description) uuid.UUID { return d.ID },
		SetID:              func(d *Description, id uuid.UUID) { d.ID = id },
		GetIdentifier:      func() string { return "handle" },
		GetIdentifierValue: func(d *Description) string { return d.Handle },
	})
}

// EnsureSchema creates the descriptions table and its lookup index.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Description)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("descriptions: create table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*Description)(nil)).
		Index("descriptions_kind_owner_idx").
		Column("kind", "owner_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("descriptions: create index: %w", err)
	}
	return nil
}
