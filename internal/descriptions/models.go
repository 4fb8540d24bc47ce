package descriptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind names the entity a description belongs to.
type Kind string

const (
	KindProfile   Kind = "profile"
	KindCommunity Kind = "community"
	KindEvent     Kind = "event"
)

// Kinds lists every supported description kind.
func Kinds() []Kind {
	return []Kind{KindProfile, KindCommunity, KindEvent}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindProfile, KindCommunity, KindEvent:
		return true
	}
	return false
}

// Description stores the structured content string of one entity. Content
// is written by the codec and never edited in place.
type Description struct {
	bun.BaseModel `bun:"table:descriptions,alias:d"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Kind      Kind      `bun:"kind,notnull" json:"kind"`
	OwnerID   string    `bun:"owner_id,notnull" json:"owner_id"`
	Handle    string    `bun:"handle" json:"handle,omitempty"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func cloneDescription(d *Description) *Description {
	if d == nil {
		return nil
	}
	cloned := *d
	return &cloned
}
