package descriptions

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryDescriptionRepository is an in-memory DescriptionRepository.
type MemoryDescriptionRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Description
	byHandle map[string]uuid.UUID
}

// NewMemoryDescriptionRepository constructs an empty repository.
func NewMemoryDescriptionRepository() *MemoryDescriptionRepository {
	return &MemoryDescriptionRepository{
		byID:     make(map[uuid.UUID]*Description),
		byHandle: make(map[string]uuid.UUID),
	}
}

func (r *MemoryDescriptionRepository) Create(_ context.Context, description *Description) (*Description, error) {
	if description == nil {
		return nil, nil
	}
	cloned := cloneDescription(description)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	if cloned.Handle != "" {
		r.byHandle[cloned.Handle] = cloned.ID
	}
	return cloneDescription(cloned), nil
}

func (r *MemoryDescriptionRepository) Update(_ context.Context, description *Description) (*Description, error) {
	if description == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[description.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "description", Key: description.ID.String()}
	}
	if existing.Handle != "" && existing.Handle != description.Handle {
		delete(r.byHandle, existing.Handle)
	}

	cloned := cloneDescription(description)
	r.byID[cloned.ID] = cloned
	if cloned.Handle != "" {
		r.byHandle[cloned.Handle] = cloned.ID
	}
	return cloneDescription(cloned), nil
}

func (r *MemoryDescriptionRepository) GetByID(_ context.Context, id uuid.UUID) (*Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "description", Key: id.String()}
	}
	return cloneDescription(record), nil
}

func (r *MemoryDescriptionRepository) GetByHandle(_ context.Context, handle string) (*Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[handle]
	if !ok || handle == "" || r.byID[id].Kind != KindCommunity {
		return nil, &NotFoundError{Resource: "description", Key: handle}
	}
	return cloneDescription(r.byID[id]), nil
}

func (r *MemoryDescriptionRepository) ListByKind(_ context.Context, kind Kind) ([]*Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Description
	for _, record := range r.byID {
		if record.Kind == kind {
			out = append(out, cloneDescription(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

func (r *MemoryDescriptionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "description", Key: id.String()}
	}
	delete(r.byID, id)
	if record.Handle != "" {
		delete(r.byHandle, record.Handle)
	}
	return nil
}
