package leads

import (
	"context"
	"sort"
	"sync"
)

// Repository is the lead ledger. Every write goes through one implementation
// value, which serializes concurrent submissions.
type Repository interface {
	Append(ctx context.Context, lead *Lead) error
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter Filter) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps leads in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
}

// NewInMemoryRepository creates an empty in-memory ledger.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Append(ctx context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *lead
	r.leads = append(r.leads, &copied)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.leads {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, ErrLeadNotFound
}

// List returns matching leads, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for i := len(r.leads) - 1; i >= 0; i-- {
		if filter.Matches(r.leads[i]) {
			copied := *r.leads[i]
			out = append(out, &copied)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.ID == id {
			l.Status = status
			copied := *l
			return &copied, nil
		}
	}
	return nil, ErrLeadNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.leads {
		if l.ID == id {
			r.leads = append(r.leads[:i], r.leads[i+1:]...)
			return nil
		}
	}
	return ErrLeadNotFound
}

// Len returns the number of stored leads.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

func page(leads []*Lead, offset, limit int) []*Lead {
	if offset > 0 {
		if offset >= len(leads) {
			return []*Lead{}
		}
		leads = leads[offset:]
	}
	if limit > 0 && limit < len(leads) {
		leads = leads[:limit]
	}
	return leads
}
