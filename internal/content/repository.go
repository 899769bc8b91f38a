package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores posts and services. The public pages and the admin
// editor share one repository.
type Repository interface {
	ListPosts(ctx context.Context, publishedOnly bool) ([]BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*BlogPost, error)
	CreatePost(ctx context.Context, post *BlogPost) error
	UpdatePost(ctx context.Context, post *BlogPost) error
	DeletePost(ctx context.Context, id string) error

	ListServices(ctx context.Context, activeOnly bool) ([]Service, error)
	GetService(ctx context.Context, slug string) (*Service, error)
	CreateService(ctx context.Context, svc *Service) error
	UpdateService(ctx context.Context, svc *Service) error
	DeleteService(ctx context.Context, id string) error
}

// MemoryRepository keeps content in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	posts    map[string]BlogPost
	services map[string]Service
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory content repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:    make(map[string]BlogPost),
		services: make(map[string]Service),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) ListPosts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return postSortTime(out[i]).After(postSortTime(out[j]))
	})
	return out, nil
}

func (r *MemoryRepository) GetPostBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			cp := copyPost(p)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreatePost(ctx context.Context, post *BlogPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	post.prepare(now)
	if r.postSlugTaken(post.Slug, "") {
		return ErrSlugTaken
	}
	post.ID = uuid.NewString()
	post.CreatedAt = now
	r.posts[post.ID] = copyPost(*post)
	return nil
}

func (r *MemoryRepository) UpdatePost(ctx context.Context, post *BlogPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if post.PublishedAt == nil {
		post.PublishedAt = existing.PublishedAt
	}
	post.prepare(r.now())
	if r.postSlugTaken(post.Slug, post.ID) {
		return ErrSlugTaken
	}
	post.CreatedAt = existing.CreatedAt
	r.posts[post.ID] = copyPost(*post)
	return nil
}

func (r *MemoryRepository) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, 0, len(r.services))
	for _, s := range r.services {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, copyService(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryRepository) GetService(ctx context.Context, slug string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.Slug == slug {
			cp := copyService(s)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	svc.prepare(now)
	if r.serviceSlugTaken(svc.Slug, "") {
		return ErrSlugTaken
	}
	svc.ID = uuid.NewString()
	svc.CreatedAt = now
	r.services[svc.ID] = copyService(*svc)
	return nil
}

func (r *MemoryRepository) UpdateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.services[svc.ID]
	if !ok {
		return ErrNotFound
	}
	svc.prepare(r.now())
	if r.serviceSlugTaken(svc.Slug, svc.ID) {
		return ErrSlugTaken
	}
	svc.CreatedAt = existing.CreatedAt
	r.services[svc.ID] = copyService(*svc)
	return nil
}

func (r *MemoryRepository) DeleteService(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return ErrNotFound
	}
	delete(r.services, id)
	return nil
}

func (r *MemoryRepository) postSlugTaken(slug, exceptID string) bool {
	for id, p := range r.posts {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) serviceSlugTaken(slug, exceptID string) bool {
	for id, s := range r.services {
		if id != exceptID && s.Slug == slug {
			return true
		}
	}
	return false
}

func postSortTime(p BlogPost) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

func copyPost(p BlogPost) BlogPost {
	p.Tags = append([]string{}, p.Tags...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}

func copyService(s Service) Service {
	s.Features = append([]string{}, s.Features...)
	return s
}

var _ Repository = (*MemoryRepository)(nil)
