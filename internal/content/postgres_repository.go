package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const postColumns = `id, slug, title, excerpt, body, author, tags, image_url, published, published_at, created_at, updated_at`

const serviceColumns = `id, slug, name, description, features, icon, sort_order, active, created_at, updated_at`

// PostgresRepository stores content in the blog_posts and services tables.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) ListPosts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY COALESCE(published_at, created_at) DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("content: list posts: %w", err)
	}
	defer rows.Close()

	out := []BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetPostBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) CreatePost(ctx context.Context, post *BlogPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	now := r.now()
	post.prepare(now)
	post.ID = uuid.NewString()
	post.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blog_posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		post.ID, post.Slug, post.Title, post.Excerpt, post.Body, post.Author, pq.Array(post.Tags),
		post.ImageURL, post.Published, post.PublishedAt, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return mapWriteError("create post", err)
	}
	return nil
}

// UpdatePost replaces an existing post's editable fields. A post that was
// already published keeps its original publish time.
func (r *PostgresRepository) UpdatePost(ctx context.Context, post *BlogPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	post.prepare(r.now())

	row := r.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET
		    slug = $2, title = $3, excerpt = $4, body = $5, author = $6, tags = $7,
		    image_url = $8, published = $9,
		    published_at = CASE WHEN $9 THEN COALESCE(published_at, $10) ELSE NULL END,
		    updated_at = $11
		WHERE id = $1
		RETURNING published_at, created_at`,
		post.ID, post.Slug, post.Title, post.Excerpt, post.Body, post.Author, pq.Array(post.Tags),
		post.ImageURL, post.Published, post.PublishedAt, post.UpdatedAt)

	var publishedAt sql.NullTime
	if err := row.Scan(&publishedAt, &post.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return mapWriteError("update post", err)
	}
	post.PublishedAt = nullTime(publishedAt)
	return nil
}

func (r *PostgresRepository) DeletePost(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "blog_posts", id)
}

func (r *PostgresRepository) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("content: list services: %w", err)
	}
	defer rows.Close()

	out := []Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetService(ctx context.Context, slug string) (*Service, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	s, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) CreateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	now := r.now()
	svc.prepare(now)
	svc.ID = uuid.NewString()
	svc.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		svc.ID, svc.Slug, svc.Name, svc.Description, pq.Array(svc.Features), svc.Icon,
		svc.SortOrder, svc.Active, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return mapWriteError("create service", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	svc.prepare(r.now())

	row := r.db.QueryRowContext(ctx, `
		UPDATE services SET
		    slug = $2, name = $3, description = $4, features = $5, icon = $6,
		    sort_order = $7, active = $8, updated_at = $9
		WHERE id = $1
		RETURNING created_at`,
		svc.ID, svc.Slug, svc.Name, svc.Description, pq.Array(svc.Features), svc.Icon,
		svc.SortOrder, svc.Active, svc.UpdatedAt)
	if err := row.Scan(&svc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return mapWriteError("update service", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteService(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "services", id)
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("content: delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("content: delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row scanner) (*BlogPost, error) {
	var (
		p           BlogPost
		publishedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Author, pq.Array(&p.Tags),
		&p.ImageURL, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("content: scan post: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.PublishedAt = nullTime(publishedAt)
	return &p, nil
}

func scanService(row scanner) (*Service, error) {
	var s Service
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Description, pq.Array(&s.Features), &s.Icon,
		&s.SortOrder, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("content: scan service: %w", err)
	}
	if s.Features == nil {
		s.Features = []string{}
	}
	return &s, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// mapWriteError recognises unique violations from either lib/pq or the pgx
// stdlib driver.
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return fmt.Errorf("content: %s: %w", op, err)
}

var _ Repository = (*PostgresRepository)(nil)
