package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{"id", "slug", "title", "excerpt", "body", "author", "tags", "image_url", "published", "published_at", "created_at", "updated_at"}

var serviceRowColumns = []string{"id", "slug", "name", "description", "features", "icon", "sort_order", "active", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_ListPublishedPosts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(postRowColumns).
		AddRow("p1", "winter-prep", "Winter Prep", "Get ready", "body", "Mike", "{winter,maintenance}", "", true, now, now, now).
		AddRow("p2", "dpf-care", "DPF Care", "", "body", "", nil, "", true, nil, now, now)
	mock.ExpectQuery(`SELECT (.+) FROM blog_posts WHERE published = TRUE ORDER BY COALESCE\(published_at, created_at\) DESC`).
		WillReturnRows(rows)

	posts, err := repo.ListPosts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []string{"winter", "maintenance"}, posts[0].Tags)
	require.NotNil(t, posts[0].PublishedAt)
	assert.Equal(t, now, *posts[0].PublishedAt)
	assert.Equal(t, []string{}, posts[1].Tags)
	assert.Nil(t, posts[1].PublishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetPostBySlugNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT (.+) FROM blog_posts WHERE slug = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	_, err := repo.GetPostBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreatePost(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO blog_posts`).
		WithArgs(sqlmock.AnyArg(), "winter-prep", "Winter Prep", "", "body", "", sqlmock.AnyArg(),
			"", false, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	post := &BlogPost{Title: "Winter Prep", Body: "body"}
	require.NoError(t, repo.CreatePost(context.Background(), post))
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "winter-prep", post.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreatePostSlugTaken(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO blog_posts`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.CreatePost(context.Background(), &BlogPost{Title: "Winter Prep"})
	assert.ErrorIs(t, err, ErrSlugTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreatePostInvalidSkipsDB(t *testing.T) {
	repo, mock := newMockRepo(t)
	err := repo.CreatePost(context.Background(), &BlogPost{})
	assert.True(t, errors.Is(err, ErrInvalid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdatePost(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE blog_posts SET (.+) WHERE id = \$1 RETURNING published_at, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"published_at", "created_at"}).AddRow(published, created))

	post := &BlogPost{ID: "p1", Title: "Winter Prep", Published: true}
	require.NoError(t, repo.UpdatePost(context.Background(), post))
	assert.Equal(t, created, post.CreatedAt)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, published, *post.PublishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdatePostNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`UPDATE blog_posts`).
		WillReturnRows(sqlmock.NewRows([]string{"published_at", "created_at"}))

	err := repo.UpdatePost(context.Background(), &BlogPost{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeletePost(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM blog_posts WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM blog_posts WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeletePost(context.Background(), "p1"))
	assert.ErrorIs(t, repo.DeletePost(context.Background(), "p1"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListActiveServices(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM services WHERE active = TRUE ORDER BY sort_order ASC, name ASC`).
		WillReturnRows(sqlmock.NewRows(serviceRowColumns).
			AddRow("s1", "engine-repair", "Engine Repair", "Diesel engines", "{Diagnostics,Overhauls}", "wrench", 1, true, now, now))

	services, err := repo.ListServices(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, []string{"Diagnostics", "Overhauls"}, services[0].Features)
	assert.Equal(t, 1, services[0].SortOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateAndUpdateService(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO services`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE services SET (.+) WHERE id = \$1 RETURNING created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	svc := &Service{Name: "Brake Service", Active: true}
	require.NoError(t, repo.CreateService(context.Background(), svc))
	assert.Equal(t, "brake-service", svc.Slug)
	assert.Equal(t, []string{}, svc.Features)

	svc.Description = "Air brakes"
	require.NoError(t, repo.UpdateService(context.Background(), svc))
	assert.Equal(t, created, svc.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetServiceNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT (.+) FROM services WHERE slug = \$1`).
		WithArgs("paint").
		WillReturnRows(sqlmock.NewRows(serviceRowColumns))

	_, err := repo.GetService(context.Background(), "paint")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
