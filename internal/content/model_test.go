package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"DOT Inspections & More":    "dot-inspections-more",
		"  Winter Prep for Rigs!  ": "winter-prep-for-rigs",
		"Brake--Jobs":               "brake-jobs",
		"Ünïcode only":              "n-code-only",
		"!!!":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestBlogPostValidate(t *testing.T) {
	assert.True(t, errors.Is((&BlogPost{}).Validate(), ErrInvalid))
	assert.True(t, errors.Is((&BlogPost{Title: "ok", Slug: "Not A Slug"}).Validate(), ErrInvalid))
	assert.NoError(t, (&BlogPost{Title: "ok", Slug: "a-slug"}).Validate())
	assert.True(t, errors.Is((&BlogPost{Title: "¡Ññ!"}).Validate(), ErrInvalid), "title yields an empty slug")
	assert.NoError(t, (&BlogPost{Title: "¡Ññ!", Slug: "nn"}).Validate())
}

func TestServiceValidate(t *testing.T) {
	assert.True(t, errors.Is((&Service{Name: " "}).Validate(), ErrInvalid))
	assert.NoError(t, (&Service{Name: "Engine Repair"}).Validate())
	assert.True(t, errors.Is((&Service{Name: "?!"}).Validate(), ErrInvalid))
}

func TestBlogPostPrepare(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &BlogPost{Title: " Winter Prep ", Published: true}
	p.prepare(now)

	assert.Equal(t, "Winter Prep", p.Title)
	assert.Equal(t, "winter-prep", p.Slug)
	assert.Equal(t, []string{}, p.Tags)
	if assert.NotNil(t, p.PublishedAt) {
		assert.Equal(t, now, *p.PublishedAt)
	}

	p.Published = false
	p.prepare(now)
	assert.Nil(t, p.PublishedAt)
}
