// Package content serves the marketing site's blog posts, service pages and
// shop settings, and the admin editor that maintains them.
package content

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrNotFound is returned when a post or service does not exist.
	ErrNotFound = errors.New("content: not found")
	// ErrSlugTaken is returned when a slug is already used by another record.
	ErrSlugTaken = errors.New("content: slug already in use")
	// ErrInvalid is returned for records that fail validation.
	ErrInvalid = errors.New("content: invalid")
)

// BlogPost is an article shown on the public blog.
type BlogPost struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Service is one offering on the services page.
type Service struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	Icon        string    `json:"icon,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SiteSettings are the shop details rendered in the site header and footer.
type SiteSettings struct {
	ShopName           string            `json:"shopName"`
	Phone              string            `json:"phone"`
	Email              string            `json:"email,omitempty"`
	Address            string            `json:"address,omitempty"`
	Hours              string            `json:"hours,omitempty"`
	EmergencyAvailable bool              `json:"emergencyAvailable"`
	SocialLinks        map[string]string `json:"socialLinks,omitempty"`
}

// Validate checks the fields a post needs before it is stored.
func (p *BlogPost) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.Join(ErrInvalid, errors.New("title is required"))
	}
	if p.Slug != "" && Slugify(p.Slug) != p.Slug {
		return errors.Join(ErrInvalid, errors.New("slug must be lowercase letters, digits and dashes"))
	}
	if p.Slug == "" && Slugify(p.Title) == "" {
		return errors.Join(ErrInvalid, errors.New("title has no letters or digits for a slug; set one explicitly"))
	}
	return nil
}

// Validate checks the fields a service needs before it is stored.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.Join(ErrInvalid, errors.New("name is required"))
	}
	if s.Slug != "" && Slugify(s.Slug) != s.Slug {
		return errors.Join(ErrInvalid, errors.New("slug must be lowercase letters, digits and dashes"))
	}
	if s.Slug == "" && Slugify(s.Name) == "" {
		return errors.Join(ErrInvalid, errors.New("name has no letters or digits for a slug; set one explicitly"))
	}
	return nil
}

// prepare fills generated fields for a new or edited post.
func (p *BlogPost) prepare(now time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Published && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	if !p.Published {
		p.PublishedAt = nil
	}
	p.UpdatedAt = now
}

func (s *Service) prepare(now time.Time) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Slug == "" {
		s.Slug = Slugify(s.Name)
	}
	if s.Features == nil {
		s.Features = []string{}
	}
	s.UpdatedAt = now
}

// Slugify turns a title into a URL slug: "DOT Inspections & More" becomes
// "dot-inspections-more".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
