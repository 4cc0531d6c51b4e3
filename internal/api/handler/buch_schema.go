package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

const (
	headerETag         = "ETag"
	headerIfMatch      = "If-Match"
	headerIfNoneMatch  = "If-None-Match"
	headerCacheControl = "Cache-Control"
)

// --- Request / Response types ---

type authorPayload struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

// buchRequest is the writable part of a Buch. Id, version and timestamps are
// owned by the server.
type buchRequest struct {
	Title     string          `json:"title"`
	Rating    *int            `json:"rating,omitempty"`
	Kind      string          `json:"kind"`
	Publisher string          `json:"publisher"`
	Price     float64         `json:"price"`
	Discount  *float64        `json:"discount,omitempty"`
	Available bool            `json:"available"`
	Date      *time.Time      `json:"date,omitempty"`
	Email     string          `json:"email,omitempty"`
	Homepage  string          `json:"homepage,omitempty"`
	Keywords  []string        `json:"keywords"`
	Authors   []authorPayload `json:"authors"`
}

type buchLinks struct {
	Self  string `json:"self"`
	Media string `json:"media"`
}

type buchResponse struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	Title     string          `json:"title"`
	Rating    *int            `json:"rating,omitempty"`
	Kind      string          `json:"kind"`
	Publisher string          `json:"publisher"`
	Price     float64         `json:"price"`
	Discount  *float64        `json:"discount,omitempty"`
	Available bool            `json:"available"`
	Date      *time.Time      `json:"date,omitempty"`
	Email     string          `json:"email,omitempty"`
	Homepage  string          `json:"homepage,omitempty"`
	Keywords  []string        `json:"keywords"`
	Authors   []authorPayload `json:"authors"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Links     buchLinks       `json:"_links"`
}

// searchQuery is bound from the query string of GET /buecher.
type searchQuery struct {
	Title     string   `query:"title"     validate:"max=200"`
	Kind      string   `query:"kind"      validate:"omitempty,oneof=KINDLE PRINT"`
	Publisher string   `query:"publisher" validate:"omitempty,oneof=PUBLISHER_A PUBLISHER_B"`
	Keywords  []string `query:"keyword"   validate:"dive,max=100"`
}

// --- Mapping ---

func (r buchRequest) toDomain(id string) *domain.Buch {
	authors := make([]domain.Author, 0, len(r.Authors))
	for _, a := range r.Authors {
		authors = append(authors, domain.Author{LastName: a.LastName, FirstName: a.FirstName})
	}
	return &domain.Buch{
		ID:        id,
		Title:     r.Title,
		Rating:    r.Rating,
		Kind:      domain.Kind(r.Kind),
		Publisher: domain.Publisher(r.Publisher),
		Price:     r.Price,
		Discount:  r.Discount,
		Available: r.Available,
		Date:      r.Date,
		Email:     r.Email,
		Homepage:  r.Homepage,
		Keywords:  r.Keywords,
		Authors:   authors,
	}
}

func toBuchResponse(b *domain.Buch) buchResponse {
	authors := make([]authorPayload, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, authorPayload{LastName: a.LastName, FirstName: a.FirstName})
	}
	keywords := b.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return buchResponse{
		ID:        b.ID,
		Version:   b.Version,
		Title:     b.Title,
		Rating:    b.Rating,
		Kind:      string(b.Kind),
		Publisher: string(b.Publisher),
		Price:     b.Price,
		Discount:  b.Discount,
		Available: b.Available,
		Date:      b.Date,
		Email:     b.Email,
		Homepage:  b.Homepage,
		Keywords:  keywords,
		Authors:   authors,
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
		Links: buchLinks{
			Self:  buchPath(b.ID),
			Media: buchPath(b.ID) + "/media",
		},
	}
}

func (q searchQuery) toFilter() ports.BuchFilter {
	var keywords []string
	for _, k := range q.Keywords {
		// keyword=a,b and keyword=a&keyword=b are equivalent.
		for _, part := range strings.Split(k, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keywords = append(keywords, part)
			}
		}
	}
	return ports.BuchFilter{
		Title:     q.Title,
		Kind:      domain.Kind(q.Kind),
		Publisher: domain.Publisher(q.Publisher),
		Keywords:  keywords,
	}
}

func buchPath(id string) string { return "/buecher/" + id }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// etag renders a version as a strong entity tag.
func etag(version int) string {
	return `"` + strconv.Itoa(version) + `"`
}

// versionFromIfMatch extracts the version from an If-Match value. Quoted and
// weak tags are unwrapped; anything else is passed through for the service to
// reject. A missing header yields nil.
func versionFromIfMatch(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	return &v
}

// matchesETag reports whether an If-None-Match value names tag.
func matchesETag(ifNoneMatch, tag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
