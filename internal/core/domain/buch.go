package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind is the edition format of a Buch.
type Kind string

const (
	KindKindle Kind = "KINDLE"
	KindPrint  Kind = "PRINT"
)

// Publisher identifies one of the two supported publishers.
type Publisher string

const (
	PublisherA Publisher = "PUBLISHER_A"
	PublisherB Publisher = "PUBLISHER_B"
)

// MaxRating is the highest rating a Buch can carry.
const MaxRating = 5

var (
	ErrBuchNotFound    = errors.New("buch not found")
	ErrTitelExists     = errors.New("title already exists")
	ErrVersionMissing  = errors.New("version missing")
	ErrVersionInvalid  = errors.New("version is not a non-negative integer")
	ErrVersionConflict = errors.New("no buch with matching id and version")
	ErrValidation      = errors.New("validation failed")
	ErrMediaNotFound   = errors.New("media not found")
)

// ValidationError carries every violated field of a Buch, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Author is a single entry in the ordered author list.
type Author struct {
	LastName  string `json:"last_name" bson:"last_name"`
	FirstName string `json:"first_name" bson:"first_name"`
}

// Buch is the catalog aggregate root. Version is owned by the store and
// increases by exactly one per successful update.
type Buch struct {
	ID        string     `json:"id" bson:"_id"`
	Title     string     `json:"title" bson:"title" validate:"required,leadingword"`
	Rating    *int       `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Kind      Kind       `json:"kind" bson:"kind" validate:"required,oneof=KINDLE PRINT"`
	Publisher Publisher  `json:"publisher" bson:"publisher" validate:"required,oneof=PUBLISHER_A PUBLISHER_B"`
	Price     float64    `json:"price" bson:"price" validate:"gte=0"`
	Discount  *float64   `json:"discount,omitempty" bson:"discount,omitempty" validate:"omitempty,gte=0"`
	Available bool       `json:"available" bson:"available"`
	Date      *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	Email     string     `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Homepage  string     `json:"homepage,omitempty" bson:"homepage,omitempty" validate:"omitempty,url"`
	Keywords  []string   `json:"keywords" bson:"keywords"`
	Authors   []Author   `json:"authors" bson:"authors"`
	Version   int        `json:"version" bson:"version"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// NormalizeKeywords removes blanks and duplicates, keeping first occurrence order.
func (b *Buch) NormalizeKeywords() {
	if len(b.Keywords) == 0 {
		b.Keywords = []string{}
		return
	}
	seen := make(map[string]struct{}, len(b.Keywords))
	out := make([]string, 0, len(b.Keywords))
	for _, k := range b.Keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	b.Keywords = out
}

// BuchCreated is emitted after a Buch has been persisted.
type BuchCreated struct {
	ID        string
	Title     string
	CreatedAt time.Time
}
