// internal/domain/category/entity.go
package category

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrNotFound      = errors.New("category: not found")
	ErrAlreadyExists = errors.New("category: already exists")
	ErrInvalidName   = errors.New("category: invalid name")
)

// Category is {id (slug), name}. The id is derived from the name.
type Category struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func New(name string, now time.Time) (Category, error) {
	name = strings.Join(strings.Fields(name), " ")
	slug := Slugify(name)
	if name == "" || slug == "" {
		return Category{}, ErrInvalidName
	}
	return Category{ID: slug, Name: name, CreatedAt: now.UTC()}, nil
}

// Slugify lowercases name and collapses every run of non letters/digits into a single '-'.
//
//	"Home & Garden" -> "home-garden"
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	// Create fails with ErrAlreadyExists when the slug is taken.
	Create(ctx context.Context, c Category) error
	Delete(ctx context.Context, id string) error
}
