// internal/domain/user/entity.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the users/{uid} document created at sign-up.
type Profile struct {
	UID         string    `json:"uid" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	Role        Role      `json:"role" firestore:"role"`
	PhotoURL    string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

var (
	ErrNotFound           = errors.New("user: not found")
	ErrInvalidID          = errors.New("user: invalid id")
	ErrInvalidDisplayName = errors.New("user: invalid displayName")
)

const MaxDisplayNameLength = 80

func NewProfile(uid, email, displayName string, now time.Time) (Profile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return Profile{}, ErrInvalidID
	}
	name := strings.TrimSpace(displayName)
	if len([]rune(name)) > MaxDisplayNameLength {
		return Profile{}, ErrInvalidDisplayName
	}
	now = now.UTC()
	return Profile{
		UID:         uid,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: name,
		Role:        RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Patch is a partial profile update; nil = unchanged.
type Patch struct {
	DisplayName *string
	PhotoURL    *string
	Role        *Role
}

type Repository interface {
	Create(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, uid string) (Profile, error)
	Update(ctx context.Context, uid string, patch Patch, now time.Time) error
	List(ctx context.Context) ([]Profile, error)
	WatchAll(ctx context.Context, fn func([]Profile)) error
}
