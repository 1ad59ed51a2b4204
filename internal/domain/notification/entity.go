package notification

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Type string

const (
	TypeOrder     Type = "order"
	TypeTicket    Type = "ticket"
	TypePromotion Type = "promotion"
	TypeSystem    Type = "system"
)

// Notification is one mailbox entry (users/{uid}/notifications/{id}).
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body" firestore:"body"`
	Type      Type      `json:"type" firestore:"type"`
	Read      bool      `json:"read" firestore:"read"`
	RefID     string    `json:"refId,omitempty" firestore:"refId,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

var (
	ErrNotFound     = errors.New("notification: not found")
	ErrInvalidTitle = errors.New("notification: invalid title")
	ErrInvalidType  = errors.New("notification: invalid type")
)

func New(typ Type, title, body, refID string, now time.Time) (Notification, error) {
	switch typ {
	case TypeOrder, TypeTicket, TypePromotion, TypeSystem:
	default:
		return Notification{}, ErrInvalidType
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Notification{}, ErrInvalidTitle
	}
	return Notification{
		Title:     title,
		Body:      strings.TrimSpace(body),
		Type:      typ,
		RefID:     strings.TrimSpace(refID),
		CreatedAt: now.UTC(),
	}, nil
}

func Unread(items []Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}

type Repository interface {
	// Create assigns the id and returns the stored notification.
	Create(ctx context.Context, uid string, n Notification) (Notification, error)
	List(ctx context.Context, uid string) ([]Notification, error)
	MarkRead(ctx context.Context, uid, id string) error
	MarkAllRead(ctx context.Context, uid string) error
	Delete(ctx context.Context, uid, id string) error
	Watch(ctx context.Context, uid string, fn func([]Notification)) error
}
