// internal/domain/ticket/entity.go
package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/common"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Ticket is a support inquiry (users/{uid}/tickets/{id}).
// Created by a verified user, mutated only by admin.
type Ticket struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"userId"`
	Email         string                 `json:"email,omitempty"`
	Subject       string                 `json:"subject,omitempty"`
	Message       string                 `json:"message"`
	Status        Status                 `json:"status"`
	Timeline      []common.TimelineEntry `json:"timeline"`
	ViewedByAdmin bool                   `json:"viewedByAdmin"`
	AdminResponse string                 `json:"adminResponse,omitempty"`
	Version       int                    `json:"version"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("ticket: not found")
	ErrConflict      = errors.New("ticket: conflict")
	ErrInvalidStatus = errors.New("ticket: invalid status")
	ErrInvalidID     = errors.New("ticket: invalid id")
)

const (
	MsgEmptyMessage = "Message cannot be empty"
	MsgNotVerified  = "Please verify your email before submitting a ticket"

	MaxMessageLength = 5000
)

func New(id, userID, email, subject, message string, now time.Time) (Ticket, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Ticket{}, common.Invalid(MsgEmptyMessage)
	}
	if len([]rune(message)) > MaxMessageLength {
		return Ticket{}, common.Invalid("Message must be at most %d characters", MaxMessageLength)
	}
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" {
		return Ticket{}, ErrInvalidID
	}
	now = now.UTC()
	return Ticket{
		ID:        id,
		UserID:    userID,
		Email:     strings.TrimSpace(email),
		Subject:   strings.TrimSpace(subject),
		Message:   message,
		Status:    StatusOpen,
		Timeline:  common.AppendTimeline(nil, string(StatusOpen), now, ""),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateStatus appends exactly one timeline entry; existing entries are left untouched.
func (t *Ticket) UpdateStatus(next Status, note string, now time.Time) error {
	if _, err := ParseStatus(string(next)); err != nil {
		return err
	}
	t.Status = next
	t.Timeline = common.AppendTimeline(t.Timeline, string(next), now, note)
	t.touch(now)
	return nil
}

func (t *Ticket) MarkViewed(now time.Time) {
	if t.ViewedByAdmin {
		return
	}
	t.ViewedByAdmin = true
	t.touch(now)
}

func (t *Ticket) Respond(response string, now time.Time) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return common.Invalid("Response cannot be empty")
	}
	t.AdminResponse = response
	t.touch(now)
	return nil
}

func (t *Ticket) touch(now time.Time) {
	t.UpdatedAt = now.UTC()
	t.Version++
}

// Repository is the persistence port for tickets.
type Repository interface {
	Create(ctx context.Context, t Ticket) error
	GetByID(ctx context.Context, uid, id string) (Ticket, error)
	ListByUser(ctx context.Context, uid string) ([]Ticket, error)
	ListAll(ctx context.Context) ([]Ticket, error)

	// Mutate is a read-modify-write guarded by Ticket.Version.
	Mutate(ctx context.Context, uid, id string, fn func(t *Ticket) error) (Ticket, error)
}

// Watcher delivers full row sets on every change until ctx is done.
type Watcher interface {
	WatchByUser(ctx context.Context, uid string, fn func([]Ticket)) error
	WatchAll(ctx context.Context, fn func([]Ticket)) error
}
