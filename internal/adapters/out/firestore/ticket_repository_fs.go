// internal/adapters/out/firestore/ticket_repository_fs.go
package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/common"
	ticketdom "storefront/internal/domain/ticket"
)

// TicketRepositoryFS implements ticket.Repository and ticket.Watcher.
//
// Collection design:
//   - users/{uid}/tickets/{ticketId}
//   - admin reads use the "tickets" collection group
type TicketRepositoryFS struct {
	Client *firestore.Client
}

func NewTicketRepositoryFS(client *firestore.Client) *TicketRepositoryFS {
	return &TicketRepositoryFS{Client: client}
}

func (r *TicketRepositoryFS) col(uid string) *firestore.CollectionRef {
	return userDoc(r.Client, uid).Collection(colTickets)
}

func (r *TicketRepositoryFS) Create(ctx context.Context, t ticketdom.Ticket) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	if strings.TrimSpace(t.UserID) == "" || strings.TrimSpace(t.ID) == "" {
		return ticketdom.ErrInvalidID
	}
	_, err := r.col(t.UserID).Doc(t.ID).Create(ctx, ticketDocFromDomain(t))
	return err
}

func (r *TicketRepositoryFS) GetByID(ctx context.Context, uid, id string) (ticketdom.Ticket, error) {
	if r == nil || r.Client == nil {
		return ticketdom.Ticket{}, errNilClient
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return ticketdom.Ticket{}, ticketdom.ErrNotFound
	}
	snap, err := r.col(uid).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return ticketdom.Ticket{}, ticketdom.ErrNotFound
		}
		return ticketdom.Ticket{}, err
	}
	return decodeTicket(snap)
}

func (r *TicketRepositoryFS) ListByUser(ctx context.Context, uid string) ([]ticketdom.Ticket, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.col(strings.TrimSpace(uid)).OrderBy("createdAt", firestore.Desc), decodeTicket)
}

func (r *TicketRepositoryFS) ListAll(ctx context.Context) ([]ticketdom.Ticket, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.Client.CollectionGroup(colTickets).OrderBy("createdAt", firestore.Desc), decodeTicket)
}

// Mutate is a transactional read-modify-write; the write carries the bumped version
// and a last-update-time precondition so concurrent admin updates cannot drop entries.
func (r *TicketRepositoryFS) Mutate(ctx context.Context, uid, id string, fn func(t *ticketdom.Ticket) error) (ticketdom.Ticket, error) {
	if r == nil || r.Client == nil {
		return ticketdom.Ticket{}, errNilClient
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return ticketdom.Ticket{}, ticketdom.ErrNotFound
	}
	ref := r.col(uid).Doc(id)

	var out ticketdom.Ticket
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ticketdom.ErrNotFound
			}
			return err
		}
		t, err := decodeTicket(snap)
		if err != nil {
			return err
		}
		readVersion := t.Version
		if err := fn(&t); err != nil {
			return err
		}
		out = t
		if t.Version == readVersion {
			return nil
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(t.Status)},
			{Path: "timeline", Value: t.Timeline},
			{Path: "viewedByAdmin", Value: t.ViewedByAdmin},
			{Path: "adminResponse", Value: t.AdminResponse},
			{Path: "version", Value: t.Version},
			{Path: "updatedAt", Value: t.UpdatedAt},
		}, firestore.LastUpdateTime(snap.UpdateTime))
	})
	if err != nil {
		if isConflict(err) {
			return ticketdom.Ticket{}, fmt.Errorf("%w: %v", ticketdom.ErrConflict, err)
		}
		return ticketdom.Ticket{}, err
	}
	return out, nil
}

func (r *TicketRepositoryFS) WatchByUser(ctx context.Context, uid string, fn func([]ticketdom.Ticket)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	return watchQuery(ctx, r.col(strings.TrimSpace(uid)).OrderBy("createdAt", firestore.Desc), decodeTicket, fn)
}

func (r *TicketRepositoryFS) WatchAll(ctx context.Context, fn func([]ticketdom.Ticket)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	return watchQuery(ctx, r.Client.CollectionGroup(colTickets).OrderBy("createdAt", firestore.Desc), decodeTicket, fn)
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type ticketDoc struct {
	UserID        string                 `firestore:"userId"`
	Email         string                 `firestore:"email,omitempty"`
	Subject       string                 `firestore:"subject,omitempty"`
	Message       string                 `firestore:"message"`
	Status        string                 `firestore:"status"`
	Timeline      []common.TimelineEntry `firestore:"timeline"`
	ViewedByAdmin bool                   `firestore:"viewedByAdmin"`
	AdminResponse string                 `firestore:"adminResponse,omitempty"`
	Version       int                    `firestore:"version"`
	CreatedAt     time.Time              `firestore:"createdAt"`
	UpdatedAt     time.Time              `firestore:"updatedAt"`
}

func ticketDocFromDomain(t ticketdom.Ticket) ticketDoc {
	return ticketDoc{
		UserID:        t.UserID,
		Email:         t.Email,
		Subject:       t.Subject,
		Message:       t.Message,
		Status:        string(t.Status),
		Timeline:      t.Timeline,
		ViewedByAdmin: t.ViewedByAdmin,
		AdminResponse: t.AdminResponse,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func decodeTicket(snap *firestore.DocumentSnapshot) (ticketdom.Ticket, error) {
	var d ticketDoc
	if err := snap.DataTo(&d); err != nil {
		return ticketdom.Ticket{}, err
	}
	st, err := ticketdom.ParseStatus(d.Status)
	if err != nil {
		return ticketdom.Ticket{}, fmt.Errorf("%s: %w", snap.Ref.Path, err)
	}
	uid := d.UserID
	if uid == "" && snap.Ref.Parent != nil && snap.Ref.Parent.Parent != nil {
		uid = snap.Ref.Parent.Parent.ID
	}
	return ticketdom.Ticket{
		ID:            snap.Ref.ID,
		UserID:        uid,
		Email:         d.Email,
		Subject:       d.Subject,
		Message:       d.Message,
		Status:        st,
		Timeline:      common.CloneTimeline(d.Timeline),
		ViewedByAdmin: d.ViewedByAdmin,
		AdminResponse: d.AdminResponse,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}
