// internal/application/usecase/ticket_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain/common"
	notifdom "storefront/internal/domain/notification"
	ticketdom "storefront/internal/domain/ticket"
)

type TicketUsecase struct {
	repo     ticketdom.Repository
	watcher  ticketdom.Watcher
	notifier Notifier
	observer Observer
	clock    Clock
	newID    func() string
}

func NewTicketUsecase(repo ticketdom.Repository, watcher ticketdom.Watcher) *TicketUsecase {
	return &TicketUsecase{
		repo:    repo,
		watcher: watcher,
		clock:   systemClock{},
		newID:   uuid.NewString,
	}
}

func (u *TicketUsecase) WithNotifier(n Notifier) *TicketUsecase {
	u.notifier = n
	return u
}

func (u *TicketUsecase) WithObserver(o Observer) *TicketUsecase {
	u.observer = o
	return u
}

func (u *TicketUsecase) WithClock(c Clock) *TicketUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

// SubmitTicket requires a signed-in user with a verified email.
// Validation happens before any write.
func (u *TicketUsecase) SubmitTicket(ctx context.Context, a Actor, subject, message string) (ticketdom.Ticket, error) {
	if err := requireUser(a); err != nil {
		return ticketdom.Ticket{}, err
	}
	if !a.EmailVerified {
		return ticketdom.Ticket{}, common.Invalid(ticketdom.MsgNotVerified)
	}

	t, err := ticketdom.New(u.newID(), a.UID, a.Email, subject, message, u.clock.Now())
	if err != nil {
		return ticketdom.Ticket{}, err
	}
	if err := u.repo.Create(ctx, t); err != nil {
		return ticketdom.Ticket{}, err
	}
	observe(u.observer, EventTicketSubmitted)
	log.Printf("[ticket_usecase] submitted ticket=%s uid=%s", t.ID, t.UserID)
	return t, nil
}

func (u *TicketUsecase) ListMyTickets(ctx context.Context, a Actor) ([]ticketdom.Ticket, error) {
	if err := requireUser(a); err != nil {
		return nil, err
	}
	return u.repo.ListByUser(ctx, a.UID)
}

func (u *TicketUsecase) GetMyTicket(ctx context.Context, a Actor, id string) (ticketdom.Ticket, error) {
	if err := requireUser(a); err != nil {
		return ticketdom.Ticket{}, err
	}
	return u.repo.GetByID(ctx, a.UID, strings.TrimSpace(id))
}

func (u *TicketUsecase) SubscribeMyTickets(ctx context.Context, a Actor, fn func([]ticketdom.Ticket)) error {
	if err := requireUser(a); err != nil {
		return err
	}
	if u.watcher == nil {
		return ErrInvalidArgument
	}
	return u.watcher.WatchByUser(ctx, a.UID, fn)
}

// ------------------------------------------------------------
// Admin
// ------------------------------------------------------------

func (u *TicketUsecase) ListAllTickets(ctx context.Context, a Actor) ([]ticketdom.Ticket, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	return u.repo.ListAll(ctx)
}

// UpdateTicketStatus appends exactly one timeline entry (version-checked write).
func (u *TicketUsecase) UpdateTicketStatus(ctx context.Context, a Actor, uid, id, status, note string) (ticketdom.Ticket, error) {
	if err := requireAdmin(a); err != nil {
		return ticketdom.Ticket{}, err
	}
	next, err := ticketdom.ParseStatus(status)
	if err != nil {
		return ticketdom.Ticket{}, err
	}
	now := u.clock.Now()

	t, err := u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(t *ticketdom.Ticket) error {
		return t.UpdateStatus(next, note, now)
	})
	if err != nil {
		return ticketdom.Ticket{}, err
	}
	observe(u.observer, EventTicketTransition)
	notifyBestEffort(ctx, u.notifier, t.UserID, notifdom.TypeTicket,
		"Ticket "+string(t.Status), fmt.Sprintf("Your support ticket is now %s.", t.Status), t.ID)
	return t, nil
}

func (u *TicketUsecase) MarkTicketViewed(ctx context.Context, a Actor, uid, id string) (ticketdom.Ticket, error) {
	if err := requireAdmin(a); err != nil {
		return ticketdom.Ticket{}, err
	}
	now := u.clock.Now()
	return u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(t *ticketdom.Ticket) error {
		t.MarkViewed(now)
		return nil
	})
}

func (u *TicketUsecase) RespondToTicket(ctx context.Context, a Actor, uid, id, response string) (ticketdom.Ticket, error) {
	if err := requireAdmin(a); err != nil {
		return ticketdom.Ticket{}, err
	}
	now := u.clock.Now()
	t, err := u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(t *ticketdom.Ticket) error {
		return t.Respond(response, now)
	})
	if err != nil {
		return ticketdom.Ticket{}, err
	}
	notifyBestEffort(ctx, u.notifier, t.UserID, notifdom.TypeTicket,
		"New reply on your ticket", t.AdminResponse, t.ID)
	return t, nil
}
