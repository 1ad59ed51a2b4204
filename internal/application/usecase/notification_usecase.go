package usecase

import (
	"context"
	"log"
	"strings"

	notifdom "storefront/internal/domain/notification"
	prefdom "storefront/internal/domain/preference"
)

// Notifier writes a mailbox entry for a user. Callers treat failures as best-effort.
type Notifier interface {
	Notify(ctx context.Context, uid string, typ notifdom.Type, title, body, refID string) error
}

type NotificationUsecase struct {
	repo  notifdom.Repository
	prefs PreferenceStore
	clock Clock
}

func NewNotificationUsecase(repo notifdom.Repository, prefs PreferenceStore) *NotificationUsecase {
	return &NotificationUsecase{repo: repo, prefs: prefs, clock: systemClock{}}
}

func (u *NotificationUsecase) WithClock(c Clock) *NotificationUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

// Notify writes one notification unless the owner has muted that kind.
func (u *NotificationUsecase) Notify(ctx context.Context, uid string, typ notifdom.Type, title, body, refID string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ErrInvalidArgument
	}
	if u.prefs != nil {
		p, err := u.prefs.LoadPreferences(ctx, UserPreferenceKey(uid))
		if err != nil {
			log.Printf("[notification_usecase] load prefs failed uid=%s err=%v (using defaults)", uid, err)
			p = prefdom.Defaults()
		}
		if !allowed(p.Notifications, typ) {
			return nil
		}
	}

	n, err := notifdom.New(typ, title, body, refID, u.clock.Now())
	if err != nil {
		return err
	}
	_, err = u.repo.Create(ctx, uid, n)
	return err
}

func allowed(p prefdom.NotificationPrefs, typ notifdom.Type) bool {
	switch typ {
	case notifdom.TypeOrder:
		return p.OrderUpdates
	case notifdom.TypeTicket:
		return p.TicketUpdates
	case notifdom.TypePromotion:
		return p.Promotions
	default:
		return true
	}
}

func (u *NotificationUsecase) List(ctx context.Context, a Actor) ([]notifdom.Notification, error) {
	if err := requireUser(a); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, a.UID)
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, a Actor) (int, error) {
	items, err := u.List(ctx, a)
	if err != nil {
		return 0, err
	}
	return notifdom.Unread(items), nil
}

func (u *NotificationUsecase) Subscribe(ctx context.Context, a Actor, fn func([]notifdom.Notification)) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.Watch(ctx, a.UID, fn)
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, a Actor, id string) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.MarkRead(ctx, a.UID, strings.TrimSpace(id))
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, a Actor) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.MarkAllRead(ctx, a.UID)
}

func (u *NotificationUsecase) Delete(ctx context.Context, a Actor, id string) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.Delete(ctx, a.UID, strings.TrimSpace(id))
}

// notifyBestEffort logs instead of failing the caller.
func notifyBestEffort(ctx context.Context, n Notifier, uid string, typ notifdom.Type, title, body, refID string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, uid, typ, title, body, refID); err != nil {
		log.Printf("[notify] failed uid=%s type=%s ref=%s err=%v", uid, typ, refID, err)
	}
}
