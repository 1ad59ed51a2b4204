// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	notifdom "storefront/internal/domain/notification"
	orderdom "storefront/internal/domain/order"
)

// OrderUsecase covers the order owner's reads / cancellation request and the admin
// status + cancellation decisions.
type OrderUsecase struct {
	repo     orderdom.Repository
	notifier Notifier
	observer Observer
	clock    Clock
}

func NewOrderUsecase(repo orderdom.Repository) *OrderUsecase {
	return &OrderUsecase{repo: repo, clock: systemClock{}}
}

func (u *OrderUsecase) WithNotifier(n Notifier) *OrderUsecase {
	u.notifier = n
	return u
}

func (u *OrderUsecase) WithObserver(o Observer) *OrderUsecase {
	u.observer = o
	return u
}

func (u *OrderUsecase) WithClock(c Clock) *OrderUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

// ------------------------------------------------------------
// Owner
// ------------------------------------------------------------

func (u *OrderUsecase) ListMyOrders(ctx context.Context, a Actor) ([]orderdom.Order, error) {
	if err := requireUser(a); err != nil {
		return nil, err
	}
	return u.repo.ListByUser(ctx, a.UID)
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, a Actor, id string) (orderdom.Order, error) {
	if err := requireUser(a); err != nil {
		return orderdom.Order{}, err
	}
	return u.repo.GetByID(ctx, a.UID, strings.TrimSpace(id))
}

func (u *OrderUsecase) SubscribeMyOrders(ctx context.Context, a Actor, fn func([]orderdom.Order)) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.WatchByUser(ctx, a.UID, fn)
}

// RequestCancellation sets cancellationRequested on a processing order.
func (u *OrderUsecase) RequestCancellation(ctx context.Context, a Actor, id string) (orderdom.Order, error) {
	if err := requireUser(a); err != nil {
		return orderdom.Order{}, err
	}
	now := u.clock.Now()
	return u.repo.Mutate(ctx, a.UID, strings.TrimSpace(id), func(o *orderdom.Order) (map[string]int, error) {
		return nil, o.RequestCancellation(now)
	})
}

// ------------------------------------------------------------
// Admin
// ------------------------------------------------------------

func (u *OrderUsecase) ListAllOrders(ctx context.Context, a Actor) ([]orderdom.Order, error) {
	if err := requireAdmin(a); err != nil {
		return nil, err
	}
	return u.repo.ListAll(ctx)
}

// UpdateOrderStatus moves the order along processing -> shipped -> delivered
// (or to cancelled). Cancelling puts the items back on the shelf.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, a Actor, uid, id, status, note string) (orderdom.Order, error) {
	if err := requireAdmin(a); err != nil {
		return orderdom.Order{}, err
	}
	next, err := orderdom.ParseStatus(status)
	if err != nil {
		return orderdom.Order{}, err
	}
	now := u.clock.Now()

	o, err := u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(o *orderdom.Order) (map[string]int, error) {
		if err := o.TransitionTo(next, now, note); err != nil {
			return nil, err
		}
		if next == orderdom.StatusCancelled {
			return o.Restock(), nil
		}
		return nil, nil
	})
	if err != nil {
		return orderdom.Order{}, err
	}

	observe(u.observer, EventOrderTransition)
	log.Printf("[order_usecase] status order=%s uid=%s -> %s", o.ID, o.UserID, o.Status)
	notifyBestEffort(ctx, u.notifier, o.UserID, notifdom.TypeOrder,
		"Order "+string(o.Status), fmt.Sprintf("Order %s is now %s.", o.OrderNumber, o.Status), o.ID)
	return o, nil
}

// ApproveCancellation cancels the order, clears the request and restores stock
// in one transaction.
func (u *OrderUsecase) ApproveCancellation(ctx context.Context, a Actor, uid, id string) (orderdom.Order, error) {
	if err := requireAdmin(a); err != nil {
		return orderdom.Order{}, err
	}
	now := u.clock.Now()

	o, err := u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(o *orderdom.Order) (map[string]int, error) {
		if err := o.ApproveCancellation(now); err != nil {
			return nil, err
		}
		return o.Restock(), nil
	})
	if err != nil {
		return orderdom.Order{}, err
	}

	observe(u.observer, EventOrderTransition)
	notifyBestEffort(ctx, u.notifier, o.UserID, notifdom.TypeOrder,
		"Cancellation approved", fmt.Sprintf("Order %s has been cancelled.", o.OrderNumber), o.ID)
	return o, nil
}

// RejectCancellation keeps the status; the timeline is not touched.
func (u *OrderUsecase) RejectCancellation(ctx context.Context, a Actor, uid, id string) (orderdom.Order, error) {
	if err := requireAdmin(a); err != nil {
		return orderdom.Order{}, err
	}
	now := u.clock.Now()

	o, err := u.repo.Mutate(ctx, strings.TrimSpace(uid), strings.TrimSpace(id), func(o *orderdom.Order) (map[string]int, error) {
		return nil, o.RejectCancellation(now)
	})
	if err != nil {
		return orderdom.Order{}, err
	}

	notifyBestEffort(ctx, u.notifier, o.UserID, notifdom.TypeOrder,
		"Cancellation rejected", fmt.Sprintf("The cancellation request for order %s was declined.", o.OrderNumber), o.ID)
	return o, nil
}
