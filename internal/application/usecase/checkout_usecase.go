// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	notifdom "storefront/internal/domain/notification"
	orderdom "storefront/internal/domain/order"
)

type CheckoutInput struct {
	// Shipping nil or negative -> default shipping fee.
	Shipping *float64
	Address  orderdom.Address
}

// CheckoutUsecase turns the signed-in user's cart into an order.
type CheckoutUsecase struct {
	carts    cartdom.Repository
	orders   orderdom.Repository
	notifier Notifier
	mailer   OrderMailer
	observer Observer
	clock    Clock

	defaultShipping float64
	newID           func() string
}

func NewCheckoutUsecase(carts cartdom.Repository, orders orderdom.Repository, defaultShipping float64) *CheckoutUsecase {
	return &CheckoutUsecase{
		carts:           carts,
		orders:          orders,
		clock:           systemClock{},
		defaultShipping: defaultShipping,
		newID:           uuid.NewString,
	}
}

func (u *CheckoutUsecase) WithNotifier(n Notifier) *CheckoutUsecase {
	u.notifier = n
	return u
}

func (u *CheckoutUsecase) WithMailer(m OrderMailer) *CheckoutUsecase {
	u.mailer = m
	return u
}

func (u *CheckoutUsecase) WithObserver(o Observer) *CheckoutUsecase {
	u.observer = o
	return u
}

func (u *CheckoutUsecase) WithClock(c Clock) *CheckoutUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

// OrderNumber -> "ORD-" + first 8 hex digits of the id, upper case.
func OrderNumber(id string) string {
	hex := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return "ORD-" + hex
}

// PlaceOrderFromCart snapshots the cart into one order and deletes the cart lines,
// both in one atomic batch. Either both happen or neither.
func (u *CheckoutUsecase) PlaceOrderFromCart(ctx context.Context, a Actor, in CheckoutInput) (orderdom.Order, error) {
	if err := requireUser(a); err != nil {
		return orderdom.Order{}, err
	}

	lines, err := u.carts.List(ctx, a.UID)
	if err != nil {
		return orderdom.Order{}, err
	}
	if len(lines) == 0 {
		return orderdom.Order{}, common.Invalid(orderdom.MsgCartEmpty)
	}

	shipping := u.defaultShipping
	if in.Shipping != nil && *in.Shipping >= 0 {
		shipping = *in.Shipping
	}

	items := make([]orderdom.Item, 0, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		items = append(items, orderdom.Item{
			ProductID: l.ID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Brand:     l.Brand,
			Image:     l.Image,
		})
		ids = append(ids, l.ID)
	}

	id := u.newID()
	o, err := orderdom.New(id, OrderNumber(id), a.UID, items, shipping, in.Address, u.clock.Now())
	if err != nil {
		return orderdom.Order{}, err
	}

	if err := u.orders.PlaceFromCart(ctx, o, ids); err != nil {
		return orderdom.Order{}, fmt.Errorf("place order: %w", err)
	}
	observe(u.observer, EventOrderPlaced)
	log.Printf("[checkout_usecase] placed order=%s number=%s uid=%s items=%d total=%.2f",
		o.ID, o.OrderNumber, o.UserID, o.ItemCount, o.Total)

	notifyBestEffort(ctx, u.notifier, a.UID, notifdom.TypeOrder,
		"Order placed", fmt.Sprintf("Your order %s has been placed.", o.OrderNumber), o.ID)

	if u.mailer != nil && strings.TrimSpace(a.Email) != "" {
		if err := u.mailer.SendOrderConfirmation(ctx, a.Email, o); err != nil {
			log.Printf("[checkout_usecase] confirmation mail failed order=%s err=%v", o.ID, err)
		}
	}
	return o, nil
}
