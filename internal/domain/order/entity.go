// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

// ========================================
// Status
// ========================================

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// transitions lists the admin-initiated moves.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ========================================
// Snapshots
// ========================================

type Address struct {
	FullName   string `json:"fullName" firestore:"fullName"`
	Line1      string `json:"line1" firestore:"line1"`
	Line2      string `json:"line2,omitempty" firestore:"line2,omitempty"`
	City       string `json:"city" firestore:"city"`
	State      string `json:"state,omitempty" firestore:"state,omitempty"`
	PostalCode string `json:"postalCode" firestore:"postalCode"`
	Country    string `json:"country" firestore:"country"`
	Phone      string `json:"phone,omitempty" firestore:"phone,omitempty"`
}

func (a Address) normalize() Address {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.Phone = strings.TrimSpace(a.Phone)
	return a
}

func (a Address) IsComplete() bool {
	a = a.normalize()
	return a.FullName != "" && a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// Item is the price/quantity snapshot of a cart line at checkout.
type Item struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	Price     float64 `json:"price" firestore:"price"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
	Brand     string  `json:"brand,omitempty" firestore:"brand,omitempty"`
	Image     string  `json:"image,omitempty" firestore:"image,omitempty"`
}

// ========================================
// Entity
// ========================================

type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	UserID      string `json:"userId"`

	Items     []Item  `json:"items"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	Address   Address `json:"address"`

	Status                Status                 `json:"status"`
	CancellationRequested bool                   `json:"cancellationRequested"`
	CancellationRejected  bool                   `json:"cancellationRejected"`
	Timeline              []common.TimelineEntry `json:"timeline"`

	// Version is bumped on every mutation (optimistic concurrency).
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrNotFound              = errors.New("order: not found")
	ErrConflict              = errors.New("order: conflict")
	ErrInvalidStatus         = errors.New("order: invalid status")
	ErrInvalidTransition     = errors.New("order: invalid status transition")
	ErrNoPendingCancellation = errors.New("order: no pending cancellation request")
	ErrInvalidID             = errors.New("order: invalid id")
	ErrInvalidUserID         = errors.New("order: invalid userId")
)

// Validation messages surfaced to shoppers.
const (
	MsgCartEmpty        = "Cart is empty"
	MsgAddressRequired  = "Shipping address is required"
	MsgNotCancellable   = "Order can no longer be cancelled"
	MsgAlreadyRequested = "Cancellation has already been requested"
)

// ========================================
// Constructors
// ========================================

// New builds an order from a cart snapshot. Subtotal is sum(price*quantity);
// total = subtotal + shipping. The first timeline entry is "processing".
func New(id, orderNumber, userID string, items []Item, shipping float64, addr Address, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, common.Invalid(MsgCartEmpty)
	}
	if !addr.IsComplete() {
		return Order{}, common.Invalid(MsgAddressRequired)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, ErrInvalidID
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Order{}, ErrInvalidUserID
	}
	if shipping < 0 {
		shipping = 0
	}

	lines := make([]Item, 0, len(items))
	sub := decimal.Zero
	count := 0
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" || it.Quantity <= 0 || it.Price < 0 {
			return Order{}, common.Invalid("Invalid cart item %q", it.ProductID)
		}
		sub = sub.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
		lines = append(lines, it)
	}
	sub = sub.Round(2)
	ship := decimal.NewFromFloat(shipping).Round(2)

	now = now.UTC()
	return Order{
		ID:          id,
		OrderNumber: strings.TrimSpace(orderNumber),
		UserID:      userID,
		Items:       lines,
		ItemCount:   count,
		Subtotal:    sub.InexactFloat64(),
		Shipping:    ship.InexactFloat64(),
		Total:       sub.Add(ship).InexactFloat64(),
		Address:     addr.normalize(),
		Status:      StatusProcessing,
		Timeline:    common.AppendTimeline(nil, string(StatusProcessing), now, ""),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ========================================
// Behavior
// ========================================

// TransitionTo moves the order to next and appends one timeline entry.
// Cancelling clears a pending cancellation request.
func (o *Order) TransitionTo(next Status, now time.Time, note string) error {
	if !CanTransition(o.Status, next) {
		return ErrInvalidTransition
	}
	o.Status = next
	if next == StatusCancelled {
		o.CancellationRequested = false
	}
	o.Timeline = common.AppendTimeline(o.Timeline, string(next), now, note)
	o.touch(now)
	return nil
}

// RequestCancellation is the owner's action. Only a processing order can be cancelled.
func (o *Order) RequestCancellation(now time.Time) error {
	if o.Status != StatusProcessing {
		return common.Invalid(MsgNotCancellable)
	}
	if o.CancellationRequested {
		return common.Invalid(MsgAlreadyRequested)
	}
	o.CancellationRequested = true
	o.CancellationRejected = false
	o.touch(now)
	return nil
}

// ApproveCancellation cancels the order on behalf of the owner's request.
func (o *Order) ApproveCancellation(now time.Time) error {
	if !o.CancellationRequested {
		return ErrNoPendingCancellation
	}
	if err := o.TransitionTo(StatusCancelled, now, "cancellation approved"); err != nil {
		return err
	}
	o.CancellationRejected = false
	return nil
}

// RejectCancellation keeps the current status; the timeline is unchanged.
func (o *Order) RejectCancellation(now time.Time) error {
	if !o.CancellationRequested {
		return ErrNoPendingCancellation
	}
	o.CancellationRequested = false
	o.CancellationRejected = true
	o.touch(now)
	return nil
}

// Restock returns productId -> quantity to put back on the shelf.
func (o Order) Restock() map[string]int {
	out := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		out[it.ProductID] += it.Quantity
	}
	return out
}

func (o *Order) touch(now time.Time) {
	o.UpdatedAt = now.UTC()
	o.Version++
}
