// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// StockMessage is shown when the requested quantity exceeds the shelf.
func StockMessage(stock int) string {
	if stock < 0 {
		stock = 0
	}
	return fmt.Sprintf("Only %d item(s) available in stock", stock)
}

// CartUsecase coordinates the guest cart (key-value store) and the user cart
// (users/{uid}/cart) against product stock.
type CartUsecase struct {
	carts    cartdom.Repository
	guests   GuestCartStore
	products ProductReader
	observer Observer
	clock    Clock

	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]func([]cartdom.CartItem) // guestID -> listeners
	locks     map[string]*guestLock                       // guestID -> read-modify-write lock
}

type guestLock struct {
	mu   sync.Mutex
	refs int
}

func NewCartUsecase(carts cartdom.Repository, guests GuestCartStore, products ProductReader) *CartUsecase {
	return &CartUsecase{
		carts:     carts,
		guests:    guests,
		products:  products,
		clock:     systemClock{},
		listeners: map[string]map[int]func([]cartdom.CartItem){},
		locks:     map[string]*guestLock{},
	}
}

func (u *CartUsecase) WithClock(c Clock) *CartUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

func (u *CartUsecase) WithObserver(o Observer) *CartUsecase {
	u.observer = o
	return u
}

// ============================================================
// Queries
// ============================================================

func (u *CartUsecase) GetCart(ctx context.Context, a Actor) ([]cartdom.CartItem, error) {
	if a.Authenticated() {
		return u.carts.List(ctx, a.UID)
	}
	gid, err := guestID(a)
	if err != nil {
		return nil, err
	}
	return u.guests.LoadCart(ctx, gid)
}

func (u *CartUsecase) CartSummary(ctx context.Context, a Actor) (cartdom.Summary, error) {
	items, err := u.GetCart(ctx, a)
	if err != nil {
		return cartdom.Summary{}, err
	}
	return cartdom.Summarize(items), nil
}

// SubscribeCart delivers the current cart, then the full cart again after every change,
// until ctx is done.
//   - guest: local listener registry, notified synchronously after each guest write.
//     The first load, registration and first emission run under the guest lock.
//   - user : Firestore snapshot listener
func (u *CartUsecase) SubscribeCart(ctx context.Context, a Actor, fn func([]cartdom.CartItem)) error {
	if fn == nil {
		return ErrInvalidArgument
	}
	if a.Authenticated() {
		return u.carts.Watch(ctx, a.UID, fn)
	}
	gid, err := guestID(a)
	if err != nil {
		return err
	}

	unlock := u.lockGuest(gid)
	items, err := u.guests.LoadCart(ctx, gid)
	if err != nil {
		unlock()
		return err
	}
	id := u.addListener(gid, fn)
	fn(items)
	unlock()
	defer u.removeListener(gid, id)

	<-ctx.Done()
	return nil
}

// ============================================================
// Commands
// ============================================================

// AddToCart adds qty units of productID.
//   - guest: existing guest quantity + qty must fit in stock; merged in the key-value store
//   - user : qty must fit in stock; line increment + stock decrement in one transaction
//
// Guest writes are serialized per guest id.
// The user stock check runs before the write, not inside the transaction.
func (u *CartUsecase) AddToCart(ctx context.Context, a Actor, productID string, qty int) (cartdom.CartItem, error) {
	if qty < 1 {
		return cartdom.CartItem{}, common.Invalid("Quantity must be at least 1")
	}
	p, err := u.products.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return cartdom.CartItem{}, err
	}

	if a.Authenticated() {
		return u.addForUser(ctx, a.UID, p, qty)
	}

	gid, err := guestID(a)
	if err != nil {
		return cartdom.CartItem{}, err
	}
	defer u.lockGuest(gid)()

	items, err := u.guests.LoadCart(ctx, gid)
	if err != nil {
		return cartdom.CartItem{}, err
	}
	if cartdom.QuantityOf(items, p.ID)+qty > p.Stock {
		observe(u.observer, EventStockRejected)
		return cartdom.CartItem{}, common.Invalid("%s", StockMessage(p.Stock))
	}

	items = cartdom.Merge(items, lineFromProduct(p, qty), u.clock.Now())
	if err := u.saveGuest(ctx, gid, items); err != nil {
		return cartdom.CartItem{}, err
	}
	observe(u.observer, EventCartAdd)
	return items[cartdom.IndexOf(items, p.ID)], nil
}

func (u *CartUsecase) addForUser(ctx context.Context, uid string, p productdom.Product, qty int) (cartdom.CartItem, error) {
	// p.Stock was read outside the transaction below. Two devices adding the same
	// product near the limit can both pass this check and drive stock negative.
	if qty > p.Stock {
		observe(u.observer, EventStockRejected)
		return cartdom.CartItem{}, common.Invalid("%s", StockMessage(p.Stock))
	}
	line, err := u.carts.AddWithStock(ctx, uid, lineFromProduct(p, qty), u.clock.Now())
	if err != nil {
		return cartdom.CartItem{}, err
	}
	observe(u.observer, EventCartAdd)
	return line, nil
}

// SetCartItemQuantity overwrites the quantity of a line. qty <= 0 removes it.
// A line that is not in the cart stays absent.
//
// The shelf is never adjusted here:
//   - guest: qty is checked against the shelf stock
//   - user : qty is checked against the shelf plus the units this line already
//     reserved. Lowering the line (or removing it) does not put units back on the
//     shelf; they stay off sale until an admin corrects stock.
func (u *CartUsecase) SetCartItemQuantity(ctx context.Context, a Actor, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return cartdom.ErrInvalidItem
	}
	if qty <= 0 {
		return u.RemoveFromCart(ctx, a, productID)
	}

	p, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if a.Authenticated() {
		line, err := u.carts.Get(ctx, a.UID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			return nil
		}
		if limit := p.Stock + line.Quantity; qty > limit {
			observe(u.observer, EventStockRejected)
			return common.Invalid("%s", StockMessage(limit))
		}
		line.Quantity = qty
		line.UpdatedAt = u.clock.Now()
		return u.carts.Set(ctx, a.UID, *line)
	}

	if qty > p.Stock {
		observe(u.observer, EventStockRejected)
		return common.Invalid("%s", StockMessage(p.Stock))
	}
	gid, err := guestID(a)
	if err != nil {
		return err
	}
	defer u.lockGuest(gid)()

	items, err := u.guests.LoadCart(ctx, gid)
	if err != nil {
		return err
	}
	return u.saveGuest(ctx, gid, cartdom.SetQuantity(items, productID, qty, u.clock.Now()))
}

func (u *CartUsecase) RemoveFromCart(ctx context.Context, a Actor, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return cartdom.ErrInvalidItem
	}
	if a.Authenticated() {
		return u.carts.Delete(ctx, a.UID, productID)
	}
	gid, err := guestID(a)
	if err != nil {
		return err
	}
	defer u.lockGuest(gid)()

	items, err := u.guests.LoadCart(ctx, gid)
	if err != nil {
		return err
	}
	return u.saveGuest(ctx, gid, cartdom.Remove(items, productID))
}

func (u *CartUsecase) ClearCart(ctx context.Context, a Actor) error {
	if a.Authenticated() {
		return u.carts.DeleteAll(ctx, a.UID)
	}
	gid, err := guestID(a)
	if err != nil {
		return err
	}
	defer u.lockGuest(gid)()

	if err := u.guests.ClearCart(ctx, gid); err != nil {
		return err
	}
	u.notify(gid, []cartdom.CartItem{})
	return nil
}

// ============================================================
// Guest -> user migration
// ============================================================

type SkippedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

type MigrationResult struct {
	Migrated int           `json:"migrated"`
	Skipped  []SkippedLine `json:"skipped"`
}

// MigrateGuestCartToUserCart replays every guest line, in order, through the user add path
// (so quantities merge with existing user lines) and then clears the guest cart.
// No-op when the actor is not signed in or carries no guest id.
//
// Lines rejected by the stock check (or whose product is gone) are skipped and reported.
// On any other error the lines not yet replayed are written back to the guest cart.
func (u *CartUsecase) MigrateGuestCartToUserCart(ctx context.Context, a Actor) (MigrationResult, error) {
	res := MigrationResult{Skipped: []SkippedLine{}}
	if !a.Authenticated() || strings.TrimSpace(a.GuestID) == "" {
		return res, nil
	}
	gid := strings.TrimSpace(a.GuestID)
	defer u.lockGuest(gid)()

	items, err := u.guests.LoadCart(ctx, gid)
	if err != nil {
		return res, err
	}
	if len(items) == 0 {
		return res, nil
	}

	for i, it := range items {
		p, err := u.products.GetByID(ctx, it.ID)
		if errors.Is(err, productdom.ErrNotFound) {
			res.Skipped = append(res.Skipped, SkippedLine{ProductID: it.ID, Quantity: it.Quantity, Reason: "product not found"})
			continue
		}
		if err == nil {
			_, err = u.addForUser(ctx, a.UID, p, it.Quantity)
		}
		if err != nil {
			if common.IsValidation(err) {
				res.Skipped = append(res.Skipped, SkippedLine{ProductID: it.ID, Quantity: it.Quantity, Reason: err.Error()})
				continue
			}
			if serr := u.saveGuest(ctx, gid, items[i:]); serr != nil {
				log.Printf("[cart_usecase] migrate: restore guest cart failed guest=%s err=%v", gid, serr)
			}
			return res, fmt.Errorf("migrate guest cart: %w", err)
		}
		res.Migrated++
	}

	if err := u.guests.ClearCart(ctx, gid); err != nil {
		return res, err
	}
	u.notify(gid, []cartdom.CartItem{})
	observe(u.observer, EventCartMigrated)
	log.Printf("[cart_usecase] migrate: uid=%s guest=%s migrated=%d skipped=%d", a.UID, gid, res.Migrated, len(res.Skipped))
	return res, nil
}

// ============================================================
// Helpers
// ============================================================

func (u *CartUsecase) saveGuest(ctx context.Context, gid string, items []cartdom.CartItem) error {
	if err := u.guests.SaveCart(ctx, gid, items); err != nil {
		return err
	}
	u.notify(gid, items)
	return nil
}

// lockGuest serializes guest-cart read-modify-write cycles of one guest id within
// this process. The returned func releases the lock.
func (u *CartUsecase) lockGuest(gid string) func() {
	u.mu.Lock()
	l := u.locks[gid]
	if l == nil {
		l = &guestLock{}
		u.locks[gid] = l
	}
	l.refs++
	u.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, gid)
		}
		u.mu.Unlock()
	}
}

func (u *CartUsecase) addListener(gid string, fn func([]cartdom.CartItem)) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.nextID++
	if u.listeners[gid] == nil {
		u.listeners[gid] = map[int]func([]cartdom.CartItem){}
	}
	u.listeners[gid][u.nextID] = fn
	return u.nextID
}

func (u *CartUsecase) removeListener(gid string, id int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.listeners[gid], id)
	if len(u.listeners[gid]) == 0 {
		delete(u.listeners, gid)
	}
}

// notify calls the guest listeners outside the lock.
func (u *CartUsecase) notify(gid string, items []cartdom.CartItem) {
	u.mu.Lock()
	fns := make([]func([]cartdom.CartItem), 0, len(u.listeners[gid]))
	for _, fn := range u.listeners[gid] {
		fns = append(fns, fn)
	}
	u.mu.Unlock()

	for _, fn := range fns {
		fn(cartdom.Clone(items))
	}
}

func guestID(a Actor) (string, error) {
	gid := strings.TrimSpace(a.GuestID)
	if gid == "" {
		return "", ErrNoCartOwner
	}
	return gid, nil
}

// lineFromProduct snapshots the product into a cart line.
func lineFromProduct(p productdom.Product, qty int) cartdom.CartItem {
	inStock := p.InStock()
	it := cartdom.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.FinalPrice(),
		Quantity: qty,
		Brand:    p.Brand,
		InStock:  &inStock,
		Image:    p.PrimaryImage(),
	}
	if p.DiscountPercentage > 0 {
		orig := p.Price
		it.OriginalPrice = &orig
	}
	return it
}
