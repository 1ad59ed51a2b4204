// internal/application/usecase/admin_dashboard_usecase.go
package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	ticketdom "storefront/internal/domain/ticket"
	userdom "storefront/internal/domain/user"
)

const DefaultLowStockThreshold = 5

// Counts is the dashboard header.
type Counts struct {
	Users    int `json:"users"`
	Products int `json:"products"`
	Orders   int `json:"orders"`
}

// Overview is a one-shot dashboard read.
type Overview struct {
	Counts
	Revenue              float64              `json:"revenue"`
	PendingCancellations int                  `json:"pendingCancellations"`
	OpenTickets          int                  `json:"openTickets"`
	LowStock             []productdom.Product `json:"lowStock"`
}

// AdminDashboardUsecase opens live queries over users / orders / products / tickets.
// Every change re-delivers the full row set.
type AdminDashboardUsecase struct {
	users    userdom.Repository
	orders   orderdom.Repository
	products productdom.Repository
	tickets  ticketdom.Repository
	watcher  ticketdom.Watcher

	lowStock int
}

func NewAdminDashboardUsecase(
	users userdom.Repository,
	orders orderdom.Repository,
	products productdom.Repository,
	tickets ticketdom.Repository,
	watcher ticketdom.Watcher,
) *AdminDashboardUsecase {
	return &AdminDashboardUsecase{
		users:    users,
		orders:   orders,
		products: products,
		tickets:  tickets,
		watcher:  watcher,
		lowStock: DefaultLowStockThreshold,
	}
}

func (u *AdminDashboardUsecase) WithLowStockThreshold(n int) *AdminDashboardUsecase {
	if n >= 0 {
		u.lowStock = n
	}
	return u
}

func (u *AdminDashboardUsecase) SubscribeUsers(ctx context.Context, a Actor, fn func([]userdom.Profile)) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return u.users.WatchAll(ctx, fn)
}

func (u *AdminDashboardUsecase) SubscribeOrders(ctx context.Context, a Actor, fn func([]orderdom.Order)) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return u.orders.WatchAll(ctx, func(rows []orderdom.Order) {
		fn(NewestFirst(rows))
	})
}

func (u *AdminDashboardUsecase) SubscribeProducts(ctx context.Context, a Actor, fn func([]productdom.Product)) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return u.products.Watch(ctx, fn)
}

func (u *AdminDashboardUsecase) SubscribeTickets(ctx context.Context, a Actor, fn func([]ticketdom.Ticket)) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	if u.watcher == nil {
		return ErrInvalidArgument
	}
	return u.watcher.WatchAll(ctx, fn)
}

// SubscribeCounts runs three independent live queries and emits the combined counts
// after any update, once all three have reported at least once.
func (u *AdminDashboardUsecase) SubscribeCounts(ctx context.Context, a Actor, fn func(Counts)) error {
	if err := requireAdmin(a); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		cur  Counts
		seen [3]bool
	)
	update := func(slot int, set func(*Counts)) {
		mu.Lock()
		defer mu.Unlock()
		set(&cur)
		seen[slot] = true
		if seen[0] && seen[1] && seen[2] {
			fn(cur)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return u.users.WatchAll(gctx, func(rows []userdom.Profile) {
			update(0, func(c *Counts) { c.Users = len(rows) })
		})
	})
	g.Go(func() error {
		return u.products.Watch(gctx, func(rows []productdom.Product) {
			update(1, func(c *Counts) { c.Products = len(rows) })
		})
	})
	g.Go(func() error {
		return u.orders.WatchAll(gctx, func(rows []orderdom.Order) {
			update(2, func(c *Counts) { c.Orders = len(rows) })
		})
	})
	return g.Wait()
}

// Overview reads everything once (in parallel) and derives the dashboard stats.
func (u *AdminDashboardUsecase) Overview(ctx context.Context, a Actor) (Overview, error) {
	if err := requireAdmin(a); err != nil {
		return Overview{}, err
	}

	var (
		users    []userdom.Profile
		products []productdom.Product
		orders   []orderdom.Order
		tickets  []ticketdom.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = u.users.List(gctx); return })
	g.Go(func() (err error) { products, err = u.products.List(gctx); return })
	g.Go(func() (err error) { orders, err = u.orders.ListAll(gctx); return })
	g.Go(func() (err error) { tickets, err = u.tickets.ListAll(gctx); return })
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	open := 0
	for _, t := range tickets {
		if t.Status == ticketdom.StatusOpen || t.Status == ticketdom.StatusInProgress {
			open++
		}
	}
	return Overview{
		Counts:               Counts{Users: len(users), Products: len(products), Orders: len(orders)},
		Revenue:              Revenue(orders),
		PendingCancellations: len(PendingCancellations(orders)),
		OpenTickets:          open,
		LowStock:             LowStock(products, u.lowStock),
	}, nil
}

// ------------------------------------------------------------
// Derived views
// ------------------------------------------------------------

func NewestFirst(rows []orderdom.Order) []orderdom.Order {
	out := make([]orderdom.Order, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func PendingCancellations(rows []orderdom.Order) []orderdom.Order {
	out := make([]orderdom.Order, 0)
	for _, o := range rows {
		if o.CancellationRequested && o.Status != orderdom.StatusCancelled {
			out = append(out, o)
		}
	}
	return out
}

// LowStock returns products with stock <= threshold, lowest first.
func LowStock(rows []productdom.Product, threshold int) []productdom.Product {
	out := productdom.Filter{MaxStock: &threshold}.Apply(rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// Revenue sums totals of orders that are not cancelled.
func Revenue(rows []orderdom.Order) float64 {
	sum := decimal.Zero
	for _, o := range rows {
		if o.Status == orderdom.StatusCancelled {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	return sum.Round(2).InexactFloat64()
}
