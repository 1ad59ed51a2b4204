package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	notifdom "storefront/internal/domain/notification"
	orderdom "storefront/internal/domain/order"
	prefdom "storefront/internal/domain/preference"
	productdom "storefront/internal/domain/product"
	ticketdom "storefront/internal/domain/ticket"
	userdom "storefront/internal/domain/user"
	wishdom "storefront/internal/domain/wishlist"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var errBoom = errors.New("boom")

// ------------------------------------------------------------
// products
// ------------------------------------------------------------

type memProducts struct {
	mu   sync.Mutex
	rows map[string]productdom.Product
}

func newMemProducts(ps ...productdom.Product) *memProducts {
	m := &memProducts{rows: map[string]productdom.Product{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memProducts) GetByID(_ context.Context, id string) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) List(context.Context) ([]productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]productdom.Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = "gen-" + p.Name
	}
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProducts) Save(_ context.Context, p productdom.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.ID] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memProducts) AdjustStock(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return productdom.ErrNotFound
	}
	p.Stock += delta
	m.rows[id] = p
	return nil
}

func (m *memProducts) CountByCategory(_ context.Context, category string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.rows {
		if p.Category == category {
			n++
		}
	}
	return n, nil
}

func (m *memProducts) Watch(ctx context.Context, fn func([]productdom.Product)) error {
	rows, _ := m.List(ctx)
	fn(rows)
	<-ctx.Done()
	return nil
}

func (m *memProducts) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Stock
}

// ------------------------------------------------------------
// user cart
// ------------------------------------------------------------

type memCarts struct {
	mu       sync.Mutex
	products *memProducts
	lines    map[string][]cartdom.CartItem // uid -> lines
	writes   int
	failAdd  error
}

func newMemCarts(products *memProducts) *memCarts {
	return &memCarts{products: products, lines: map[string][]cartdom.CartItem{}}
}

func (m *memCarts) List(_ context.Context, uid string) ([]cartdom.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cartdom.Clone(m.lines[uid]), nil
}

func (m *memCarts) Get(_ context.Context, uid, pid string) (*cartdom.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := cartdom.IndexOf(m.lines[uid], pid); i >= 0 {
		it := m.lines[uid][i]
		return &it, nil
	}
	return nil, nil
}

func (m *memCarts) AddWithStock(ctx context.Context, uid string, item cartdom.CartItem, now time.Time) (cartdom.CartItem, error) {
	if m.failAdd != nil {
		return cartdom.CartItem{}, m.failAdd
	}
	if err := m.products.AdjustStock(ctx, item.ID, -item.Quantity); err != nil {
		return cartdom.CartItem{}, cartdom.ErrProductNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.lines[uid] = cartdom.Merge(m.lines[uid], item, now)
	return m.lines[uid][cartdom.IndexOf(m.lines[uid], item.ID)], nil
}

func (m *memCarts) Set(_ context.Context, uid string, item cartdom.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if i := cartdom.IndexOf(m.lines[uid], item.ID); i >= 0 {
		m.lines[uid][i] = item
		return nil
	}
	m.lines[uid] = append(m.lines[uid], item)
	return nil
}

func (m *memCarts) Delete(_ context.Context, uid, pid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.lines[uid] = cartdom.Remove(m.lines[uid], pid)
	return nil
}

func (m *memCarts) DeleteAll(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	delete(m.lines, uid)
	return nil
}

func (m *memCarts) Watch(ctx context.Context, uid string, fn func([]cartdom.CartItem)) error {
	items, _ := m.List(ctx, uid)
	fn(items)
	<-ctx.Done()
	return nil
}

// ------------------------------------------------------------
// guest store (cart + prefs + avatar)
// ------------------------------------------------------------

type memGuest struct {
	mu      sync.Mutex
	carts   map[string][]cartdom.CartItem
	prefs   map[string]prefdom.Preferences
	avatars map[string]string
}

func newMemGuest() *memGuest {
	return &memGuest{
		carts:   map[string][]cartdom.CartItem{},
		prefs:   map[string]prefdom.Preferences{},
		avatars: map[string]string{},
	}
}

func (m *memGuest) LoadCart(_ context.Context, gid string) ([]cartdom.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cartdom.Clone(m.carts[gid]), nil
}

func (m *memGuest) SaveCart(_ context.Context, gid string, items []cartdom.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[gid] = cartdom.Clone(items)
	return nil
}

func (m *memGuest) ClearCart(_ context.Context, gid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, gid)
	return nil
}

func (m *memGuest) LoadPreferences(_ context.Context, key string) (prefdom.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[key]; ok {
		return p, nil
	}
	return prefdom.Defaults(), nil
}

func (m *memGuest) SavePreferences(_ context.Context, key string, p prefdom.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = p
	return nil
}

func (m *memGuest) GetAvatar(_ context.Context, uid string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.avatars[uid]
	return v, ok, nil
}

func (m *memGuest) PutAvatar(_ context.Context, uid, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avatars[uid] = v
	return nil
}

// ------------------------------------------------------------
// orders
// ------------------------------------------------------------

type memOrders struct {
	mu        sync.Mutex
	carts     *memCarts
	products  *memProducts
	rows      map[string]orderdom.Order // id -> order
	failPlace error
}

func newMemOrders(carts *memCarts, products *memProducts) *memOrders {
	return &memOrders{carts: carts, products: products, rows: map[string]orderdom.Order{}}
}

func (m *memOrders) PlaceFromCart(ctx context.Context, o orderdom.Order, ids []string) error {
	if m.failPlace != nil {
		return m.failPlace
	}
	m.mu.Lock()
	m.rows[o.ID] = o
	m.mu.Unlock()
	for _, id := range ids {
		_ = m.carts.Delete(ctx, o.UserID, id)
	}
	return nil
}

func (m *memOrders) GetByID(_ context.Context, uid, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok || o.UserID != uid {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ListByUser(_ context.Context, uid string) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []orderdom.Order{}
	for _, o := range m.rows {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	return NewestFirst(out), nil
}

func (m *memOrders) ListAll(context.Context) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []orderdom.Order{}
	for _, o := range m.rows {
		out = append(out, o)
	}
	return NewestFirst(out), nil
}

func (m *memOrders) Mutate(ctx context.Context, uid, id string, fn orderdom.Mutation) (orderdom.Order, error) {
	o, err := m.GetByID(ctx, uid, id)
	if err != nil {
		return orderdom.Order{}, err
	}
	restock, err := fn(&o)
	if err != nil {
		return orderdom.Order{}, err
	}
	for pid, q := range restock {
		_ = m.products.AdjustStock(ctx, pid, q)
	}
	m.mu.Lock()
	m.rows[id] = o
	m.mu.Unlock()
	return o, nil
}

func (m *memOrders) WatchByUser(ctx context.Context, uid string, fn func([]orderdom.Order)) error {
	rows, _ := m.ListByUser(ctx, uid)
	fn(rows)
	<-ctx.Done()
	return nil
}

func (m *memOrders) WatchAll(ctx context.Context, fn func([]orderdom.Order)) error {
	rows, _ := m.ListAll(ctx)
	fn(rows)
	<-ctx.Done()
	return nil
}

// ------------------------------------------------------------
// tickets
// ------------------------------------------------------------

type memTickets struct {
	mu      sync.Mutex
	rows    map[string]ticketdom.Ticket
	creates int
}

func newMemTickets() *memTickets { return &memTickets{rows: map[string]ticketdom.Ticket{}} }

func (m *memTickets) Create(_ context.Context, t ticketdom.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.rows[t.ID] = t
	return nil
}

func (m *memTickets) GetByID(_ context.Context, uid, id string) (ticketdom.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != uid {
		return ticketdom.Ticket{}, ticketdom.ErrNotFound
	}
	return t, nil
}

func (m *memTickets) ListByUser(_ context.Context, uid string) ([]ticketdom.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ticketdom.Ticket{}
	for _, t := range m.rows {
		if t.UserID == uid {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTickets) ListAll(context.Context) ([]ticketdom.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ticketdom.Ticket{}
	for _, t := range m.rows {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTickets) Mutate(ctx context.Context, uid, id string, fn func(*ticketdom.Ticket) error) (ticketdom.Ticket, error) {
	t, err := m.GetByID(ctx, uid, id)
	if err != nil {
		return ticketdom.Ticket{}, err
	}
	if err := fn(&t); err != nil {
		return ticketdom.Ticket{}, err
	}
	m.mu.Lock()
	m.rows[id] = t
	m.mu.Unlock()
	return t, nil
}

func (m *memTickets) WatchByUser(ctx context.Context, uid string, fn func([]ticketdom.Ticket)) error {
	rows, _ := m.ListByUser(ctx, uid)
	fn(rows)
	<-ctx.Done()
	return nil
}

func (m *memTickets) WatchAll(ctx context.Context, fn func([]ticketdom.Ticket)) error {
	rows, _ := m.ListAll(ctx)
	fn(rows)
	<-ctx.Done()
	return nil
}

// ------------------------------------------------------------
// notifications
// ------------------------------------------------------------

type memNotifications struct {
	mu   sync.Mutex
	seq  int
	rows map[string][]notifdom.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{rows: map[string][]notifdom.Notification{}}
}

func (m *memNotifications) Create(_ context.Context, uid string, n notifdom.Notification) (notifdom.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	n.ID = "n" + strconv.Itoa(m.seq)
	m.rows[uid] = append(m.rows[uid], n)
	return n, nil
}

func (m *memNotifications) List(_ context.Context, uid string) ([]notifdom.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifdom.Notification{}, m.rows[uid]...), nil
}

func (m *memNotifications) MarkRead(_ context.Context, uid, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows[uid] {
		if m.rows[uid][i].ID == id {
			m.rows[uid][i].Read = true
			return nil
		}
	}
	return notifdom.ErrNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows[uid] {
		m.rows[uid][i].Read = true
	}
	return nil
}

func (m *memNotifications) Delete(_ context.Context, uid, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.rows[uid][:0]
	for _, n := range m.rows[uid] {
		if n.ID != id {
			out = append(out, n)
		}
	}
	m.rows[uid] = out
	return nil
}

func (m *memNotifications) Watch(ctx context.Context, uid string, fn func([]notifdom.Notification)) error {
	rows, _ := m.List(ctx, uid)
	fn(rows)
	<-ctx.Done()
	return nil
}

// ------------------------------------------------------------
// users / categories / wishlist
// ------------------------------------------------------------

type memUsers struct {
	mu        sync.Mutex
	rows      map[string]userdom.Profile
	failWrite error
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]userdom.Profile{}} }

func (m *memUsers) Create(_ context.Context, p userdom.Profile) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.UID] = p
	return nil
}

func (m *memUsers) GetByID(_ context.Context, uid string) (userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (m *memUsers) Update(_ context.Context, uid string, patch userdom.Patch, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[uid]
	if !ok {
		return userdom.ErrNotFound
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		p.PhotoURL = *patch.PhotoURL
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	p.UpdatedAt = now
	m.rows[uid] = p
	return nil
}

func (m *memUsers) List(context.Context) ([]userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []userdom.Profile{}
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, nil
}

func (m *memUsers) WatchAll(ctx context.Context, fn func([]userdom.Profile)) error {
	rows, _ := m.List(ctx)
	fn(rows)
	<-ctx.Done()
	return nil
}

type memCategories struct {
	mu   sync.Mutex
	rows map[string]catdom.Category
}

func newMemCategories(cs ...catdom.Category) *memCategories {
	m := &memCategories{rows: map[string]catdom.Category{}}
	for _, c := range cs {
		m.rows[c.ID] = c
	}
	return m
}

func (m *memCategories) List(context.Context) ([]catdom.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []catdom.Category{}
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategories) GetByID(_ context.Context, id string) (catdom.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return catdom.Category{}, catdom.ErrNotFound
	}
	return c, nil
}

func (m *memCategories) Create(_ context.Context, c catdom.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[c.ID]; ok {
		return catdom.ErrAlreadyExists
	}
	m.rows[c.ID] = c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memWishlist struct {
	mu   sync.Mutex
	rows map[string]map[string]wishdom.Item
}

func newMemWishlist() *memWishlist { return &memWishlist{rows: map[string]map[string]wishdom.Item{}} }

func (m *memWishlist) Put(_ context.Context, uid string, it wishdom.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[uid] == nil {
		m.rows[uid] = map[string]wishdom.Item{}
	}
	m.rows[uid][it.ProductID] = it
	return nil
}

func (m *memWishlist) Remove(_ context.Context, uid, pid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows[uid], pid)
	return nil
}

func (m *memWishlist) List(_ context.Context, uid string) ([]wishdom.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []wishdom.Item{}
	for _, it := range m.rows[uid] {
		out = append(out, it)
	}
	return out, nil
}

func (m *memWishlist) Contains(_ context.Context, uid, pid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[uid][pid]
	return ok, nil
}

// ------------------------------------------------------------
// auth / mail / storage / observer
// ------------------------------------------------------------

type fakeAuth struct {
	created   []string
	deleted   []string
	claims    map[string]bool
	createErr error
	resetErr  error
}

func (f *fakeAuth) CreateUser(_ context.Context, email, _, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	uid := "uid-" + email
	f.created = append(f.created, uid)
	return uid, nil
}

func (f *fakeAuth) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeAuth) EmailVerificationLink(_ context.Context, email string) (string, error) {
	return "https://verify/" + email, nil
}

func (f *fakeAuth) PasswordResetLink(_ context.Context, email string) (string, error) {
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "https://reset/" + email, nil
}

func (f *fakeAuth) SetAdminClaim(_ context.Context, uid string, admin bool) error {
	if f.claims == nil {
		f.claims = map[string]bool{}
	}
	f.claims[uid] = admin
	return nil
}

type fakeMailer struct {
	verify []string
	reset  []string
	orders []string
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, _ string) error {
	f.verify = append(f.verify, to)
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, _ string) error {
	f.reset = append(f.reset, to)
	return nil
}

func (f *fakeMailer) SendOrderConfirmation(_ context.Context, to string, _ orderdom.Order) error {
	f.orders = append(f.orders, to)
	return nil
}

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Put(_ context.Context, name, ct string, data []byte) (string, error) {
	m.objects[name] = data
	m.types[name] = ct
	return "https://storage.test/" + name, nil
}

func (m *memStorage) Get(_ context.Context, name string) ([]byte, string, error) {
	d, ok := m.objects[name]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return d, m.types[name], nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) Observe(e string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[e]++
}

func (o *countingObserver) get(e string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[e]
}
