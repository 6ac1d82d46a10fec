package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// MemStore is an in-memory Store used by package tests. ExecTx runs the
// function against a deep copy and swaps it in only on success, mirroring
// the all-or-nothing behavior of the Postgres implementation. Nested
// ExecTx calls clone the clone, which mirrors savepoints: a failed inner
// unit discards its own copy while the enclosing one keeps going.
type MemStore struct {
	mu          sync.Mutex
	listings    map[uuid.UUID]domain.Listing
	orders      map[uuid.UUID]domain.Order
	restaurants map[uuid.UUID]domain.Restaurant
	carts       map[uuid.UUID][]domain.CartLine
	addresses   map[uuid.UUID]domain.AddressSnapshot
}

func NewMemStore() *MemStore {
	return &MemStore{
		listings:    map[uuid.UUID]domain.Listing{},
		orders:      map[uuid.UUID]domain.Order{},
		restaurants: map[uuid.UUID]domain.Restaurant{},
		carts:       map[uuid.UUID][]domain.CartLine{},
		addresses:   map[uuid.UUID]domain.AddressSnapshot{},
	}
}

// Seed helpers.

func (m *MemStore) PutListing(l domain.Listing)       { m.listings[l.ID] = l }
func (m *MemStore) PutOrder(o domain.Order)           { m.orders[o.ID] = o }
func (m *MemStore) PutRestaurant(r domain.Restaurant) { m.restaurants[r.ID] = r }

func (m *MemStore) PutCartLine(cl domain.CartLine) {
	m.carts[cl.UserID] = append(m.carts[cl.UserID], cl)
}

func (m *MemStore) PutAddress(userID uuid.UUID, a domain.AddressSnapshot) {
	m.addresses[userID] = a
}

func (m *MemStore) clone() *MemStore {
	c := NewMemStore()
	for k, v := range m.listings {
		if v.PickUpPrice != nil {
			p := *v.PickUpPrice
			v.PickUpPrice = &p
		}
		if v.DeliveryPrice != nil {
			p := *v.DeliveryPrice
			v.DeliveryPrice = &p
		}
		c.listings[k] = v
	}
	for k, v := range m.orders {
		if v.CompletionImageURL != nil {
			u := *v.CompletionImageURL
			v.CompletionImageURL = &u
		}
		c.orders[k] = v
	}
	for k, v := range m.restaurants {
		c.restaurants[k] = v
	}
	for k, v := range m.carts {
		lines := make([]domain.CartLine, len(v))
		copy(lines, v)
		c.carts[k] = lines
	}
	for k, v := range m.addresses {
		c.addresses[k] = v
	}
	return c
}

func (m *MemStore) ExecTx(ctx context.Context, fn func(TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.clone()
	if err := fn(c); err != nil {
		return err
	}
	m.listings = c.listings
	m.orders = c.orders
	m.restaurants = c.restaurants
	m.carts = c.carts
	m.addresses = c.addresses
	return nil
}

func (m *MemStore) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, domain.NewNotFound("listing", id.String())
	}
	return &l, nil
}

func (m *MemStore) SaveListingStock(ctx context.Context, id uuid.UUID, count int) error {
	l, ok := m.listings[id]
	if !ok {
		return domain.NewNotFound("listing", id.String())
	}
	l.Count = count
	m.listings[id] = l
	return nil
}

func (m *MemStore) SaveListingDecay(ctx context.Context, in *domain.Listing) error {
	l, ok := m.listings[in.ID]
	if !ok {
		return domain.NewNotFound("listing", in.ID.String())
	}
	l.FreshScore = in.FreshScore
	l.ConsumeWithin = in.ConsumeWithin
	l.ConsumeWithinUnit = in.ConsumeWithinUnit
	m.listings[in.ID] = l
	return nil
}

func (m *MemStore) DeleteListing(ctx context.Context, id uuid.UUID) error {
	delete(m.listings, id)
	return nil
}

func (m *MemStore) ListActiveListings(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range m.listings {
		if l.ExpiresAt.After(now) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (m *MemStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.NewNotFound("order", id.String())
	}
	return &o, nil
}

func (m *MemStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	m.orders[o.ID] = *o
	return nil
}

func (m *MemStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.NewNotFound("order", id.String())
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *MemStore) SetOrderCompletion(ctx context.Context, id uuid.UUID, imageURL string) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.NewNotFound("order", id.String())
	}
	o.CompletionImageURL = &imageURL
	o.Status = domain.StatusCompleted
	m.orders[id] = o
	return nil
}

func (m *MemStore) RejectLiveOrders(ctx context.Context, listingID uuid.UUID) (int, error) {
	n := 0
	for id, o := range m.orders {
		if o.ListingID == listingID &&
			(o.Status == domain.StatusPending || o.Status == domain.StatusAccepted) {
			o.Status = domain.StatusRejected
			m.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (m *MemStore) GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return nil, domain.NewNotFound("restaurant", id.String())
	}
	return &r, nil
}

func (m *MemStore) RegisterFlashDealUse(ctx context.Context, id uuid.UUID) error {
	r, ok := m.restaurants[id]
	if !ok {
		return domain.NewNotFound("restaurant", id.String())
	}
	r.FlashDealsCount++
	r.FlashDealsAvailable = r.FlashDealsCount < domain.FlashDealLimit
	m.restaurants[id] = r
	return nil
}

func (m *MemStore) CartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, len(m.carts[userID]))
	copy(lines, m.carts[userID])
	return lines, nil
}

func (m *MemStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	delete(m.carts, userID)
	return nil
}

// ResolveAddress satisfies fulfillment.AddressResolver.
func (m *MemStore) ResolveAddress(ctx context.Context, userID uuid.UUID, addressID *uuid.UUID) (*domain.AddressSnapshot, error) {
	a, ok := m.addresses[userID]
	if !ok {
		return nil, domain.NewNotFound("address", userID.String())
	}
	return &a, nil
}
