// Package repository defines the persistence surface of the fulfillment
// core and its Postgres implementation. All orchestrator mutations go
// through ExecTx so a failed operation leaves no partial state behind.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// Store is the record-level surface available inside a unit of work.
// Listing reads lock the row for the duration of the transaction, so
// checkout and decay never race on the same listing.
type Store interface {
	GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	SaveListingStock(ctx context.Context, id uuid.UUID, count int) error
	SaveListingDecay(ctx context.Context, l *domain.Listing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	// ListActiveListings returns all listings with expires_at after now,
	// locked for the sweep's transaction.
	ListActiveListings(ctx context.Context, now time.Time) ([]domain.Listing, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	CreateOrder(ctx context.Context, o *domain.Order) error
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	SetOrderCompletion(ctx context.Context, id uuid.UUID, imageURL string) error
	// RejectLiveOrders moves every PENDING or ACCEPTED order on the listing
	// to REJECTED and returns how many it touched. Used when a listing is
	// deleted; stock restoration is deliberately skipped because the
	// listing itself is going away.
	RejectLiveOrders(ctx context.Context, listingID uuid.UUID) (int, error)

	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	// RegisterFlashDealUse increments the restaurant's flash-deal counter
	// and clears eligibility once the cap is reached.
	RegisterFlashDealUse(ctx context.Context, id uuid.UUID) error

	CartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// TxStore runs a function against a transactional view of the store.
// If fn returns an error the transaction is rolled back and the error is
// returned unchanged; commit failures surface as a ConflictError when the
// database reports a serialization problem. Calling ExecTx on the store
// passed to fn opens a nested transaction (a savepoint on Postgres), so a
// failed inner unit rolls back only its own writes and the enclosing
// transaction stays usable.
type TxStore interface {
	Store
	ExecTx(ctx context.Context, fn func(TxStore) error) error
}
