package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

func seedListing(m *MemStore) domain.Listing {
	now := time.Now()
	l := domain.Listing{
		ID:            uuid.New(),
		RestaurantID:  uuid.New(),
		Title:         "surplus box",
		Count:         5,
		OriginalPrice: decimal.NewFromInt(10),
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
		FreshScore:    100,
	}
	m.PutListing(l)
	return l
}

func TestMemStoreExecTx_CommitsOnSuccess(t *testing.T) {
	m := NewMemStore()
	l := seedListing(m)
	ctx := context.Background()

	err := m.ExecTx(ctx, func(st TxStore) error {
		return st.SaveListingStock(ctx, l.ID, 1)
	})
	require.NoError(t, err)

	got, err := m.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}

func TestMemStoreExecTx_RollsBackOnError(t *testing.T) {
	m := NewMemStore()
	l := seedListing(m)
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.ExecTx(ctx, func(st TxStore) error {
		if err := st.SaveListingStock(ctx, l.ID, 1); err != nil {
			return err
		}
		if err := st.DeleteListing(ctx, l.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both mutations inside the failed transaction are discarded.
	got, err := m.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count)
}

func TestMemStoreExecTx_NestedFailureIsIsolated(t *testing.T) {
	m := NewMemStore()
	l := seedListing(m)
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.ExecTx(ctx, func(st TxStore) error {
		if err := st.SaveListingStock(ctx, l.ID, 2); err != nil {
			return err
		}
		inner := st.ExecTx(ctx, func(nested TxStore) error {
			if err := nested.DeleteListing(ctx, l.ID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, inner, boom)
		// The failed inner unit must not have touched the outer view.
		return st.SaveListingStock(ctx, l.ID, 1)
	})
	require.NoError(t, err)

	got, err := m.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}

func TestMemStore_RejectLiveOrders(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	listingID := uuid.New()

	statuses := []domain.OrderStatus{
		domain.StatusPending, domain.StatusAccepted,
		domain.StatusRejected, domain.StatusCompleted,
	}
	ids := make([]uuid.UUID, len(statuses))
	for i, st := range statuses {
		o := domain.Order{
			ID: uuid.New(), UserID: uuid.New(), ListingID: listingID,
			RestaurantID: uuid.New(), Quantity: 1,
			TotalPrice: decimal.NewFromInt(10), Status: st,
		}
		ids[i] = o.ID
		m.PutOrder(o)
	}

	n, err := m.RejectLiveOrders(ctx, listingID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for i, id := range ids {
		o, err := m.GetOrder(ctx, id)
		require.NoError(t, err)
		switch statuses[i] {
		case domain.StatusPending, domain.StatusAccepted:
			assert.Equal(t, domain.StatusRejected, o.Status)
		default:
			// Rejected and completed orders are left untouched.
			assert.Equal(t, statuses[i], o.Status)
		}
	}
}

func TestMemStore_FlashDealCap(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	r := domain.Restaurant{ID: uuid.New(), OwnerID: uuid.New(), Name: "cap test", FlashDealsAvailable: true}
	m.PutRestaurant(r)

	for i := 1; i <= domain.FlashDealLimit; i++ {
		require.NoError(t, m.RegisterFlashDealUse(ctx, r.ID))
		got, err := m.GetRestaurant(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.FlashDealsCount)
		assert.Equal(t, i < domain.FlashDealLimit, got.FlashDealsAvailable)
	}
}
