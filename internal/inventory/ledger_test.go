package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

func newListing(createdAt time.Time, lifetime time.Duration, count int) *domain.Listing {
	return &domain.Listing{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		Title:        "surplus box",
		Count:        count,
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(lifetime),
		FreshScore:   100,
	}
}

func TestDecreaseStock(t *testing.T) {
	l := newListing(time.Now(), 24*time.Hour, 5)

	require.NoError(t, DecreaseStock(l, 2))
	assert.Equal(t, 3, l.Count)

	require.NoError(t, DecreaseStock(l, 3))
	assert.Equal(t, 0, l.Count)
}

func TestDecreaseStock_Insufficient(t *testing.T) {
	l := newListing(time.Now(), 24*time.Hour, 2)

	err := DecreaseStock(l, 3)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientStock(err))
	// Quantity untouched on failure.
	assert.Equal(t, 2, l.Count)
}

func TestDecreaseStock_InvalidQuantity(t *testing.T) {
	l := newListing(time.Now(), 24*time.Hour, 2)
	assert.True(t, domain.IsValidation(DecreaseStock(l, 0)))
	assert.True(t, domain.IsValidation(DecreaseStock(l, -1)))
}

func TestRestoreStock_NetChange(t *testing.T) {
	l := newListing(time.Now(), 24*time.Hour, 10)

	require.NoError(t, DecreaseStock(l, 4))
	require.NoError(t, DecreaseStock(l, 3))
	RestoreStock(l, 3)
	RestoreStock(l, 4)

	assert.Equal(t, 10, l.Count)
	assert.GreaterOrEqual(t, l.Count, 0)
}

func TestDecay_FreshnessStep(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 24*time.Hour, 5)

	// 24h lifetime loses (6/24)*100 = 25 points per sweep.
	outcome := Decay(l, created.Add(2*time.Hour))
	assert.Equal(t, DecayUpdated, outcome)
	assert.InDelta(t, 75, l.FreshScore, 0.001)

	outcome = Decay(l, created.Add(4*time.Hour))
	assert.Equal(t, DecayUpdated, outcome)
	assert.InDelta(t, 50, l.FreshScore, 0.001)
}

func TestDecay_FreshnessClampsAtZero(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 8*time.Hour, 5)
	l.FreshScore = 10

	// 8h lifetime wants to subtract 75 points; score clamps at 0.
	outcome := Decay(l, created.Add(1*time.Hour))
	assert.Equal(t, DecayUpdated, outcome)
	assert.Equal(t, 0.0, l.FreshScore)
}

func TestDecay_RemainingLifeInDays(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 72*time.Hour, 5)

	outcome := Decay(l, created.Add(2*time.Hour))
	require.Equal(t, DecayUpdated, outcome)
	// 70h left rounds to 3 days.
	assert.Equal(t, 3, l.ConsumeWithin)
	assert.Equal(t, domain.ShelfLifeDays, l.ConsumeWithinUnit)
}

func TestDecay_RemainingLifeInHours(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 24*time.Hour, 5)

	outcome := Decay(l, created.Add(14*time.Hour+20*time.Minute))
	require.Equal(t, DecayUpdated, outcome)
	// 9h40m left rounds to 10 hours.
	assert.Equal(t, 10, l.ConsumeWithin)
	assert.Equal(t, domain.ShelfLifeHours, l.ConsumeWithinUnit)
}

func TestDecay_ExpiredOutcome(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 24*time.Hour, 5)

	outcome := Decay(l, created.Add(19*time.Hour))
	assert.Equal(t, DecayExpired, outcome)
}

func TestDecay_PastExpiryIsNoop(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newListing(created, 24*time.Hour, 5)

	outcome := Decay(l, created.Add(25*time.Hour))
	assert.Equal(t, DecayNoop, outcome)
	assert.Equal(t, 100.0, l.FreshScore)
}
