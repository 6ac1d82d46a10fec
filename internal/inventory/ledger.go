// Package inventory owns listing stock and freshness mutations. The
// functions here mutate the in-memory listing only; committing the change
// is the caller's responsibility.
package inventory

import (
	"math"
	"time"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// decayWindowHours is the slice of total lifetime each sweep charges
// against the freshness score.
const decayWindowHours = 6.0

// deleteThresholdHours is the remaining life at which a listing is removed
// rather than decayed further.
const deleteThresholdHours = 6.0

// hoursAsDaysThreshold is the remaining life below which the listing's
// shelf life is reported in hours instead of days.
const hoursAsDaysThreshold = 12.0

// DecreaseStock reserves qty units from the listing.
func DecreaseStock(l *domain.Listing, qty int) error {
	if qty <= 0 {
		return domain.NewValidation("quantity must be positive")
	}
	if l.Count < qty {
		return domain.NewInsufficientStock(l.ID.String(), qty, l.Count)
	}
	l.Count -= qty
	return nil
}

// RestoreStock reverses a prior successful decrease.
func RestoreStock(l *domain.Listing, qty int) {
	l.Count += qty
}

// DecayOutcome tells the caller what to persist after a decay step.
type DecayOutcome int

const (
	// DecayNoop: the listing is already past its expiry; leave it for
	// explicit deletion elsewhere.
	DecayNoop DecayOutcome = iota
	// DecayUpdated: freshness and remaining life changed; persist them.
	DecayUpdated
	// DecayExpired: remaining life is at or under the deletion threshold;
	// the caller must delete the listing and reject its live orders.
	DecayExpired
)

// Decay applies one scheduled freshness step to the listing. It never
// fails; an exhausted freshness score clamps at zero.
func Decay(l *domain.Listing, now time.Time) DecayOutcome {
	if now.After(l.ExpiresAt) {
		return DecayNoop
	}

	if lifetime := l.ExpiresAt.Sub(l.CreatedAt).Hours(); lifetime > 0 {
		l.FreshScore = math.Max(0, l.FreshScore-(decayWindowHours/lifetime)*100)
	}

	hoursLeft := l.ExpiresAt.Sub(now).Hours()
	switch {
	case hoursLeft <= deleteThresholdHours:
		return DecayExpired
	case hoursLeft < hoursAsDaysThreshold:
		l.ConsumeWithin = int(math.Round(hoursLeft))
		l.ConsumeWithinUnit = domain.ShelfLifeHours
	default:
		l.ConsumeWithin = int(math.Round(hoursLeft / 24))
		l.ConsumeWithinUnit = domain.ShelfLifeDays
	}
	return DecayUpdated
}
