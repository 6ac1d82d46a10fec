package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// Collaborator contracts. These subsystems live outside the fulfillment
// core; their failures are logged and never fail a committed operation.

// AddressResolver returns a snapshot of the customer's saved address.
// With a nil addressID it resolves the user's primary address.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, userID uuid.UUID, addressID *uuid.UUID) (*domain.AddressSnapshot, error)
}

// NotificationDispatcher delivers order lifecycle notifications to the
// customer-facing notification subsystem.
type NotificationDispatcher interface {
	NotifyOrderCreated(ctx context.Context, o *domain.Order) error
	NotifyOrderAccepted(ctx context.Context, o *domain.Order) error
	NotifyOrderRejected(ctx context.Context, o *domain.Order) error
	NotifyOrderReadyForPickup(ctx context.Context, o *domain.Order, artifactURL string) error
}

// AchievementChecker asks the achievements subsystem to evaluate a
// completed order for new awards.
type AchievementChecker interface {
	CheckAndAward(ctx context.Context, userID, orderID uuid.UUID) error
}

// EnvironmentalLedger records the environmental contribution of a
// completed order.
type EnvironmentalLedger interface {
	RecordContribution(ctx context.Context, orderID uuid.UUID) error
}
