package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// Routing keys on the fulfillment events exchange.
const (
	keyOrderCreated  = "order.created"
	keyOrderAccepted = "order.accepted"
	keyOrderRejected = "order.rejected"
	keyOrderReady    = "order.ready_for_pickup"
	keyAchievement   = "achievement.check"
	keyContribution  = "environment.contribution"
)

// Dispatcher publishes collaborator events. It satisfies the fulfillment
// NotificationDispatcher, AchievementChecker and EnvironmentalLedger
// contracts.
type Dispatcher struct {
	client *Client
}

func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) NotifyOrderCreated(ctx context.Context, o *domain.Order) error {
	return d.publishOrder(ctx, keyOrderCreated, o, "")
}

func (d *Dispatcher) NotifyOrderAccepted(ctx context.Context, o *domain.Order) error {
	return d.publishOrder(ctx, keyOrderAccepted, o, "")
}

func (d *Dispatcher) NotifyOrderRejected(ctx context.Context, o *domain.Order) error {
	return d.publishOrder(ctx, keyOrderRejected, o, "")
}

func (d *Dispatcher) NotifyOrderReadyForPickup(ctx context.Context, o *domain.Order, artifactURL string) error {
	return d.publishOrder(ctx, keyOrderReady, o, artifactURL)
}

func (d *Dispatcher) CheckAndAward(ctx context.Context, userID, orderID uuid.UUID) error {
	return d.publish(ctx, keyAchievement, domain.AchievementCheckEvent{
		UserID:     userID.String(),
		OrderID:    orderID.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) RecordContribution(ctx context.Context, orderID uuid.UUID) error {
	return d.publish(ctx, keyContribution, domain.ContributionEvent{
		OrderID:    orderID.String(),
		OccurredAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) publishOrder(ctx context.Context, key string, o *domain.Order, artifactURL string) error {
	return d.publish(ctx, key, domain.OrderEvent{
		Event:        key,
		OrderID:      o.ID.String(),
		UserID:       o.UserID.String(),
		RestaurantID: o.RestaurantID.String(),
		ListingID:    o.ListingID.String(),
		Quantity:     o.Quantity,
		TotalPrice:   o.TotalPrice.StringFixed(2),
		Status:       string(o.Status),
		IsDelivery:   o.IsDelivery,
		ArtifactURL:  artifactURL,
		OccurredAt:   time.Now().UTC(),
	})
}

func (d *Dispatcher) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", key, err)
	}
	if err := d.client.Publish(ctx, key, body); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
