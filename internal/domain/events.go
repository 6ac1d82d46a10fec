package domain

import "time"

// Event payloads published to the message broker after a commit. Money is
// serialized as a string to keep 2-decimal precision on the wire.

type OrderEvent struct {
	Event        string    `json:"event"`
	OrderID      string    `json:"order_id"`
	UserID       string    `json:"user_id"`
	RestaurantID string    `json:"restaurant_id"`
	ListingID    string    `json:"listing_id"`
	Quantity     int       `json:"quantity"`
	TotalPrice   string    `json:"total_price"`
	Status       string    `json:"status"`
	IsDelivery   bool      `json:"is_delivery"`
	ArtifactURL  string    `json:"artifact_url,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type AchievementCheckEvent struct {
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ContributionEvent struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
