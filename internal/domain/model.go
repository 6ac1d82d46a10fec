package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShelfLifeUnit is the unit of a listing's remaining-life figure.
type ShelfLifeUnit string

const (
	ShelfLifeHours ShelfLifeUnit = "HOURS"
	ShelfLifeDays  ShelfLifeUnit = "DAYS"
)

// FlashDealLimit is how many flash-deal checkouts a restaurant may take
// before its eligibility is cleared.
const FlashDealLimit = 3

// Listing is a perishable, quantity-limited surplus-food offer.
type Listing struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	Title         string
	Count         int
	OriginalPrice decimal.Decimal
	PickUpPrice   *decimal.Decimal
	DeliveryPrice *decimal.Decimal
	CreatedAt     time.Time
	ExpiresAt     time.Time
	// FreshScore decays from 100 towards 0 as the listing approaches expiry.
	FreshScore        float64
	ConsumeWithin     int
	ConsumeWithinUnit ShelfLifeUnit
}

// UnitPrice returns the delivery or pickup price, falling back to the
// original price when the specific one is not set.
func (l *Listing) UnitPrice(delivery bool) decimal.Decimal {
	if delivery {
		if l.DeliveryPrice != nil {
			return *l.DeliveryPrice
		}
	} else if l.PickUpPrice != nil {
		return *l.PickUpPrice
	}
	return l.OriginalPrice
}

// Restaurant is the slice of a restaurant the fulfillment core needs.
type Restaurant struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Name                string
	DeliveryFee         decimal.Decimal
	FlashDealsAvailable bool
	FlashDealsCount     int
}

// AddressSnapshot is the delivery address captured onto an order at
// creation time. It never changes afterwards, even if the customer edits
// their saved addresses.
type AddressSnapshot struct {
	Title     string
	Street    string
	District  string
	Province  string
	Apartment string
}

func (a AddressSnapshot) IsEmpty() bool {
	return a.Street == "" && a.District == "" && a.Province == ""
}

// Order is one committed purchase of one listing by one user.
// RestaurantID is denormalized from the listing at creation so the order
// survives later listing mutation or deletion.
type Order struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	ListingID          uuid.UUID
	RestaurantID       uuid.UUID
	Quantity           int
	TotalPrice         decimal.Decimal
	IsDelivery         bool
	Address            AddressSnapshot
	Notes              string
	IsFlashDeal        bool
	CompletionImageURL *string
	Status             OrderStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the creation-time invariants of an order.
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return NewValidation("order quantity must be positive")
	}
	if o.TotalPrice.IsNegative() {
		return NewValidation("order total must not be negative")
	}
	if o.IsDelivery && o.Address.IsEmpty() {
		return NewValidation("delivery order requires a delivery address")
	}
	return nil
}

// CartLine is an ephemeral pre-commit reference to a listing and quantity.
// Cart lines are consumed and removed by a successful checkout.
type CartLine struct {
	UserID    uuid.UUID
	ListingID uuid.UUID
	Quantity  int
}
