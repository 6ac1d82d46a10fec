// Package fulfillment turns a customer's cart into committed orders and
// drives each order through its lifecycle. Every operation runs inside a
// single store transaction; collaborator dispatch happens after commit and
// can only be logged, never fail the operation.
package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/discount"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/inventory"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/logger"
	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/repository"
)

const defaultDispatchTimeout = 5 * time.Second

type Service struct {
	store           repository.TxStore
	addresses       AddressResolver
	notifier        NotificationDispatcher
	achievements    AchievementChecker
	environment     EnvironmentalLedger
	lg              *logger.Logger
	now             func() time.Time
	dispatchTimeout time.Duration
}

func New(store repository.TxStore, addresses AddressResolver, notifier NotificationDispatcher,
	achievements AchievementChecker, environment EnvironmentalLedger, lg *logger.Logger) *Service {
	return &Service{
		store:           store,
		addresses:       addresses,
		notifier:        notifier,
		achievements:    achievements,
		environment:     environment,
		lg:              lg,
		now:             time.Now,
		dispatchTimeout: defaultDispatchTimeout,
	}
}

// CheckoutInput describes one checkout attempt. The cart lines themselves
// come from the store and are guaranteed by the cart collaborator to all
// reference listings of a single restaurant.
type CheckoutInput struct {
	UserID      uuid.UUID
	IsDelivery  bool
	AddressID   *uuid.UUID
	Notes       string
	IsFlashDeal bool
}

// CheckoutResult is returned after a successful commit. The discount
// breakdown fields are meaningful only when Discounted is true.
type CheckoutResult struct {
	Orders      []domain.Order
	Discounted  bool
	TotalBefore decimal.Decimal
	Discount    decimal.Decimal
	TotalAfter  decimal.Decimal
}

// Checkout commits the user's whole cart as one atomic unit: stock is
// reserved, the tier discount is distributed, orders are created PENDING
// and the cart is emptied, or none of it happens. A conflict detected at
// commit time is retried once.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	res, err := s.checkoutTx(ctx, in)
	if domain.IsConflict(err) {
		s.lg.Warn("checkout_conflict_retry", err, map[string]any{"user_id": in.UserID.String()})
		res, err = s.checkoutTx(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	for i := range res.Orders {
		s.dispatch(ctx, "notify_order_created", func(dctx context.Context) error {
			return s.notifier.NotifyOrderCreated(dctx, &res.Orders[i])
		})
	}
	return res, nil
}

func (s *Service) checkoutTx(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	var res *CheckoutResult
	err := s.store.ExecTx(ctx, func(st repository.TxStore) error {
		lines, err := st.CartLines(ctx, in.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.NewEmptyCart()
		}

		addr, err := s.addresses.ResolveAddress(ctx, in.UserID, in.AddressID)
		if err != nil {
			return err
		}

		now := s.now()
		orders := make([]domain.Order, 0, len(lines))
		totals := make([]decimal.Decimal, 0, len(lines))
		flashRestaurants := map[uuid.UUID]bool{}

		for _, line := range lines {
			listing, err := st.GetListing(ctx, line.ListingID)
			if err != nil {
				return err
			}
			if line.Quantity > listing.Count {
				return domain.NewInsufficientStock(listing.ID.String(), line.Quantity, listing.Count)
			}
			restaurant, err := st.GetRestaurant(ctx, listing.RestaurantID)
			if err != nil {
				return err
			}
			if in.IsFlashDeal && !restaurant.FlashDealsAvailable {
				return domain.NewFlashDealUnavailable(restaurant.ID.String())
			}

			total := listing.UnitPrice(in.IsDelivery).Mul(decimal.NewFromInt(int64(line.Quantity)))
			if in.IsDelivery {
				total = total.Add(restaurant.DeliveryFee)
			}

			order := domain.Order{
				ID:           uuid.New(),
				UserID:       in.UserID,
				ListingID:    listing.ID,
				RestaurantID: restaurant.ID,
				Quantity:     line.Quantity,
				TotalPrice:   total.Round(2),
				IsDelivery:   in.IsDelivery,
				Address:      *addr,
				Notes:        in.Notes,
				IsFlashDeal:  in.IsFlashDeal,
				Status:       domain.StatusPending,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := order.Validate(); err != nil {
				return err
			}

			if err := inventory.DecreaseStock(listing, line.Quantity); err != nil {
				return err
			}
			if err := st.SaveListingStock(ctx, listing.ID, listing.Count); err != nil {
				return err
			}

			orders = append(orders, order)
			totals = append(totals, order.TotalPrice)
			if in.IsFlashDeal {
				flashRestaurants[restaurant.ID] = true
			}
		}

		alloc := discount.Allocate(totals)
		for i := range orders {
			orders[i].TotalPrice = alloc.LineTotals[i]
			if err := st.CreateOrder(ctx, &orders[i]); err != nil {
				return err
			}
		}

		if err := st.ClearCart(ctx, in.UserID); err != nil {
			return err
		}
		for id := range flashRestaurants {
			if err := st.RegisterFlashDealUse(ctx, id); err != nil {
				return err
			}
		}

		res = &CheckoutResult{
			Orders:      orders,
			Discounted:  alloc.Applied(),
			TotalBefore: alloc.TotalBefore,
			Discount:    alloc.Discount,
			TotalAfter:  alloc.TotalAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ResponseAction is a restaurant's decision on a pending order.
type ResponseAction string

const (
	ActionAccept ResponseAction = "accept"
	ActionReject ResponseAction = "reject"
)

// Respond lets the restaurant owner accept or reject a pending order.
// Rejection restores exactly the stock the order had reserved.
func (s *Service) Respond(ctx context.Context, orderID, actingUser uuid.UUID, action ResponseAction) (*domain.Order, error) {
	var target domain.OrderStatus
	switch action {
	case ActionAccept:
		target = domain.StatusAccepted
	case ActionReject:
		target = domain.StatusRejected
	default:
		return nil, domain.NewValidation("unknown response action")
	}

	var updated *domain.Order
	err := s.store.ExecTx(ctx, func(st repository.TxStore) error {
		order, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		restaurant, err := st.GetRestaurant(ctx, order.RestaurantID)
		if err != nil {
			return err
		}
		if restaurant.OwnerID != actingUser {
			return domain.NewNotAuthorized("only the restaurant owner can respond to an order")
		}

		if err := order.TransitionTo(target); err != nil {
			return err
		}
		if target == domain.StatusRejected {
			listing, err := st.GetListing(ctx, order.ListingID)
			if err != nil {
				return err
			}
			inventory.RestoreStock(listing, order.Quantity)
			if err := st.SaveListingStock(ctx, listing.ID, listing.Count); err != nil {
				return err
			}
		}
		if err := st.UpdateOrderStatus(ctx, order.ID, order.Status); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if target == domain.StatusAccepted {
		s.dispatch(ctx, "notify_order_accepted", func(dctx context.Context) error {
			return s.notifier.NotifyOrderAccepted(dctx, updated)
		})
	} else {
		s.dispatch(ctx, "notify_order_rejected", func(dctx context.Context) error {
			return s.notifier.NotifyOrderRejected(dctx, updated)
		})
	}
	return updated, nil
}

// Complete records the completion artifact for an accepted order and moves
// it to COMPLETED. Achievement and environmental bookkeeping run after the
// commit and cannot roll it back.
func (s *Service) Complete(ctx context.Context, orderID, actingUser uuid.UUID, artifactURL string) (*domain.Order, error) {
	if artifactURL == "" {
		return nil, domain.NewValidation("completion artifact is required")
	}

	var updated *domain.Order
	err := s.store.ExecTx(ctx, func(st repository.TxStore) error {
		order, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		restaurant, err := st.GetRestaurant(ctx, order.RestaurantID)
		if err != nil {
			return err
		}
		if restaurant.OwnerID != actingUser {
			return domain.NewNotAuthorized("only the restaurant owner can complete an order")
		}

		if err := order.TransitionTo(domain.StatusCompleted); err != nil {
			return err
		}
		order.CompletionImageURL = &artifactURL
		if err := st.SetOrderCompletion(ctx, order.ID, artifactURL); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, "notify_order_ready", func(dctx context.Context) error {
		return s.notifier.NotifyOrderReadyForPickup(dctx, updated, artifactURL)
	})
	s.dispatch(ctx, "achievement_check", func(dctx context.Context) error {
		return s.achievements.CheckAndAward(dctx, updated.UserID, updated.ID)
	})
	s.dispatch(ctx, "environmental_contribution", func(dctx context.Context) error {
		return s.environment.RecordContribution(dctx, updated.ID)
	})
	return updated, nil
}

// DeleteListing removes a listing on its owner's request and rejects any
// live orders on it. Stock is not restored; the listing is gone.
func (s *Service) DeleteListing(ctx context.Context, listingID, actingUser uuid.UUID) error {
	return s.store.ExecTx(ctx, func(st repository.TxStore) error {
		listing, err := st.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		restaurant, err := st.GetRestaurant(ctx, listing.RestaurantID)
		if err != nil {
			return err
		}
		if restaurant.OwnerID != actingUser {
			return domain.NewNotAuthorized("only the restaurant owner can delete a listing")
		}
		if _, err := st.RejectLiveOrders(ctx, listingID); err != nil {
			return err
		}
		return st.DeleteListing(ctx, listingID)
	})
}

// dispatch runs a post-commit collaborator call with a bounded timeout.
// Failures are logged only; the committed operation already succeeded.
func (s *Service) dispatch(ctx context.Context, action string, fn func(context.Context) error) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout)
	defer cancel()
	if err := fn(dctx); err != nil {
		s.lg.Error(action+"_failed", err, nil)
	}
}
