package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx. Begin on a pool
// opens a transaction; on a transaction it opens a savepoint.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PG is the Postgres-backed store.
type PG struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool, q: pool}
}

// ExecTx runs fn inside a single transaction. Called on a store that is
// already transactional it opens a savepoint instead, so a failed fn rolls
// back only the savepoint and the outer transaction keeps going.
// Serialization and deadlock failures are mapped to ConflictError so the
// orchestrator can retry.
func (s *PG) ExecTx(ctx context.Context, fn func(TxStore) error) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&PG{pool: s.pool, q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return domain.NewConflict(pgErr.Message)
		}
	}
	return err
}

const listingColumns = `id, restaurant_id, title, count, original_price,
	pick_up_price, delivery_price, created_at, expires_at, fresh_score,
	consume_within, consume_within_type`

// Money columns scan straight into decimals and are written as
// fixed-point text, so values round-trip without a float detour.
func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		l                 domain.Listing
		pickUp, deliv     decimal.NullDecimal
		consumeWithin     *int
		consumeWithinUnit *string
	)
	err := row.Scan(&l.ID, &l.RestaurantID, &l.Title, &l.Count, &l.OriginalPrice,
		&pickUp, &deliv, &l.CreatedAt, &l.ExpiresAt, &l.FreshScore,
		&consumeWithin, &consumeWithinUnit)
	if err != nil {
		return nil, err
	}
	if pickUp.Valid {
		d := pickUp.Decimal
		l.PickUpPrice = &d
	}
	if deliv.Valid {
		d := deliv.Decimal
		l.DeliveryPrice = &d
	}
	if consumeWithin != nil {
		l.ConsumeWithin = *consumeWithin
	}
	if consumeWithinUnit != nil {
		l.ConsumeWithinUnit = domain.ShelfLifeUnit(*consumeWithinUnit)
	}
	return &l, nil
}

func (s *PG) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound("listing", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (s *PG) SaveListingStock(ctx context.Context, id uuid.UUID, count int) error {
	tag, err := s.q.Exec(ctx, `UPDATE listings SET count = $2 WHERE id = $1`, id, count)
	if err != nil {
		return fmt.Errorf("save listing stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("listing", id.String())
	}
	return nil
}

func (s *PG) SaveListingDecay(ctx context.Context, l *domain.Listing) error {
	_, err := s.q.Exec(ctx, `
		UPDATE listings
		SET fresh_score = $2, consume_within = $3, consume_within_type = $4
		WHERE id = $1`,
		l.ID, l.FreshScore, l.ConsumeWithin, string(l.ConsumeWithinUnit))
	if err != nil {
		return fmt.Errorf("save listing decay: %w", err)
	}
	return nil
}

func (s *PG) DeleteListing(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}

func (s *PG) ListActiveListings(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE expires_at > $1 ORDER BY expires_at FOR UPDATE`, now)
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

const orderColumns = `id, user_id, listing_id, restaurant_id, quantity,
	total_price, is_delivery, address_title, address_street, address_district,
	address_province, address_apartment, notes, is_flash_deal,
	completion_image_url, status, created_at, updated_at`

func (s *PG) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := s.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(
		&o.ID, &o.UserID, &o.ListingID, &o.RestaurantID, &o.Quantity,
		&o.TotalPrice, &o.IsDelivery, &o.Address.Title, &o.Address.Street,
		&o.Address.District, &o.Address.Province, &o.Address.Apartment,
		&o.Notes, &o.IsFlashDeal, &o.CompletionImageURL, &status,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound("order", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (s *PG) CreateOrder(ctx context.Context, o *domain.Order) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO orders
			(id, user_id, listing_id, restaurant_id, quantity, total_price,
			 is_delivery, address_title, address_street, address_district,
			 address_province, address_apartment, notes, is_flash_deal, status,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`,
		o.ID, o.UserID, o.ListingID, o.RestaurantID, o.Quantity,
		o.TotalPrice.StringFixed(2), o.IsDelivery, o.Address.Title,
		o.Address.Street, o.Address.District, o.Address.Province,
		o.Address.Apartment, o.Notes, o.IsFlashDeal, string(o.Status), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PG) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("order", id.String())
	}
	return nil
}

func (s *PG) SetOrderCompletion(ctx context.Context, id uuid.UUID, imageURL string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders
		SET completion_image_url = $2, status = $3, updated_at = now()
		WHERE id = $1`,
		id, imageURL, string(domain.StatusCompleted))
	if err != nil {
		return fmt.Errorf("set order completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("order", id.String())
	}
	return nil
}

func (s *PG) RejectLiveOrders(ctx context.Context, listingID uuid.UUID) (int, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE listing_id = $1 AND status IN ($3, $4)`,
		listingID, string(domain.StatusRejected),
		string(domain.StatusPending), string(domain.StatusAccepted))
	if err != nil {
		return 0, fmt.Errorf("reject live orders: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PG) GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	var r domain.Restaurant
	err := s.q.QueryRow(ctx, `
		SELECT id, owner_id, name, delivery_fee, flash_deals_available, flash_deals_count
		FROM restaurants WHERE id = $1`, id).Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.DeliveryFee, &r.FlashDealsAvailable, &r.FlashDealsCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound("restaurant", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return &r, nil
}

func (s *PG) RegisterFlashDealUse(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE restaurants
		SET flash_deals_count = flash_deals_count + 1,
		    flash_deals_available = (flash_deals_count + 1 < $2)
		WHERE id = $1`,
		id, domain.FlashDealLimit)
	if err != nil {
		return fmt.Errorf("register flash deal use: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("restaurant", id.String())
	}
	return nil
}

func (s *PG) CartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := s.q.Query(ctx, `
		SELECT user_id, listing_id, quantity
		FROM cart_lines WHERE user_id = $1 ORDER BY listing_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var out []domain.CartLine
	for rows.Next() {
		var cl domain.CartLine
		if err := rows.Scan(&cl.UserID, &cl.ListingID, &cl.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func (s *PG) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ResolveAddress returns the requested saved address, or the user's primary
// address when no id is given. Satisfies fulfillment.AddressResolver.
func (s *PG) ResolveAddress(ctx context.Context, userID uuid.UUID, addressID *uuid.UUID) (*domain.AddressSnapshot, error) {
	var (
		row pgx.Row
		a   domain.AddressSnapshot
	)
	if addressID != nil {
		row = s.q.QueryRow(ctx, `
			SELECT title, street, district, province, apartment
			FROM customer_addresses WHERE id = $1 AND user_id = $2`,
			*addressID, userID)
	} else {
		row = s.q.QueryRow(ctx, `
			SELECT title, street, district, province, apartment
			FROM customer_addresses WHERE user_id = $1
			ORDER BY is_primary DESC, id LIMIT 1`, userID)
	}
	err := row.Scan(&a.Title, &a.Street, &a.District, &a.Province, &a.Apartment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFound("address", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}
	return &a, nil
}
