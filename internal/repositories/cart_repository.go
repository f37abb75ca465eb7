package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	// UpdateCart persists items and total of an active cart.
	UpdateCart(ctx context.Context, cart *models.Cart) error
	// RemoveItem drops the line for productID and recomputes the total.
	// Removing an absent product is a no-op.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	// MarkCompleted moves the cart to completed. Calling it again keeps the
	// first completion time, which is returned.
	MarkCompleted(ctx context.Context, cartID uuid.UUID, at time.Time) (time.Time, error)
	ListCompletedCarts(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

const cartColumns = `id, user_id, status, items, total, completed_at, created_at, updated_at`

func scanCart(row rowScanner) (*models.Cart, error) {
	cart := &models.Cart{}

	var itemsJSON []byte
	var completedAt sql.NullTime

	err := row.Scan(&cart.ID, &cart.UserID, &cart.Status, &itemsJSON, &cart.Total, &completedAt, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	if completedAt.Valid {
		cart.CompletedAt = &completedAt.Time
	}

	return cart, nil
}

func marshalItems(items []models.CartItem) ([]byte, error) {
	if items == nil {
		items = []models.CartItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart items: %w", err)
	}

	return itemsJSON, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (id, user_id, status, items, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, cart.ID, cart.UserID, cart.Status, itemsJSON, cart.Total).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return classify(err)
	}

	return nil
}

func (r *cartRepository) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND status = 'active'`

	cart, err := scanCart(r.DB.QueryRowContext(dbCtx, query, userID))
	if err != nil {
		return nil, classify(err)
	}

	return cart, nil
}

func (r *cartRepository) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`

	cart, err := scanCart(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, classify(err)
	}

	return cart, nil
}

func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalItems(cart.Items)
	if err != nil {
		return err
	}

	query := `
		UPDATE carts
		SET items = $1, total = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'active'
		RETURNING updated_at
	`

	if err := r.DB.QueryRowContext(dbCtx, query, itemsJSON, cart.Total, cart.ID).Scan(&cart.UpdatedAt); err != nil {
		return classify(err)
	}

	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// rebuilds the item array without the product, preserving order
	query := `
		WITH remaining AS (
			SELECT COALESCE(jsonb_agg(t.item ORDER BY t.ord), '[]'::jsonb) AS items,
			       COALESCE(SUM((t.item->>'price')::numeric * (t.item->>'quantity')::int), 0) AS total
			FROM carts c, jsonb_array_elements(c.items) WITH ORDINALITY AS t(item, ord)
			WHERE c.id = $1 AND t.item->>'product_id' <> $2
		)
		UPDATE carts
		SET items = remaining.items, total = remaining.total, updated_at = NOW()
		FROM remaining
		WHERE carts.id = $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, cartID, productID.String())
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *cartRepository) MarkCompleted(ctx context.Context, cartID uuid.UUID, at time.Time) (time.Time, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE carts
		SET status = 'completed', completed_at = COALESCE(completed_at, $2), updated_at = NOW()
		WHERE id = $1
		RETURNING completed_at
	`

	var completedAt time.Time

	if err := r.DB.QueryRowContext(dbCtx, query, cartID, at).Scan(&completedAt); err != nil {
		return time.Time{}, classify(err)
	}

	return completedAt, nil
}

func (r *cartRepository) ListCompletedCarts(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND status = 'completed' ORDER BY completed_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}

	defer rows.Close()

	carts := []*models.Cart{}

	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}

		carts = append(carts, cart)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return carts, nil
}
