package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	// GetCurrentStock returns ErrNotFound when the product does not exist.
	GetCurrentStock(ctx context.Context, id uuid.UUID) (int, error)
	// DecrementStockIfAvailable atomically removes quantity units when at least
	// that many are in stock. It reports false, not an error, on short stock.
	DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	// AdjustStock adds delta (which may be negative) and returns the new level.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, name, description, price, stock, category, image_url, is_active, is_featured, created_at, updated_at`

var productSortColumns = map[models.ProductSortField]string{
	models.SortByCreatedAt: "created_at",
	models.SortByName:      "name",
	models.SortByPrice:     "price",
	models.SortByStock:     "stock",
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	err := row.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
		&product.Category, &product.ImageURL, &product.IsActive, &product.IsFeatured, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (id, name, description, price, stock, category, image_url, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, product.ID, product.Name, product.Description, product.Price, product.Stock,
		product.Category, product.ImageURL, product.IsActive, product.IsFeatured).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", classify(err))
	}

	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, classify(err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category = $5, image_url = $6, is_active = $7, is_featured = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Price, product.Stock, product.Category,
		product.ImageURL, product.IsActive, product.IsFeatured, product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		return classify(err)
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sortColumn, ok := productSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	args = append(args, filter.Limit, models.Offset(filter.Page, filter.Limit))

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		productColumns, where, sortColumn, direction, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) GetCurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var stock int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock); err != nil {
		return 0, classify(err)
	}

	return stock, nil
}

func (r *productRepository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// the stock guard and the decrement are one statement, concurrent callers
	// are serialised on the row lock
	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, quantity, id)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 1 {
		return true, nil
	}

	if err := r.ensureExists(dbCtx, id); err != nil {
		return false, err
	}

	return false, nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING stock
	`

	var stock int

	err := r.DB.QueryRowContext(dbCtx, query, delta, id).Scan(&stock)
	if err == nil {
		return stock, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if err := r.ensureExists(dbCtx, id); err != nil {
		return 0, err
	}

	return 0, ErrInsufficientStock
}

func (r *productRepository) ensureExists(ctx context.Context, id uuid.UUID) error {
	var exists bool

	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}

	if !exists {
		return ErrNotFound
	}

	return nil
}
