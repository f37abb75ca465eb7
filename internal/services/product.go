package service

import (
	"context"
	"log/slog"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
)

// only the first page in default order is cached for list views
const listCacheLimit = 50

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	GetFeaturedProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	GetProductsByCategory(ctx context.Context, category models.Category, filter models.ProductFilter) ([]*models.Product, int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewProductService(repo repository.ProductRepository, cache cache.Cache) ProductService {
	return &productService{repo: repo, cache: cache}
}

// cachedList is what list views store in the cache.
type cachedList struct {
	Products []*models.Product `json:"products"`
	Total    int               `json:"total"`
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}

	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, repoError(err, "Product not found", "Failed to create product")
	}

	// list views containing the new product are stale
	s.invalidate(ctx, cache.FeaturedKey, cache.CategoryKey(product.Category))

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.ProductKey(id)

	var cached models.Product

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Product cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if found {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to retrieve product")
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		logger.Warn("Product cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to retrieve product")
	}

	// the old category list must go as well if the category changes
	staleKeys := cache.ProductKeys(product)

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, repoError(err, "Product not found", "Failed to update product")
	}

	s.invalidate(ctx, append(staleKeys, cache.CategoryKey(product.Category))...)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return repoError(err, "Product not found", "Failed to retrieve product")
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return repoError(err, "Product not found", "Failed to delete product")
	}

	s.invalidate(ctx, cache.ProductKeys(product)...)

	return nil
}

// page means "page number requested"
// limit means "number of products to be displayed per page"
func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) GetFeaturedProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {

	featured := true
	filter.Featured = &featured
	filter.ActiveOnly = true

	return s.cachedList(ctx, cache.FeaturedKey, filter)
}

func (s *productService) GetProductsByCategory(ctx context.Context, category models.Category, filter models.ProductFilter) ([]*models.Product, int, error) {

	if !category.Valid() {
		return nil, 0, appErrors.AddValidationError("category", "is not a known category")
	}

	filter.Category = category
	filter.ActiveOnly = true

	return s.cachedList(ctx, cache.CategoryKey(category), filter)
}

// AdjustStock applies an admin restock or write-off. The result can never go
// below zero.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {

	if delta == 0 {
		return nil, appErrors.AddValidationError("delta", "must not be zero")
	}

	if _, err := s.repo.AdjustStock(ctx, id, delta); err != nil {
		if appErr, ok := stockError(err); ok {
			return nil, appErr
		}
		return nil, repoError(err, "Product not found", "Failed to adjust stock")
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to retrieve product")
	}

	s.invalidate(ctx, cache.ProductKeys(product)...)

	return product, nil
}

func (s *productService) cachedList(ctx context.Context, key string, filter models.ProductFilter) ([]*models.Product, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	cacheable := filter.Page <= 1 && filter.Limit == listCacheLimit && filter.SortBy == "" && filter.Search == ""

	if cacheable {
		var cached cachedList

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Product list cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		} else if found {
			return cached.Products, cached.Total, nil
		}
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, cachedList{Products: products, Total: total}, 0); err != nil {
			logger.Warn("Product list cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return products, total, nil
}

func (s *productService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
