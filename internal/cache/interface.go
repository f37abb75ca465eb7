package cache

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
)

// Cache stores JSON encoded values. A miss is reported as found=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	ProductKeyPrefix  = "product"
	CategoryKeyPrefix = "products:category"
	FeaturedKey       = "products:featured"
)

func ProductKey(id uuid.UUID) string {
	return Key(ProductKeyPrefix, id.String())
}

func CategoryKey(category models.Category) string {
	return Key(CategoryKeyPrefix, string(category))
}

// ProductKeys lists every key that can hold a copy of the product.
func ProductKeys(product *models.Product) []string {
	return []string{ProductKey(product.ID), FeaturedKey, CategoryKey(product.Category)}
}
