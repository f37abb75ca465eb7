package models

import (
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryBooks       Category = "books"
	CategorySports      Category = "sports"
	CategoryToys        Category = "toys"
	CategoryFood        Category = "food"
	CategoryOther       Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryHome, CategoryBooks,
		CategorySports, CategoryToys, CategoryFood, CategoryOther:
		return true
	}
	return false
}

var MinPrice = decimal.RequireFromString("0.01")

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the invariants a product must hold before it is written.
func (p *Product) Validate() error {
	var fields errors.FieldErrors

	if p.Name == "" {
		fields.Add("name", "is required")
	} else if len(p.Name) > 100 {
		fields.Add("name", "must be at most 100 characters")
	}

	if len(p.Description) > 1000 {
		fields.Add("description", "must be at most 1000 characters")
	}

	if p.Price.LessThan(MinPrice) {
		fields.Add("price", "must be at least 0.01")
	}

	if p.Stock < 0 {
		fields.Add("stock", "cannot be negative")
	}

	if !p.Category.Valid() {
		fields.Add("category", "is not a known category")
	}

	return fields.Err()
}

type ProductSortField string

const (
	SortByCreatedAt ProductSortField = "created_at"
	SortByName      ProductSortField = "name"
	SortByPrice     ProductSortField = "price"
	SortByStock     ProductSortField = "stock"
)

type ProductFilter struct {
	Category   Category
	Featured   *bool
	ActiveOnly bool
	Search     string
	SortBy     ProductSortField
	Descending bool
	Page       int
	Limit      int
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    Category        `json:"category" validate:"required,oneof=electronics clothing home books sports toys food other"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool           `json:"is_active,omitempty"`
	IsFeatured  bool            `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *Category        `json:"category,omitempty" validate:"omitempty,oneof=electronics clothing home books sports toys food other"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive    *bool            `json:"is_active,omitempty"`
	IsFeatured  *bool            `json:"is_featured,omitempty"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}
