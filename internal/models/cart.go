package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCompleted CartStatus = "completed"
	// set by an external expiry process, nothing in this service produces it
	CartStatusAbandoned CartStatus = "abandoned"
)

// CartItem holds the price captured when the product was added, not the live price.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      CartStatus      `json:"status"`
	Items       []CartItem      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewCart(userID uuid.UUID) *Cart {
	now := time.Now()

	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    CartStatusActive,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	idx := c.FindItem(productID)
	if idx < 0 {
		return false
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recalculate()

	return true
}

func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	c.Total = total
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// Quantity 0 or below removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}
