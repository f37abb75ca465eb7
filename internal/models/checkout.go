package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ReasonInsufficientStock = "insufficient stock"

type CheckoutItem struct {
	Product  *Product        `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type FailedCheckoutItem struct {
	Product   *Product  `json:"product,omitempty"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

// CheckoutResult is derived per call and never persisted.
type CheckoutResult struct {
	Success      bool                 `json:"success"`
	CartID       uuid.UUID            `json:"cartId"`
	SuccessItems []CheckoutItem       `json:"successItems"`
	FailedItems  []FailedCheckoutItem `json:"failedItems"`
	CompletedAt  *time.Time           `json:"completedAt"`
}

func (r *CheckoutResult) Partial() bool {
	return len(r.SuccessItems) > 0 && len(r.FailedItems) > 0
}

func (r *CheckoutResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.SuccessItems {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type CheckoutResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  *CheckoutResult `json:"result"`
}
