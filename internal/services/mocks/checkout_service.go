package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CheckoutService is a mock type for the CheckoutService type
type CheckoutService struct {
	mock.Mock
}

func (_m *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, email string) (*models.CheckoutResult, error) {
	ret := _m.Called(ctx, userID, email)

	var r0 *models.CheckoutResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.CheckoutResult)
	}

	return r0, ret.Error(1)
}

// NewCheckoutService creates a new instance of CheckoutService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCheckoutService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CheckoutService {
	m := &CheckoutService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
