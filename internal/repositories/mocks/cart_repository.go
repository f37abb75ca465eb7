package mocks

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CartRepository is a mock type for the CartRepository type
type CartRepository struct {
	mock.Mock
}

func (_m *CartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	ret := _m.Called(ctx, cart)
	return ret.Error(0)
}

func (_m *CartRepository) getCart(ret mock.Arguments) (*models.Cart, error) {
	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}
	return r0, ret.Error(1)
}

func (_m *CartRepository) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return _m.getCart(_m.Called(ctx, userID))
}

func (_m *CartRepository) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	return _m.getCart(_m.Called(ctx, id))
}

func (_m *CartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	ret := _m.Called(ctx, cart)
	return ret.Error(0)
}

func (_m *CartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	ret := _m.Called(ctx, cartID, productID)
	return ret.Error(0)
}

func (_m *CartRepository) MarkCompleted(ctx context.Context, cartID uuid.UUID, at time.Time) (time.Time, error) {
	ret := _m.Called(ctx, cartID, at)

	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, time.Time) time.Time); ok {
		return rf(ctx, cartID, at), ret.Error(1)
	}

	return ret.Get(0).(time.Time), ret.Error(1)
}

func (_m *CartRepository) ListCompletedCarts(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error) {
	ret := _m.Called(ctx, userID)

	var r0 []*models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Cart)
	}

	return r0, ret.Error(1)
}

// NewCartRepository creates a new instance of CartRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartRepository {
	m := &CartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
