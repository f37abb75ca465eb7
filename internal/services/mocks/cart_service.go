package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CartService is a mock type for the CartService type
type CartService struct {
	mock.Mock
}

func (_m *CartService) cart(ret mock.Arguments) (*models.Cart, error) {
	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}
	return r0, ret.Error(1)
}

func (_m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return _m.cart(_m.Called(ctx, userID))
}

func (_m *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, req))
}

func (_m *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, productID, req))
}

func (_m *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, productID))
}

func (_m *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return _m.cart(_m.Called(ctx, userID))
}

func (_m *CartService) History(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error) {
	ret := _m.Called(ctx, userID)

	var r0 []*models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Cart)
	}

	return r0, ret.Error(1)
}

// NewCartService creates a new instance of CartService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartService {
	m := &CartService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
