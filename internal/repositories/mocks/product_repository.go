package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductRepository is a mock type for the ProductRepository type
type ProductRepository struct {
	mock.Mock
}

func (_m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	ret := _m.Called(ctx, product)
	return ret.Error(0)
}

func (_m *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Product); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	ret := _m.Called(ctx, product)
	return ret.Error(0)
}

func (_m *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *ProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *ProductRepository) GetCurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) (int, error)); ok {
		return rf(ctx, id)
	}

	return ret.Int(0), ret.Error(1)
}

func (_m *ProductRepository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	ret := _m.Called(ctx, id, quantity)

	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, int) (bool, error)); ok {
		return rf(ctx, id, quantity)
	}

	return ret.Bool(0), ret.Error(1)
}

func (_m *ProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	ret := _m.Called(ctx, id, delta)
	return ret.Int(0), ret.Error(1)
}

// NewProductRepository creates a new instance of ProductRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProductRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProductRepository {
	m := &ProductRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
