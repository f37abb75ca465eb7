package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductService is a mock type for the ProductService type
type ProductService struct {
	mock.Mock
}

func (_m *ProductService) product(ret mock.Arguments) (*models.Product, error) {
	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductService) list(ret mock.Arguments) ([]*models.Product, int, error) {
	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}
	return r0, ret.Int(1), ret.Error(2)
}

func (_m *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	return _m.product(_m.Called(ctx, req))
}

func (_m *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return _m.product(_m.Called(ctx, id))
}

func (_m *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	return _m.product(_m.Called(ctx, id, req))
}

func (_m *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	return _m.list(_m.Called(ctx, filter))
}

func (_m *ProductService) GetFeaturedProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	return _m.list(_m.Called(ctx, filter))
}

func (_m *ProductService) GetProductsByCategory(ctx context.Context, category models.Category, filter models.ProductFilter) ([]*models.Product, int, error) {
	return _m.list(_m.Called(ctx, category, filter))
}

func (_m *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	return _m.product(_m.Called(ctx, id, delta))
}

// NewProductService creates a new instance of ProductService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProductService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProductService {
	m := &ProductService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
