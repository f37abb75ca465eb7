package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserService is a mock type for the UserService type
type UserService struct {
	mock.Mock
}

func (_m *UserService) user(ret mock.Arguments) (*models.User, error) {
	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return _m.user(_m.Called(ctx, req))
}

func (_m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	ret := _m.Called(ctx, req)

	var r0 *models.LoginResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.LoginResponse)
	}

	return r0, ret.Error(1)
}

func (_m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return _m.user(_m.Called(ctx, id))
}

func (_m *UserService) ListUsers(ctx context.Context, page int, limit int) ([]*models.User, int, error) {
	ret := _m.Called(ctx, page, limit)

	var r0 []*models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.User)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *UserService) ForgotPassword(ctx context.Context, email string) error {
	ret := _m.Called(ctx, email)
	return ret.Error(0)
}

func (_m *UserService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	ret := _m.Called(ctx, req)
	return ret.Error(0)
}

// NewUserService creates a new instance of UserService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewUserService(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserService {
	m := &UserService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
