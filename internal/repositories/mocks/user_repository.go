package mocks

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserRepository is a mock type for the UserRepository type
type UserRepository struct {
	mock.Mock
}

func (_m *UserRepository) getUser(ret mock.Arguments) (*models.User, error) {
	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return _m.getUser(_m.Called(ctx, email))
}

func (_m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return _m.getUser(_m.Called(ctx, username))
}

func (_m *UserRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return _m.getUser(_m.Called(ctx, id))
}

func (_m *UserRepository) ListUsers(ctx context.Context, page int, limit int) ([]*models.User, int, error) {
	ret := _m.Called(ctx, page, limit)

	var r0 []*models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.User)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	ret := _m.Called(ctx, id, tokenHash, expires)
	return ret.Error(0)
}

func (_m *UserRepository) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return _m.getUser(_m.Called(ctx, tokenHash))
}

func (_m *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ret := _m.Called(ctx, id, passwordHash)
	return ret.Error(0)
}

// NewUserRepository creates a new instance of UserRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserRepository {
	m := &UserRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
