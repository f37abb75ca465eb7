package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/events"
	"github.com/stretchr/testify/mock"
)

// Publisher is a mock type for the Publisher type
type Publisher struct {
	mock.Mock
}

func (_m *Publisher) PublishCheckout(ctx context.Context, event events.CheckoutEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

func (_m *Publisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewPublisher creates a new instance of Publisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Publisher {
	m := &Publisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
