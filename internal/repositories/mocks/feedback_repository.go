package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// FeedbackRepository is a mock type for the FeedbackRepository type
type FeedbackRepository struct {
	mock.Mock
}

func (_m *FeedbackRepository) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	ret := _m.Called(ctx, feedback)
	return ret.Error(0)
}

func (_m *FeedbackRepository) GetFeedbackByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Feedback
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Feedback)
	}

	return r0, ret.Error(1)
}

func (_m *FeedbackRepository) ListFeedback(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, int, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*models.Feedback
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Feedback)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *FeedbackRepository) UpdateFeedback(ctx context.Context, feedback *models.Feedback) error {
	ret := _m.Called(ctx, feedback)
	return ret.Error(0)
}

func (_m *FeedbackRepository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *FeedbackRepository) GetFeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	ret := _m.Called(ctx)

	var r0 *models.FeedbackStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.FeedbackStats)
	}

	return r0, ret.Error(1)
}

// NewFeedbackRepository creates a new instance of FeedbackRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewFeedbackRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *FeedbackRepository {
	m := &FeedbackRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
