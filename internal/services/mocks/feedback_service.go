package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// FeedbackService is a mock type for the FeedbackService type
type FeedbackService struct {
	mock.Mock
}

func (_m *FeedbackService) feedback(ret mock.Arguments) (*models.Feedback, error) {
	var r0 *models.Feedback
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Feedback)
	}
	return r0, ret.Error(1)
}

func (_m *FeedbackService) CreateFeedback(ctx context.Context, req *models.CreateFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, req, claims))
}

func (_m *FeedbackService) QuickFeedback(ctx context.Context, req *models.QuickFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, req, claims))
}

func (_m *FeedbackService) BugReport(ctx context.Context, req *models.BugReportRequest, claims *models.Claims) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, req, claims))
}

func (_m *FeedbackService) GetFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, id, claims))
}

func (_m *FeedbackService) ListFeedback(ctx context.Context, filter models.FeedbackFilter, claims *models.Claims) ([]*models.Feedback, int, error) {
	ret := _m.Called(ctx, filter, claims)

	var r0 []*models.Feedback
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Feedback)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *FeedbackService) UpdateFeedback(ctx context.Context, id uuid.UUID, req *models.UpdateFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, id, req, claims))
}

func (_m *FeedbackService) DeleteFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) error {
	ret := _m.Called(ctx, id, claims)
	return ret.Error(0)
}

func (_m *FeedbackService) ResolveFeedback(ctx context.Context, id uuid.UUID, req *models.ResolveFeedbackRequest) (*models.Feedback, error) {
	return _m.feedback(_m.Called(ctx, id, req))
}

func (_m *FeedbackService) GetStats(ctx context.Context) (*models.FeedbackStats, error) {
	ret := _m.Called(ctx)

	var r0 *models.FeedbackStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.FeedbackStats)
	}

	return r0, ret.Error(1)
}

// NewFeedbackService creates a new instance of FeedbackService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewFeedbackService(t interface {
	mock.TestingT
	Cleanup(func())
}) *FeedbackService {
	m := &FeedbackService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
