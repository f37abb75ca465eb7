package service

import (
	"context"
	"fmt"
	"math"
	"time"

	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

// FeedbackService methods take the caller's claims, which are nil for
// anonymous submissions.
type FeedbackService interface {
	CreateFeedback(ctx context.Context, req *models.CreateFeedbackRequest, claims *models.Claims) (*models.Feedback, error)
	QuickFeedback(ctx context.Context, req *models.QuickFeedbackRequest, claims *models.Claims) (*models.Feedback, error)
	BugReport(ctx context.Context, req *models.BugReportRequest, claims *models.Claims) (*models.Feedback, error)
	GetFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Feedback, error)
	ListFeedback(ctx context.Context, filter models.FeedbackFilter, claims *models.Claims) ([]*models.Feedback, int, error)
	UpdateFeedback(ctx context.Context, id uuid.UUID, req *models.UpdateFeedbackRequest, claims *models.Claims) (*models.Feedback, error)
	DeleteFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) error
	ResolveFeedback(ctx context.Context, id uuid.UUID, req *models.ResolveFeedbackRequest) (*models.Feedback, error)
	GetStats(ctx context.Context) (*models.FeedbackStats, error)
}

type feedbackService struct {
	repo repository.FeedbackRepository
	now  func() time.Time
}

func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo, now: time.Now}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, req *models.CreateFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {

	feedbackType := req.Type
	if feedbackType == "" {
		feedbackType = models.FeedbackTypeFeedback
	}

	feedback := &models.Feedback{
		ID:          uuid.New(),
		Title:       utils.SanitizeText(req.Title),
		Description: utils.SanitizeText(req.Description),
		Type:        feedbackType,
		Rating:      req.Rating,
		Status:      models.FeedbackStatusOpen,
		UserEmail:   req.UserEmail,
		PageURL:     req.PageURL,
		BrowserInfo: req.BrowserInfo,
	}

	return s.create(ctx, feedback, claims)
}

func (s *feedbackService) QuickFeedback(ctx context.Context, req *models.QuickFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {

	feedbackType := req.Type
	if feedbackType == "" {
		feedbackType = models.FeedbackTypeFeedback
	}

	prefix := "Quick"
	if feedbackType == models.FeedbackTypeFeedback {
		prefix = "Rating"
	}

	target := req.PageURL
	if target == "" {
		target = "the application"
	}

	rating := req.Rating

	feedback := &models.Feedback{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("%s Feedback: %d/5", prefix, rating),
		Description: fmt.Sprintf("User submitted a %d-star rating for %s", rating, target),
		Type:        feedbackType,
		Rating:      &rating,
		Status:      models.FeedbackStatusOpen,
		PageURL:     req.PageURL,
	}

	return s.create(ctx, feedback, claims)
}

func (s *feedbackService) BugReport(ctx context.Context, req *models.BugReportRequest, claims *models.Claims) (*models.Feedback, error) {

	feedback := &models.Feedback{
		ID:          uuid.New(),
		Title:       utils.SanitizeText(req.Title),
		Description: utils.SanitizeText(req.Description),
		Type:        models.FeedbackTypeBug,
		Status:      models.FeedbackStatusOpen,
		UserEmail:   req.UserEmail,
		PageURL:     req.PageURL,
		BrowserInfo: req.BrowserInfo,
		Screenshot:  req.Screenshot,
	}

	return s.create(ctx, feedback, claims)
}

func (s *feedbackService) create(ctx context.Context, feedback *models.Feedback, claims *models.Claims) (*models.Feedback, error) {

	if claims != nil {
		userID := claims.UserID
		feedback.UserID = &userID
		if feedback.UserEmail == "" {
			feedback.UserEmail = claims.Email
		}
	}

	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, appErrors.DatabaseError("Failed to create feedback").WithError(err)
	}

	return feedback, nil
}

func (s *feedbackService) GetFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Feedback, error) {
	return s.loadOwned(ctx, id, claims)
}

func (s *feedbackService) ListFeedback(ctx context.Context, filter models.FeedbackFilter, claims *models.Claims) ([]*models.Feedback, int, error) {

	if claims == nil {
		return nil, 0, appErrors.UnauthorizedError("Authentication required")
	}

	// non-admins only ever see their own feedback
	if !claims.IsAdmin() {
		userID := claims.UserID
		filter.UserID = &userID
	}

	items, total, err := s.repo.ListFeedback(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch feedback").WithError(err)
	}

	return items, total, nil
}

func (s *feedbackService) UpdateFeedback(ctx context.Context, id uuid.UUID, req *models.UpdateFeedbackRequest, claims *models.Claims) (*models.Feedback, error) {

	feedback, err := s.loadOwned(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	if !claims.IsAdmin() && (req.Status != nil || req.AdminResponse != nil) {
		return nil, appErrors.ForbiddenError("Only administrators can change status or respond")
	}

	if req.Title != nil {
		feedback.Title = utils.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		feedback.Description = utils.SanitizeText(*req.Description)
	}
	if req.Type != nil {
		feedback.Type = *req.Type
	}
	if req.Rating != nil {
		feedback.Rating = req.Rating
	}
	if req.AdminResponse != nil {
		feedback.AdminResponse = utils.SanitizeText(*req.AdminResponse)
	}
	if req.Status != nil {
		feedback.Status = *req.Status
		if feedback.Status == models.FeedbackStatusResolved && feedback.ResolvedAt == nil {
			resolvedAt := s.now().UTC()
			feedback.ResolvedAt = &resolvedAt
		}
	}

	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFeedback(ctx, feedback); err != nil {
		return nil, repoError(err, "Feedback not found", "Failed to update feedback")
	}

	return feedback, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, id uuid.UUID, claims *models.Claims) error {

	if _, err := s.loadOwned(ctx, id, claims); err != nil {
		return err
	}

	if err := s.repo.DeleteFeedback(ctx, id); err != nil {
		return repoError(err, "Feedback not found", "Failed to delete feedback")
	}

	return nil
}

func (s *feedbackService) ResolveFeedback(ctx context.Context, id uuid.UUID, req *models.ResolveFeedbackRequest) (*models.Feedback, error) {

	feedback, err := s.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Feedback not found", "Failed to retrieve feedback")
	}

	resolvedAt := s.now().UTC()
	feedback.Status = models.FeedbackStatusResolved
	feedback.AdminResponse = utils.SanitizeText(req.AdminResponse)
	feedback.ResolvedAt = &resolvedAt

	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFeedback(ctx, feedback); err != nil {
		return nil, repoError(err, "Feedback not found", "Failed to resolve feedback")
	}

	return feedback, nil
}

func (s *feedbackService) GetStats(ctx context.Context) (*models.FeedbackStats, error) {

	stats, err := s.repo.GetFeedbackStats(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to compute feedback statistics").WithError(err)
	}

	if stats.ByStatus == nil {
		stats.ByStatus = make(map[models.FeedbackStatus]int)
	}
	if stats.ByType == nil {
		stats.ByType = make(map[models.FeedbackType]int)
	}

	// statuses and types with no rows still show up as zero
	for _, status := range models.FeedbackStatuses {
		if _, ok := stats.ByStatus[status]; !ok {
			stats.ByStatus[status] = 0
		}
	}
	for _, feedbackType := range models.FeedbackTypes {
		if _, ok := stats.ByType[feedbackType]; !ok {
			stats.ByType[feedbackType] = 0
		}
	}

	stats.AverageRating = math.Round(stats.AverageRating*10) / 10
	stats.Timestamp = s.now().UTC()

	return stats, nil
}

// loadOwned fetches feedback the caller may act on: their own, or any for admins.
func (s *feedbackService) loadOwned(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Feedback, error) {

	if claims == nil {
		return nil, appErrors.UnauthorizedError("Authentication required")
	}

	feedback, err := s.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Feedback not found", "Failed to retrieve feedback")
	}

	if !claims.IsAdmin() && !feedback.OwnedBy(claims.UserID) {
		return nil, appErrors.ForbiddenError("Access denied")
	}

	return feedback, nil
}
