package models

import (
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackTypeFeedback FeedbackType = "feedback"
	FeedbackTypeBug      FeedbackType = "bug"
	FeedbackTypeFeature  FeedbackType = "feature"
	FeedbackTypeOther    FeedbackType = "other"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackTypeFeedback, FeedbackTypeBug, FeedbackTypeFeature, FeedbackTypeOther:
		return true
	}
	return false
}

type FeedbackStatus string

const (
	FeedbackStatusOpen       FeedbackStatus = "open"
	FeedbackStatusInProgress FeedbackStatus = "in_progress"
	FeedbackStatusResolved   FeedbackStatus = "resolved"
	FeedbackStatusClosed     FeedbackStatus = "closed"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackStatusOpen, FeedbackStatusInProgress, FeedbackStatusResolved, FeedbackStatusClosed:
		return true
	}
	return false
}

var (
	FeedbackTypes    = []FeedbackType{FeedbackTypeFeedback, FeedbackTypeBug, FeedbackTypeFeature, FeedbackTypeOther}
	FeedbackStatuses = []FeedbackStatus{FeedbackStatusOpen, FeedbackStatusInProgress, FeedbackStatusResolved, FeedbackStatusClosed}
)

type Feedback struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          FeedbackType   `json:"type"`
	Rating        *int           `json:"rating,omitempty"`
	Status        FeedbackStatus `json:"status"`
	UserID        *uuid.UUID     `json:"user_id,omitempty"`
	UserEmail     string         `json:"user_email,omitempty"`
	PageURL       string         `json:"page_url,omitempty"`
	BrowserInfo   map[string]any `json:"browser_info,omitempty"`
	Screenshot    string         `json:"screenshot,omitempty"`
	AdminResponse string         `json:"admin_response,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
}

func (f *Feedback) OwnedBy(userID uuid.UUID) bool {
	return f.UserID != nil && *f.UserID == userID
}

func (f *Feedback) Validate() error {
	var fields errors.FieldErrors

	if f.Title == "" {
		fields.Add("title", "is required")
	} else if len(f.Title) > 100 {
		fields.Add("title", "must be at most 100 characters")
	}

	if f.Description == "" {
		fields.Add("description", "is required")
	} else if len(f.Description) > 2000 {
		fields.Add("description", "must be at most 2000 characters")
	}

	if !f.Type.Valid() {
		fields.Add("type", "must be one of feedback, bug, feature, other")
	}

	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		fields.Add("rating", "must be between 1 and 5")
	}

	if !f.Status.Valid() {
		fields.Add("status", "must be one of open, in_progress, resolved, closed")
	}

	if f.UserEmail != "" && !emailPattern.MatchString(f.UserEmail) {
		fields.Add("user_email", "must be a valid email address")
	}

	if len(f.AdminResponse) > 2000 {
		fields.Add("admin_response", "must be at most 2000 characters")
	}

	return fields.Err()
}

type FeedbackFilter struct {
	UserID *uuid.UUID
	Status FeedbackStatus
	Type   FeedbackType
	Page   int
	Limit  int
}

type FeedbackStats struct {
	Total         int                    `json:"total"`
	ByStatus      map[FeedbackStatus]int `json:"by_status"`
	ByType        map[FeedbackType]int   `json:"by_type"`
	AverageRating float64                `json:"average_rating"`
	Timestamp     time.Time              `json:"timestamp"`
}

type CreateFeedbackRequest struct {
	Title       string         `json:"title" validate:"required,max=100"`
	Description string         `json:"description" validate:"required,max=2000"`
	Type        FeedbackType   `json:"type" validate:"omitempty,oneof=feedback bug feature other"`
	Rating      *int           `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	UserEmail   string         `json:"user_email,omitempty" validate:"omitempty,email"`
	PageURL     string         `json:"page_url,omitempty"`
	BrowserInfo map[string]any `json:"browser_info,omitempty"`
}

type QuickFeedbackRequest struct {
	Rating  int          `json:"rating" validate:"required,min=1,max=5"`
	PageURL string       `json:"page_url,omitempty"`
	Type    FeedbackType `json:"type" validate:"omitempty,oneof=feedback bug feature other"`
}

type BugReportRequest struct {
	Title       string         `json:"title" validate:"required,max=100"`
	Description string         `json:"description" validate:"required,max=2000"`
	UserEmail   string         `json:"user_email,omitempty" validate:"omitempty,email"`
	PageURL     string         `json:"page_url,omitempty"`
	BrowserInfo map[string]any `json:"browser_info,omitempty"`
	Screenshot  string         `json:"-"`
}

type UpdateFeedbackRequest struct {
	Title         *string         `json:"title,omitempty" validate:"omitempty,max=100"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type          *FeedbackType   `json:"type,omitempty" validate:"omitempty,oneof=feedback bug feature other"`
	Rating        *int            `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Status        *FeedbackStatus `json:"status,omitempty" validate:"omitempty,oneof=open in_progress resolved closed"`
	AdminResponse *string         `json:"admin_response,omitempty" validate:"omitempty,max=2000"`
}

type ResolveFeedbackRequest struct {
	AdminResponse string `json:"admin_response" validate:"max=2000"`
}
