package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error
	GetFeedbackByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	ListFeedback(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, int, error)
	UpdateFeedback(ctx context.Context, feedback *models.Feedback) error
	DeleteFeedback(ctx context.Context, id uuid.UUID) error
	// GetFeedbackStats returns raw counts and the unrounded average rating.
	GetFeedbackStats(ctx context.Context) (*models.FeedbackStats, error)
}

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepo(db *sql.DB) FeedbackRepository {
	return &feedbackRepository{DB: db}
}

const feedbackColumns = `id, title, description, type, rating, status, user_id, user_email, page_url, browser_info, screenshot, admin_response, created_at, updated_at, resolved_at`

func scanFeedback(row rowScanner) (*models.Feedback, error) {
	feedback := &models.Feedback{}

	var (
		rating      sql.NullInt64
		userID      uuid.NullUUID
		browserInfo []byte
		resolvedAt  sql.NullTime
	)

	err := row.Scan(&feedback.ID, &feedback.Title, &feedback.Description, &feedback.Type, &rating, &feedback.Status,
		&userID, &feedback.UserEmail, &feedback.PageURL, &browserInfo, &feedback.Screenshot, &feedback.AdminResponse,
		&feedback.CreatedAt, &feedback.UpdatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		value := int(rating.Int64)
		feedback.Rating = &value
	}

	if userID.Valid {
		feedback.UserID = &userID.UUID
	}

	if len(browserInfo) > 0 {
		if err := json.Unmarshal(browserInfo, &feedback.BrowserInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal browser info: %w", err)
		}
	}

	if resolvedAt.Valid {
		feedback.ResolvedAt = &resolvedAt.Time
	}

	return feedback, nil
}

// feedbackArgs converts the optional fields into driver values.
func feedbackArgs(feedback *models.Feedback) (rating, userID, browserInfo, resolvedAt any, err error) {
	if feedback.Rating != nil {
		rating = int64(*feedback.Rating)
	}

	if feedback.UserID != nil {
		userID = *feedback.UserID
	}

	if feedback.BrowserInfo != nil {
		data, err := json.Marshal(feedback.BrowserInfo)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal browser info: %w", err)
		}
		browserInfo = data
	}

	if feedback.ResolvedAt != nil {
		resolvedAt = *feedback.ResolvedAt
	}

	return rating, userID, browserInfo, resolvedAt, nil
}

func (r *feedbackRepository) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rating, userID, browserInfo, _, err := feedbackArgs(feedback)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO feedback (id, title, description, type, rating, status, user_id, user_email, page_url, browser_info, screenshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, feedback.ID, feedback.Title, feedback.Description, feedback.Type, rating,
		feedback.Status, userID, feedback.UserEmail, feedback.PageURL, browserInfo, feedback.Screenshot).
		Scan(&feedback.CreatedAt, &feedback.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", classify(err))
	}

	return nil
}

func (r *feedbackRepository) GetFeedbackByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1`

	feedback, err := scanFeedback(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, classify(err)
	}

	return feedback, nil
}

func (r *feedbackRepository) ListFeedback(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM feedback`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	args = append(args, filter.Limit, models.Offset(filter.Page, filter.Limit))

	query := fmt.Sprintf(`SELECT %s FROM feedback%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		feedbackColumns, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	defer rows.Close()

	items := []*models.Feedback{}

	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan feedback: %w", err)
		}

		items = append(items, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *feedbackRepository) UpdateFeedback(ctx context.Context, feedback *models.Feedback) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rating, _, _, resolvedAt, err := feedbackArgs(feedback)
	if err != nil {
		return err
	}

	query := `
		UPDATE feedback
		SET title = $1, description = $2, type = $3, rating = $4, status = $5, admin_response = $6, resolved_at = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, feedback.Title, feedback.Description, feedback.Type, rating,
		feedback.Status, feedback.AdminResponse, resolvedAt, feedback.ID).Scan(&feedback.UpdatedAt)
	if err != nil {
		return classify(err)
	}

	return nil
}

func (r *feedbackRepository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *feedbackRepository) GetFeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	stats := &models.FeedbackStats{
		ByStatus: make(map[models.FeedbackStatus]int),
		ByType:   make(map[models.FeedbackType]int),
	}

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback`).
		Scan(&stats.Total, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback: %w", err)
	}

	if err := r.groupCount(dbCtx, "status", func(key string, count int) {
		stats.ByStatus[models.FeedbackStatus(key)] = count
	}); err != nil {
		return nil, err
	}

	if err := r.groupCount(dbCtx, "type", func(key string, count int) {
		stats.ByType[models.FeedbackType(key)] = count
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *feedbackRepository) groupCount(ctx context.Context, column string, add func(key string, count int)) error {
	query := `SELECT ` + column + `, COUNT(*) FROM feedback GROUP BY ` + column

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to group feedback by %s: %w", column, err)
	}

	defer rows.Close()

	for rows.Next() {
		var key string
		var count int

		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan feedback %s count: %w", column, err)
		}

		add(key, count)
	}

	return rows.Err()
}
