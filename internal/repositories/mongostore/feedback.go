package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type feedbackDocument struct {
	ID            string         `bson:"_id"`
	Title         string         `bson:"title"`
	Description   string         `bson:"description"`
	Type          string         `bson:"type"`
	Rating        *int           `bson:"rating,omitempty"`
	Status        string         `bson:"status"`
	UserID        string         `bson:"user_id,omitempty"`
	UserEmail     string         `bson:"user_email"`
	PageURL       string         `bson:"page_url"`
	BrowserInfo   map[string]any `bson:"browser_info,omitempty"`
	Screenshot    string         `bson:"screenshot"`
	AdminResponse string         `bson:"admin_response"`
	CreatedAt     time.Time      `bson:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at"`
	ResolvedAt    *time.Time     `bson:"resolved_at,omitempty"`
}

func newFeedbackDocument(f *models.Feedback) feedbackDocument {
	doc := feedbackDocument{
		ID:            f.ID.String(),
		Title:         f.Title,
		Description:   f.Description,
		Type:          string(f.Type),
		Rating:        f.Rating,
		Status:        string(f.Status),
		UserEmail:     f.UserEmail,
		PageURL:       f.PageURL,
		BrowserInfo:   f.BrowserInfo,
		Screenshot:    f.Screenshot,
		AdminResponse: f.AdminResponse,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
		ResolvedAt:    f.ResolvedAt,
	}

	if f.UserID != nil {
		doc.UserID = f.UserID.String()
	}

	return doc
}

func (d feedbackDocument) model() (*models.Feedback, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid feedback id %q: %w", d.ID, err)
	}

	feedback := &models.Feedback{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		Type:          models.FeedbackType(d.Type),
		Rating:        d.Rating,
		Status:        models.FeedbackStatus(d.Status),
		UserEmail:     d.UserEmail,
		PageURL:       d.PageURL,
		BrowserInfo:   d.BrowserInfo,
		Screenshot:    d.Screenshot,
		AdminResponse: d.AdminResponse,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		ResolvedAt:    d.ResolvedAt,
	}

	if d.UserID != "" {
		userID, err := uuid.Parse(d.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid feedback user id %q: %w", d.UserID, err)
		}
		feedback.UserID = &userID
	}

	return feedback, nil
}

type feedbackRepository struct {
	collection *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) repository.FeedbackRepository {
	return &feedbackRepository{collection: db.Collection(feedbackCollection)}
}

func (r *feedbackRepository) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	if _, err := r.collection.InsertOne(dbCtx, newFeedbackDocument(feedback)); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", classify(err))
	}

	return nil
}

func (r *feedbackRepository) GetFeedbackByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var doc feedbackDocument

	if err := r.collection.FindOne(dbCtx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, classify(err)
	}

	return doc.model()
}

func (r *feedbackRepository) ListFeedback(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := bson.M{}

	if filter.UserID != nil {
		query["user_id"] = filter.UserID.String()
	}

	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}

	total, err := r.collection.CountDocuments(dbCtx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(models.Offset(filter.Page, filter.Limit))).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(dbCtx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	defer cursor.Close(dbCtx)

	var docs []feedbackDocument
	if err := cursor.All(dbCtx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode feedback: %w", err)
	}

	items := make([]*models.Feedback, 0, len(docs))

	for _, doc := range docs {
		feedback, err := doc.model()
		if err != nil {
			return nil, 0, err
		}
		items = append(items, feedback)
	}

	return items, int(total), nil
}

func (r *feedbackRepository) UpdateFeedback(ctx context.Context, feedback *models.Feedback) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	feedback.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"title":          feedback.Title,
		"description":    feedback.Description,
		"type":           string(feedback.Type),
		"status":         string(feedback.Status),
		"admin_response": feedback.AdminResponse,
		"updated_at":     feedback.UpdatedAt,
	}
	unset := bson.M{}

	if feedback.Rating != nil {
		set["rating"] = *feedback.Rating
	} else {
		unset["rating"] = ""
	}

	if feedback.ResolvedAt != nil {
		set["resolved_at"] = feedback.ResolvedAt.UTC()
	} else {
		unset["resolved_at"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(dbCtx, bson.M{"_id": feedback.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *feedbackRepository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(dbCtx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int    `bson:"count"`
}

func (r *feedbackRepository) GetFeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	countBy := func(field string) bson.A {
		return bson.A{bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"overall": bson.A{bson.M{"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": 1},
				"avg":   bson.M{"$avg": "$rating"},
			}}},
			"by_status": countBy("status"),
			"by_type":   countBy("type"),
		}}},
	}

	cursor, err := r.collection.Aggregate(dbCtx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback: %w", err)
	}

	defer cursor.Close(dbCtx)

	var facets []struct {
		Overall []struct {
			Total int      `bson:"total"`
			Avg   *float64 `bson:"avg"`
		} `bson:"overall"`
		ByStatus []groupCount `bson:"by_status"`
		ByType   []groupCount `bson:"by_type"`
	}

	if err := cursor.All(dbCtx, &facets); err != nil {
		return nil, fmt.Errorf("failed to decode feedback stats: %w", err)
	}

	stats := &models.FeedbackStats{
		ByStatus: make(map[models.FeedbackStatus]int),
		ByType:   make(map[models.FeedbackType]int),
	}

	if len(facets) == 0 {
		return stats, nil
	}

	if overall := facets[0].Overall; len(overall) > 0 {
		stats.Total = overall[0].Total
		if overall[0].Avg != nil {
			stats.AverageRating = *overall[0].Avg
		}
	}

	for _, group := range facets[0].ByStatus {
		stats.ByStatus[models.FeedbackStatus(group.Key)] = group.Count
	}

	for _, group := range facets[0].ByType {
		stats.ByType[models.FeedbackType(group.Key)] = group.Count
	}

	return stats, nil
}
