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

type userDocument struct {
	ID                   string     `bson:"_id"`
	Username             string     `bson:"username"`
	Email                string     `bson:"email"`
	Password             string     `bson:"password"`
	Role                 string     `bson:"role"`
	IsActive             bool       `bson:"is_active"`
	ResetPasswordToken   string     `bson:"reset_password_token,omitempty"`
	ResetPasswordExpires *time.Time `bson:"reset_password_expires,omitempty"`
	CreatedAt            time.Time  `bson:"created_at"`
	UpdatedAt            time.Time  `bson:"updated_at"`
}

func (d userDocument) model() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}

	return &models.User{
		ID:                   id,
		Username:             d.Username,
		Email:                d.Email,
		Password:             d.Password,
		Role:                 models.Role(d.Role),
		IsActive:             d.IsActive,
		ResetPasswordToken:   d.ResetPasswordToken,
		ResetPasswordExpires: d.ResetPasswordExpires,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}, nil
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) repository.UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc := userDocument{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(dbCtx, doc); err != nil {
		return classify(err)
	}

	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var doc userDocument

	if err := r.collection.FindOne(dbCtx, filter).Decode(&doc); err != nil {
		return nil, classify(err)
	}

	return doc.model()
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *userRepository) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	total, err := r.collection.CountDocuments(dbCtx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(models.Offset(page, limit))).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(dbCtx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	defer cursor.Close(dbCtx)

	var docs []userDocument
	if err := cursor.All(dbCtx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*models.User, 0, len(docs))

	for _, doc := range docs {
		user, err := doc.model()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, int(total), nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	return r.updateOne(ctx, user.ID, bson.M{"$set": bson.M{
		"username":   user.Username,
		"email":      user.Email,
		"role":       string(user.Role),
		"is_active":  user.IsActive,
		"updated_at": user.UpdatedAt,
	}})
}

func (r *userRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(dbCtx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"reset_password_token":   tokenHash,
		"reset_password_expires": expires.UTC(),
		"updated_at":             time.Now().UTC(),
	}})
}

func (r *userRepository) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":   tokenHash,
		"reset_password_expires": bson.M{"$gt": time.Now().UTC()},
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_password_token": "", "reset_password_expires": ""},
	})
}

func (r *userRepository) updateOne(ctx context.Context, id uuid.UUID, update bson.M) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.collection.UpdateOne(dbCtx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return classify(err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}
