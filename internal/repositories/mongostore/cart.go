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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartItemDocument struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

type cartDocument struct {
	ID          string               `bson:"_id"`
	UserID      string               `bson:"user_id"`
	Status      string               `bson:"status"`
	Items       []cartItemDocument   `bson:"items"`
	Total       primitive.Decimal128 `bson:"total"`
	CompletedAt *time.Time           `bson:"completed_at,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newCartItemDocuments(items []models.CartItem) []cartItemDocument {
	docs := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, cartItemDocument{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     toDecimal128(item.Price),
		})
	}
	return docs
}

func (d cartDocument) model() (*models.Cart, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", d.ID, err)
	}

	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart user id %q: %w", d.UserID, err)
	}

	cart := &models.Cart{
		ID:          id,
		UserID:      userID,
		Status:      models.CartStatus(d.Status),
		Items:       make([]models.CartItem, 0, len(d.Items)),
		Total:       fromDecimal128(d.Total),
		CompletedAt: d.CompletedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	for _, item := range d.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid cart item product id %q: %w", item.ProductID, err)
		}

		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     fromDecimal128(item.Price),
		})
	}

	return cart, nil
}

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepo(db *mongo.Database) repository.CartRepository {
	return &cartRepository{collection: db.Collection(cartsCollection)}
}

func (r *cartRepository) findOne(ctx context.Context, filter bson.M) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var doc cartDocument

	if err := r.collection.FindOne(dbCtx, filter).Decode(&doc); err != nil {
		return nil, classify(err)
	}

	return doc.model()
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now

	doc := cartDocument{
		ID:        cart.ID.String(),
		UserID:    cart.UserID.String(),
		Status:    string(cart.Status),
		Items:     newCartItemDocuments(cart.Items),
		Total:     toDecimal128(cart.Total),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(dbCtx, doc); err != nil {
		return classify(err)
	}

	return nil
}

func (r *cartRepository) GetActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return r.findOne(ctx, bson.M{"user_id": userID.String(), "status": string(models.CartStatusActive)})
}

func (r *cartRepository) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	cart.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": cart.ID.String(), "status": string(models.CartStatusActive)}
	update := bson.M{"$set": bson.M{
		"items":      newCartItemDocuments(cart.Items),
		"total":      toDecimal128(cart.Total),
		"updated_at": cart.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(dbCtx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// pipeline update: filter the line out and recompute the total in one write
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"items": bson.M{"$filter": bson.M{
				"input": "$items",
				"cond":  bson.M{"$ne": bson.A{"$$this.product_id", productID.String()}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"total": bson.M{"$toDecimal": bson.M{"$sum": bson.M{"$map": bson.M{
				"input": "$items",
				"in":    bson.M{"$multiply": bson.A{"$$this.price", "$$this.quantity"}},
			}}}},
			"updated_at": "$$NOW",
		}}},
	}

	result, err := r.collection.UpdateOne(dbCtx, bson.M{"_id": cartID.String()}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *cartRepository) MarkCompleted(ctx context.Context, cartID uuid.UUID, at time.Time) (time.Time, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"status":       string(models.CartStatusCompleted),
			"completed_at": bson.M{"$ifNull": bson.A{"$completed_at", at.UTC()}},
			"updated_at":   "$$NOW",
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc cartDocument

	if err := r.collection.FindOneAndUpdate(dbCtx, bson.M{"_id": cartID.String()}, pipeline, opts).Decode(&doc); err != nil {
		return time.Time{}, classify(err)
	}

	if doc.CompletedAt == nil {
		return time.Time{}, fmt.Errorf("cart %s has no completion time after update", cartID)
	}

	return *doc.CompletedAt, nil
}

func (r *cartRepository) ListCompletedCarts(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID.String(), "status": string(models.CartStatusCompleted)}
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}})

	cursor, err := r.collection.Find(dbCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}

	defer cursor.Close(dbCtx)

	var docs []cartDocument
	if err := cursor.All(dbCtx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode carts: %w", err)
	}

	carts := make([]*models.Cart, 0, len(docs))

	for _, doc := range docs {
		cart, err := doc.model()
		if err != nil {
			return nil, err
		}

		carts = append(carts, cart)
	}

	return carts, nil
}
