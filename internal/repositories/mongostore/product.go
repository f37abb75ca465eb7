package mongostore

import (
	"context"
	"fmt"
	"regexp"
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

type productDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Category    string               `bson:"category"`
	ImageURL    string               `bson:"image_url"`
	IsActive    bool                 `bson:"is_active"`
	IsFeatured  bool                 `bson:"is_featured"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newProductDocument(p *models.Product) productDocument {
	return productDocument{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       toDecimal128(p.Price),
		Stock:       p.Stock,
		Category:    string(p.Category),
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDocument) model() (*models.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", d.ID, err)
	}

	return &models.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       fromDecimal128(d.Price),
		Stock:       d.Stock,
		Category:    models.Category(d.Category),
		ImageURL:    d.ImageURL,
		IsActive:    d.IsActive,
		IsFeatured:  d.IsFeatured,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

var productSortFields = map[models.ProductSortField]string{
	models.SortByCreatedAt: "created_at",
	models.SortByName:      "name",
	models.SortByPrice:     "price",
	models.SortByStock:     "stock",
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepo(db *mongo.Database) repository.ProductRepository {
	return &productRepository{collection: db.Collection(productsCollection)}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.collection.InsertOne(dbCtx, newProductDocument(product)); err != nil {
		return fmt.Errorf("failed to insert product: %w", classify(err))
	}

	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var doc productDocument

	if err := r.collection.FindOne(dbCtx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, classify(err)
	}

	return doc.model()
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       toDecimal128(product.Price),
		"stock":       product.Stock,
		"category":    string(product.Category),
		"image_url":   product.ImageURL,
		"is_active":   product.IsActive,
		"is_featured": product.IsFeatured,
		"updated_at":  product.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(dbCtx, bson.M{"_id": product.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(dbCtx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := bson.M{}

	if filter.ActiveOnly {
		query["is_active"] = true
	}

	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}

	if filter.Featured != nil {
		query["is_featured"] = *filter.Featured
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}

	total, err := r.collection.CountDocuments(dbCtx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sortField, ok := productSortFields[filter.SortBy]
	if !ok {
		sortField = "created_at"
	}

	direction := 1
	if filter.Descending {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(models.Offset(filter.Page, filter.Limit))).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(dbCtx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer cursor.Close(dbCtx)

	products := []*models.Product{}

	for cursor.Next(dbCtx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode product: %w", err)
		}

		product, err := doc.model()
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	return products, int(total), nil
}

func (r *productRepository) GetCurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var doc struct {
		Stock int `bson:"stock"`
	}

	opts := options.FindOne().SetProjection(bson.M{"stock": 1})

	if err := r.collection.FindOne(dbCtx, bson.M{"_id": id.String()}, opts).Decode(&doc); err != nil {
		return 0, classify(err)
	}

	return doc.Stock, nil
}

func (r *productRepository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// single-document updates are atomic, so the $gte guard holds under contention
	filter := bson.M{"_id": id.String(), "stock": bson.M{"$gte": quantity}}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(dbCtx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.ModifiedCount == 1 {
		return true, nil
	}

	if err := r.ensureExists(dbCtx, id); err != nil {
		return false, err
	}

	return false, nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id.String()}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument

	err := r.collection.FindOneAndUpdate(dbCtx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.Stock, nil
	}

	if classify(err) != repository.ErrNotFound {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	if err := r.ensureExists(dbCtx, id); err != nil {
		return 0, err
	}

	return 0, repository.ErrInsufficientStock
}

func (r *productRepository) ensureExists(ctx context.Context, id uuid.UUID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}

	if count == 0 {
		return repository.ErrNotFound
	}

	return nil
}
