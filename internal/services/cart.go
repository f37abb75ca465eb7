package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	// GetCart returns the user's active cart, creating it on first access.
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.carts.GetActiveCart(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.DatabaseError("Failed to retrieve cart").WithError(err)
	}

	cart = models.NewCart(userID)

	err = s.carts.CreateCart(ctx, cart)
	if err == nil {
		middleware.LoggerFromContext(ctx).Info("Cart created", slog.String("cartId", cart.ID.String()))
		return cart, nil
	}

	// a concurrent request created it first
	if errors.Is(err, repository.ErrDuplicate) {
		cart, err = s.carts.GetActiveCart(ctx, userID)
		if err == nil {
			return cart, nil
		}
	}

	return nil, appErrors.DatabaseError("Failed to create cart").WithError(err)
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	if req.Quantity < 1 {
		return nil, appErrors.AddValidationError("quantity", "must be at least 1")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to retrieve product")
	}

	if !product.IsActive {
		return nil, appErrors.BadRequestError("Product is not available")
	}

	quantity := req.Quantity
	idx := cart.FindItem(product.ID)
	if idx >= 0 {
		quantity += cart.Items[idx].Quantity
	}

	if product.Stock < quantity {
		return nil, appErrors.BadRequestError("Not enough stock available").
			WithFields(appErrors.FieldError{Field: "quantity", Reason: "exceeds available stock"})
	}

	if idx >= 0 {
		// the line keeps the price it was first added at
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].Name = product.Name
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	cart.Recalculate()

	if err := s.carts.UpdateCart(ctx, cart); err != nil {
		return nil, repoError(err, "Cart not found", "Failed to update cart")
	}

	return cart, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, error) {

	if req.Quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, appErrors.NotFoundError("Item not found in the cart")
	}

	stock, err := s.products.GetCurrentStock(ctx, productID)
	if err != nil {
		return nil, repoError(err, "Product not found", "Failed to retrieve product")
	}

	if stock < req.Quantity {
		return nil, appErrors.BadRequestError("Not enough stock available").
			WithFields(appErrors.FieldError{Field: "quantity", Reason: "exceeds available stock"})
	}

	cart.Items[idx].Quantity = req.Quantity
	cart.Recalculate()

	if err := s.carts.UpdateCart(ctx, cart); err != nil {
		return nil, repoError(err, "Cart not found", "Failed to update cart")
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveItem(productID) {
		return nil, appErrors.NotFoundError("Item not found in the cart")
	}

	if err := s.carts.UpdateCart(ctx, cart); err != nil {
		return nil, repoError(err, "Cart not found", "Failed to update cart")
	}

	return cart, nil
}

// ClearCart empties the active cart. The cart itself stays active.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	cart.Recalculate()

	if err := s.carts.UpdateCart(ctx, cart); err != nil {
		return nil, repoError(err, "Cart not found", "Failed to update cart")
	}

	return cart, nil
}

func (s *cartService) History(ctx context.Context, userID uuid.UUID) ([]*models.Cart, error) {

	carts, err := s.carts.ListCompletedCarts(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to retrieve cart history").WithError(err)
	}

	return carts, nil
}
