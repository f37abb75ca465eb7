package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/events"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/pkg/sendgrid"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyCart = errors.New("cart is empty")

const reasonProductNotFound = "product not found"

// Sequencer converts the lines of one cart into stock decrements.
//
// Every line is handled on its own: a line that fails leaves the others
// alone and nothing already decremented is given back. Once all lines are
// done the cart is completed (all succeeded), trimmed to the failed lines
// (some succeeded) or left as it was (none succeeded).
type Sequencer struct {
	carts          repository.CartRepository
	products       repository.ProductRepository
	maxConcurrency int
	now            func() time.Time
}

// NewSequencer bounds per-line work to maxConcurrency goroutines; 1 or less
// processes lines strictly in cart order.
func NewSequencer(carts repository.CartRepository, products repository.ProductRepository, maxConcurrency int) *Sequencer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	return &Sequencer{carts: carts, products: products, maxConcurrency: maxConcurrency, now: time.Now}
}

type lineOutcome struct {
	success *models.CheckoutItem
	failure *models.FailedCheckoutItem
}

// Run checks out the cart as stored when the call starts. Only failing to
// load that cart is an error; per-line problems end up in FailedItems.
func (s *Sequencer) Run(ctx context.Context, cartID uuid.UUID) (*models.CheckoutResult, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.carts.GetCartByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}

	result := &models.CheckoutResult{
		CartID:       cart.ID,
		SuccessItems: []models.CheckoutItem{},
		FailedItems:  []models.FailedCheckoutItem{},
	}

	if cart.IsEmpty() {
		return result, ErrEmptyCart
	}

	outcomes := make([]lineOutcome, len(cart.Items))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	for i, item := range cart.Items {
		g.Go(func() error {
			outcomes[i] = s.processLine(ctx, item)
			return nil
		})
	}

	// lines never report errors to the group
	_ = g.Wait()

	for _, outcome := range outcomes {
		if outcome.success != nil {
			result.SuccessItems = append(result.SuccessItems, *outcome.success)
			continue
		}

		logger.Warn("Checkout line failed",
			slog.String("cartId", cart.ID.String()),
			slog.String("productId", outcome.failure.ProductID.String()),
			slog.String("reason", outcome.failure.Reason),
		)
		result.FailedItems = append(result.FailedItems, *outcome.failure)
	}

	result.Success = len(result.FailedItems) == 0

	switch {
	case result.Success:
		completedAt, err := s.carts.MarkCompleted(ctx, cart.ID, s.now().UTC())
		if err != nil {
			// stock is already taken, the bought lines must not stay in an active cart
			logger.Error("Failed to mark cart completed, removing purchased items instead",
				slog.String("cartId", cart.ID.String()), slog.String("error", err.Error()))
			s.removePurchased(ctx, logger, cart.ID, result.SuccessItems)
			break
		}
		result.CompletedAt = &completedAt

	case len(result.SuccessItems) > 0:
		// second pass, after partitioning: drop what was bought, keep what failed
		s.removePurchased(ctx, logger, cart.ID, result.SuccessItems)
	}

	return result, nil
}

func (s *Sequencer) removePurchased(ctx context.Context, logger *slog.Logger, cartID uuid.UUID, items []models.CheckoutItem) {
	for _, item := range items {
		if err := s.carts.RemoveItem(ctx, cartID, item.Product.ID); err != nil {
			logger.Error("Failed to remove purchased item from cart",
				slog.String("cartId", cartID.String()),
				slog.String("productId", item.Product.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Sequencer) processLine(ctx context.Context, item models.CartItem) lineOutcome {

	fail := func(reason string) lineOutcome {
		return lineOutcome{failure: &models.FailedCheckoutItem{
			Product:   s.snapshot(ctx, item),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Reason:    reason,
		}}
	}

	stock, err := s.products.GetCurrentStock(ctx, item.ProductID)
	if err != nil {
		return fail(lineReason(err))
	}

	if stock < item.Quantity {
		return fail(models.ReasonInsufficientStock)
	}

	// stock may have moved since the read; the conditional decrement decides
	ok, err := s.products.DecrementStockIfAvailable(ctx, item.ProductID, item.Quantity)
	if err != nil {
		return fail(lineReason(err))
	}

	if !ok {
		return fail(models.ReasonInsufficientStock)
	}

	return lineOutcome{success: &models.CheckoutItem{
		Product:  s.snapshot(ctx, item),
		Quantity: item.Quantity,
		Price:    item.Price,
	}}
}

// snapshot loads the product for the result. A missing product still gets a
// minimal record built from the cart line.
func (s *Sequencer) snapshot(ctx context.Context, item models.CartItem) *models.Product {
	product, err := s.products.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return &models.Product{ID: item.ProductID, Name: item.Name}
	}
	return product
}

func lineReason(err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		return reasonProductNotFound
	}
	return err.Error()
}

type CheckoutService interface {
	// Checkout runs the user's active cart through the Sequencer. An empty or
	// missing cart returns an empty result together with ErrEmptyCart.
	Checkout(ctx context.Context, userID uuid.UUID, email string) (*models.CheckoutResult, error)
}

type checkoutService struct {
	carts     repository.CartRepository
	sequencer *Sequencer
	cache     cache.Cache
	publisher events.Publisher
	email     sendgrid.EmailService
}

func NewCheckoutService(carts repository.CartRepository, sequencer *Sequencer, cache cache.Cache, publisher events.Publisher, email sendgrid.EmailService) CheckoutService {
	return &checkoutService{carts: carts, sequencer: sequencer, cache: cache, publisher: publisher, email: email}
}

func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, email string) (*models.CheckoutResult, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.carts.GetActiveCart(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.ObserveCheckout(metrics.CheckoutEmpty, 0, 0)
		return emptyResult(uuid.Nil), ErrEmptyCart
	}
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutError, 0, 0)
		return nil, repoError(err, "Cart not found", "Failed to retrieve cart")
	}

	if cart.IsEmpty() {
		metrics.ObserveCheckout(metrics.CheckoutEmpty, 0, 0)
		return emptyResult(cart.ID), ErrEmptyCart
	}

	result, err := s.sequencer.Run(ctx, cart.ID)
	if errors.Is(err, ErrEmptyCart) {
		metrics.ObserveCheckout(metrics.CheckoutEmpty, 0, 0)
		return emptyResult(cart.ID), ErrEmptyCart
	}
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutError, 0, 0)
		return nil, repoError(err, "Cart not found", "Failed to load cart for checkout")
	}

	outcome := checkoutOutcome(result)
	metrics.ObserveCheckout(outcome, len(result.SuccessItems), len(result.FailedItems))

	logger.Info("Checkout processed",
		slog.String("cartId", result.CartID.String()),
		slog.String("outcome", outcome),
		slog.Int("succeeded", len(result.SuccessItems)),
		slog.Int("failed", len(result.FailedItems)),
	)

	if len(result.SuccessItems) > 0 {
		s.afterPurchase(ctx, userID, email, outcome, result)
	}

	return result, nil
}

// afterPurchase runs the side effects of a checkout that moved stock. None of
// them can change the result.
func (s *checkoutService) afterPurchase(ctx context.Context, userID uuid.UUID, email, outcome string, result *models.CheckoutResult) {

	logger := middleware.LoggerFromContext(ctx)

	keys := make([]string, 0, len(result.SuccessItems)*3)
	for _, item := range result.SuccessItems {
		keys = append(keys, cache.ProductKeys(item.Product)...)
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate product cache after checkout", slog.String("error", err.Error()))
	}

	event := events.CheckoutEvent{
		CartID:      result.CartID,
		UserID:      userID,
		Outcome:     outcome,
		Items:       make([]events.CheckoutEventItem, 0, len(result.SuccessItems)),
		FailedCount: len(result.FailedItems),
		Total:       result.Total(),
		CompletedAt: result.CompletedAt,
		OccurredAt:  time.Now().UTC(),
	}

	for _, item := range result.SuccessItems {
		event.Items = append(event.Items, events.CheckoutEventItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		logger.Warn("Failed to publish checkout event", slog.String("error", err.Error()))
	}

	if email == "" {
		return
	}

	if err := s.email.Send(ctx, purchaseEmail(email, result)); err != nil {
		logger.Warn("Failed to send purchase confirmation", slog.String("error", err.Error()))
	}
}

func emptyResult(cartID uuid.UUID) *models.CheckoutResult {
	return &models.CheckoutResult{
		Success:      false,
		CartID:       cartID,
		SuccessItems: []models.CheckoutItem{},
		FailedItems:  []models.FailedCheckoutItem{},
	}
}

func checkoutOutcome(result *models.CheckoutResult) string {
	switch {
	case len(result.FailedItems) == 0:
		return metrics.CheckoutCompleted
	case len(result.SuccessItems) > 0:
		return metrics.CheckoutPartial
	default:
		return metrics.CheckoutFailed
	}
}
