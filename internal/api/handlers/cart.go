package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const (
	msgCheckoutSuccess = "Checkout successful"
	msgCheckoutPartial = "Partial checkout - some items could not be processed"
	msgCheckoutFailed  = "Checkout failed - all items could not be processed"
	msgCartEmpty       = "Cart is empty"
)

type CartHandler struct {
	cartService     service.CartService
	checkoutService service.CheckoutService
	validator       *validator.Validate
}

func NewCartHandler(cartService service.CartService, checkoutService service.CheckoutService) *CartHandler {
	return &CartHandler{cartService: cartService, checkoutService: checkoutService, validator: validator.New()}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateItem(r.Context(), claims.UserID, productID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.UserID, productID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		carts, err := h.cartService.History(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, carts)
	}
}

// Checkout answers 200 when every line was bought, 207 when only some were,
// and 400 when none were or the cart is empty.
func (h *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		result, err := h.checkoutService.Checkout(r.Context(), claims.UserID, claims.Email)
		if errors.Is(err, service.ErrEmptyCart) {
			response.WriteJson(w, http.StatusBadRequest, models.CheckoutResponse{Success: false, Message: msgCartEmpty, Result: result})
			return
		}
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Checkout failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		switch {
		case result.Success:
			response.WriteJson(w, http.StatusOK, models.CheckoutResponse{Success: true, Message: msgCheckoutSuccess, Result: result})
		case len(result.SuccessItems) > 0:
			response.WriteJson(w, http.StatusMultiStatus, models.CheckoutResponse{Success: true, Message: msgCheckoutPartial, Result: result})
		default:
			response.WriteJson(w, http.StatusBadRequest, models.CheckoutResponse{Success: false, Message: msgCheckoutFailed, Result: result})
		}
	}
}
