package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/services/mocks"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/testutils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCartTest(t *testing.T) (*mocks.CartService, *mocks.CheckoutService, *handlers.CartHandler) {
	mockCartService := mocks.NewCartService(t)
	mockCheckoutService := mocks.NewCheckoutService(t)
	return mockCartService, mockCheckoutService, handlers.NewCartHandler(mockCartService, mockCheckoutService)
}

func decodeAPIResponse(t *testing.T, rr *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp
}

func decodeCheckoutResponse(t *testing.T, rr *httptest.ResponseRecorder) models.CheckoutResponse {
	t.Helper()

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewBuffer(body)
}

func TestGetCart(t *testing.T) {
	t.Run("Success - Retrieve Cart", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/cart", nil, userID, nil)
		rr := httptest.NewRecorder()

		cart := models.NewCart(userID)
		mockCartService.On("GetCart", mock.Anything, userID).Return(cart, nil).Once()

		// Act
		cartHandler.GetCart()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeAPIResponse(t, rr)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		_, _, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/cart", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.GetCart()(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		resp := decodeAPIResponse(t, rr)
		assert.Equal(t, appErrors.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("Failure - Service Error", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/cart", nil, userID, nil)
		rr := httptest.NewRecorder()

		mockCartService.On("GetCart", mock.Anything, userID).Return(nil, appErrors.DatabaseError("Failed to fetch cart")).Once()

		// Act
		cartHandler.GetCart()(rr, req)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, decodeAPIResponse(t, rr).Error.Code)
	})
}

func TestAddItem(t *testing.T) {
	t.Run("Success - Item Added", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		addReq := models.AddItemRequest{ProductID: uuid.New(), Quantity: 2}
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), userID, nil)
		rr := httptest.NewRecorder()

		cart := models.NewCart(userID)
		cart.Items = []models.CartItem{{ProductID: addReq.ProductID, Name: "Go Book", Quantity: 2, Price: decimal.NewFromInt(30)}}
		cart.Recalculate()

		mockCartService.On("AddItem", mock.Anything, userID, &addReq).Return(cart, nil).Once()

		// Act
		cartHandler.AddItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decodeAPIResponse(t, rr).Success)
	})

	t.Run("Failure - Quantity Below One", func(t *testing.T) {
		// Arrange
		_, _, cartHandler := setupCartTest(t)
		body := jsonBody(t, models.AddItemRequest{ProductID: uuid.New(), Quantity: 0})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", body, uuid.New(), nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeAPIResponse(t, rr).Error.Code)
	})

	t.Run("Failure - Malformed JSON", func(t *testing.T) {
		// Arrange
		_, _, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"), uuid.New(), nil)
		rr := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeBadRequest, decodeAPIResponse(t, rr).Error.Code)
	})

	t.Run("Failure - Not Enough Stock", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		addReq := models.AddItemRequest{ProductID: uuid.New(), Quantity: 50}
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), userID, nil)
		rr := httptest.NewRecorder()

		mockCartService.On("AddItem", mock.Anything, userID, &addReq).Return(nil, appErrors.ConflictError("Insufficient stock")).Once()

		// Act
		cartHandler.AddItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUpdateAndRemoveItem(t *testing.T) {
	t.Run("Success - Quantity Updated", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID, productID := uuid.New(), uuid.New()
		updateReq := models.UpdateItemRequest{Quantity: 3}
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/cart/items/"+productID.String(),
			jsonBody(t, updateReq), userID, map[string]string{"productId": productID.String()})
		rr := httptest.NewRecorder()

		mockCartService.On("UpdateItem", mock.Anything, userID, productID, &updateReq).Return(models.NewCart(userID), nil).Once()

		// Act
		cartHandler.UpdateItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Invalid Product ID", func(t *testing.T) {
		// Arrange
		_, _, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart/items/nope", nil, uuid.New(),
			map[string]string{"productId": "nope"})
		rr := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Success - Item Removed", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID, productID := uuid.New(), uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil, userID,
			map[string]string{"productId": productID.String()})
		rr := httptest.NewRecorder()

		mockCartService.On("RemoveItem", mock.Anything, userID, productID).Return(models.NewCart(userID), nil).Once()

		// Act
		cartHandler.RemoveItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Line Not In Cart", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID, productID := uuid.New(), uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil, userID,
			map[string]string{"productId": productID.String()})
		rr := httptest.NewRecorder()

		mockCartService.On("RemoveItem", mock.Anything, userID, productID).Return(nil, appErrors.NotFoundError("Item not in cart")).Once()

		// Act
		cartHandler.RemoveItem()(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestClearCartAndHistory(t *testing.T) {
	t.Run("Success - Cart Cleared", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/cart", nil, userID, nil)
		rr := httptest.NewRecorder()

		mockCartService.On("ClearCart", mock.Anything, userID).Return(models.NewCart(userID), nil).Once()

		// Act
		cartHandler.ClearCart()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - History Listed", func(t *testing.T) {
		// Arrange
		mockCartService, _, cartHandler := setupCartTest(t)
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/cart/history", nil, userID, nil)
		rr := httptest.NewRecorder()

		done := models.NewCart(userID)
		done.Status = models.CartStatusCompleted
		mockCartService.On("History", mock.Anything, userID).Return([]*models.Cart{done}, nil).Once()

		// Act
		cartHandler.History()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeAPIResponse(t, rr)
		assert.Len(t, resp.Data, 1)
	})
}

func checkoutRequest(userID uuid.UUID) *http.Request {
	return testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/cart/checkout", nil, userID, nil)
}

func checkoutLine(name string, qty int) models.CheckoutItem {
	return models.CheckoutItem{
		Product:  &models.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(10)},
		Quantity: qty,
		Price:    decimal.NewFromInt(10),
	}
}

func failedLine(name string, qty int) models.FailedCheckoutItem {
	id := uuid.New()
	return models.FailedCheckoutItem{
		Product:   &models.Product{ID: id, Name: name},
		ProductID: id,
		Quantity:  qty,
		Reason:    models.ReasonInsufficientStock,
	}
}

func TestCheckout(t *testing.T) {
	t.Run("Success - Every Line Bought", func(t *testing.T) {
		// Arrange
		_, mockCheckoutService, cartHandler := setupCartTest(t)
		userID := uuid.New()
		rr := httptest.NewRecorder()
		now := time.Now()

		result := &models.CheckoutResult{
			Success:      true,
			CartID:       uuid.New(),
			SuccessItems: []models.CheckoutItem{checkoutLine("A", 1), checkoutLine("B", 2)},
			FailedItems:  []models.FailedCheckoutItem{},
			CompletedAt:  &now,
		}
		mockCheckoutService.On("Checkout", mock.Anything, userID, testutils.TestEmail).Return(result, nil).Once()

		// Act
		cartHandler.Checkout()(rr, checkoutRequest(userID))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeCheckoutResponse(t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "Checkout successful", resp.Message)
		require.NotNil(t, resp.Result)
		assert.Len(t, resp.Result.SuccessItems, 2)
		assert.Empty(t, resp.Result.FailedItems)
		assert.NotNil(t, resp.Result.CompletedAt)
	})

	t.Run("Success - Partial Checkout Is Multi Status", func(t *testing.T) {
		// Arrange
		_, mockCheckoutService, cartHandler := setupCartTest(t)
		userID := uuid.New()
		rr := httptest.NewRecorder()

		result := &models.CheckoutResult{
			Success:      false,
			CartID:       uuid.New(),
			SuccessItems: []models.CheckoutItem{checkoutLine("A", 1)},
			FailedItems:  []models.FailedCheckoutItem{failedLine("B", 5)},
		}
		mockCheckoutService.On("Checkout", mock.Anything, userID, testutils.TestEmail).Return(result, nil).Once()

		// Act
		cartHandler.Checkout()(rr, checkoutRequest(userID))

		// Assert
		assert.Equal(t, http.StatusMultiStatus, rr.Code)
		resp := decodeCheckoutResponse(t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "Partial checkout - some items could not be processed", resp.Message)
		require.Len(t, resp.Result.FailedItems, 1)
		assert.Equal(t, models.ReasonInsufficientStock, resp.Result.FailedItems[0].Reason)

		var raw struct {
			Result struct {
				FailedItems []map[string]any `json:"failedItems"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
		require.Len(t, raw.Result.FailedItems, 1)
		assert.Equal(t, result.FailedItems[0].ProductID.String(), raw.Result.FailedItems[0]["productId"])
		assert.NotContains(t, raw.Result.FailedItems[0], "product_id")
	})

	t.Run("Failure - Nothing Bought", func(t *testing.T) {
		// Arrange
		_, mockCheckoutService, cartHandler := setupCartTest(t)
		userID := uuid.New()
		rr := httptest.NewRecorder()

		result := &models.CheckoutResult{
			CartID:       uuid.New(),
			SuccessItems: []models.CheckoutItem{},
			FailedItems:  []models.FailedCheckoutItem{failedLine("A", 1), failedLine("B", 1)},
		}
		mockCheckoutService.On("Checkout", mock.Anything, userID, testutils.TestEmail).Return(result, nil).Once()

		// Act
		cartHandler.Checkout()(rr, checkoutRequest(userID))

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeCheckoutResponse(t, rr)
		assert.False(t, resp.Success)
		assert.Equal(t, "Checkout failed - all items could not be processed", resp.Message)
		assert.Len(t, resp.Result.FailedItems, 2)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		_, mockCheckoutService, cartHandler := setupCartTest(t)
		userID := uuid.New()
		rr := httptest.NewRecorder()

		result := &models.CheckoutResult{SuccessItems: []models.CheckoutItem{}, FailedItems: []models.FailedCheckoutItem{}}
		mockCheckoutService.On("Checkout", mock.Anything, userID, testutils.TestEmail).Return(result, service.ErrEmptyCart).Once()

		// Act
		cartHandler.Checkout()(rr, checkoutRequest(userID))

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeCheckoutResponse(t, rr)
		assert.False(t, resp.Success)
		assert.Equal(t, "Cart is empty", resp.Message)
		require.NotNil(t, resp.Result)
		assert.Empty(t, resp.Result.SuccessItems)
		assert.Empty(t, resp.Result.FailedItems)
	})

	t.Run("Failure - Cart Could Not Be Loaded", func(t *testing.T) {
		// Arrange
		_, mockCheckoutService, cartHandler := setupCartTest(t)
		userID := uuid.New()
		rr := httptest.NewRecorder()

		mockCheckoutService.On("Checkout", mock.Anything, userID, testutils.TestEmail).
			Return(nil, appErrors.DatabaseError("Failed to load cart").WithError(errors.New("timeout"))).Once()

		// Act
		cartHandler.Checkout()(rr, checkoutRequest(userID))

		// Assert
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, decodeAPIResponse(t, rr).Error.Code)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		_, _, cartHandler := setupCartTest(t)
		rr := httptest.NewRecorder()
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/cart/checkout", nil, nil)

		// Act
		cartHandler.Checkout()(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
