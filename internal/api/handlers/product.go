package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Product created", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Product deleted successfully")
	}
}

func (h *ProductHandler) AdjustStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.AdjustStockRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.AdjustStock(r.Context(), id, req.Delta)
		if err != nil {
			response.Error(w, err)
			return
		}

		middleware.LoggerFromContext(r.Context()).Info("Stock adjusted",
			slog.String("productId", id.String()), slog.Int("delta", req.Delta), slog.Int("stock", product.Stock))
		response.Success(w, http.StatusOK, product)
	}
}

// for eg: GET /products?page=1&limit=10&sortBy=price&sortOrder=desc&category=books&q=go
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter, err := parseProductFilter(r)
		if err != nil {
			response.Error(w, err)
			return
		}

		if category := r.URL.Query().Get("category"); category != "" {
			filter.Category = models.Category(category)
			if !filter.Category.Valid() {
				response.Error(w, appErrors.AddValidationError("category", "is not a known category"))
				return
			}
		}

		products, total, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, filter.Page, filter.Limit))
	}
}

func (h *ProductHandler) FeaturedProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter, err := parseProductFilter(r)
		if err != nil {
			response.Error(w, err)
			return
		}

		products, total, err := h.productService.GetFeaturedProducts(r.Context(), filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, filter.Page, filter.Limit))
	}
}

func (h *ProductHandler) ProductsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter, err := parseProductFilter(r)
		if err != nil {
			response.Error(w, err)
			return
		}

		category := models.Category(strings.ToLower(r.PathValue("category")))

		products, total, err := h.productService.GetProductsByCategory(r.Context(), category, filter)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, filter.Page, filter.Limit))
	}
}

func parseProductFilter(r *http.Request) (models.ProductFilter, error) {

	query := r.URL.Query()
	page, limit := utils.ParsePagination(r)

	// the public catalogue never lists inactive products
	filter := models.ProductFilter{
		Page:       page,
		Limit:      limit,
		Search:     strings.TrimSpace(query.Get("q")),
		ActiveOnly: true,
	}

	switch sortBy := models.ProductSortField(query.Get("sortBy")); sortBy {
	case "":
	case models.SortByCreatedAt, models.SortByName, models.SortByPrice, models.SortByStock:
		filter.SortBy = sortBy
	default:
		return filter, appErrors.AddValidationError("sortBy", "must be one of created_at, name, price, stock")
	}

	switch strings.ToLower(query.Get("sortOrder")) {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		return filter, appErrors.AddValidationError("sortOrder", "must be asc or desc")
	}

	return filter, nil
}
