package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/uploads"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// form fields of a bug report besides the file itself
const multipartOverhead = 1 << 20

type FeedbackHandler struct {
	feedbackService service.FeedbackService
	screenshots     uploads.Store
	validator       *validator.Validate
}

func NewFeedbackHandler(feedbackService service.FeedbackService, screenshots uploads.Store) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, screenshots: screenshots, validator: validator.New()}
}

func (h *FeedbackHandler) CreateFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateFeedbackRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		feedback, err := h.feedbackService.CreateFeedback(r.Context(), &req, optionalClaims(r))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, feedback)
	}
}

func (h *FeedbackHandler) QuickFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.QuickFeedbackRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		feedback, err := h.feedbackService.QuickFeedback(r.Context(), &req, optionalClaims(r))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, feedback)
	}
}

// BugReport takes a multipart form with an optional "screenshot" image.
func (h *FeedbackHandler) BugReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		maxBytes := h.screenshots.MaxBytes()

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

		if err := r.ParseMultipartForm(multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, screenshotTooLarge(maxBytes))
				return
			}
			response.Error(w, appErrors.BadRequestError("Invalid multipart form").WithError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		req := models.BugReportRequest{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			UserEmail:   r.FormValue("user_email"),
			PageURL:     r.FormValue("page_url"),
		}

		if raw := r.FormValue("browser_info"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.BrowserInfo); err != nil {
				response.Error(w, appErrors.AddValidationError("browser_info", "must be a JSON object"))
				return
			}
		}

		if err := utils.ValidateStruct(h.validator, &req); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				response.ValidationError(w, validationErrs)
				return
			}
			response.Error(w, appErrors.ValidationError("Invalid input data"))
			return
		}

		file, _, err := r.FormFile("screenshot")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			response.Error(w, appErrors.BadRequestError("Invalid screenshot upload").WithError(err))
			return
		default:
			defer file.Close()

			path, err := h.screenshots.SaveScreenshot(r.Context(), file)
			switch {
			case errors.Is(err, uploads.ErrNotImage):
				response.Error(w, appErrors.AddValidationError("screenshot", "only image files are allowed"))
				return
			case errors.Is(err, uploads.ErrTooLarge):
				response.Error(w, screenshotTooLarge(maxBytes))
				return
			case err != nil:
				logger.Error("Failed to store screenshot", slog.String("error", err.Error()))
				response.Error(w, appErrors.InternalError("Failed to store screenshot").WithError(err))
				return
			}

			req.Screenshot = path
		}

		feedback, err := h.feedbackService.BugReport(r.Context(), &req, optionalClaims(r))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, feedback)
	}
}

func (h *FeedbackHandler) ListFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		page, limit := utils.ParsePagination(r)
		query := r.URL.Query()

		filter := models.FeedbackFilter{
			Status: models.FeedbackStatus(query.Get("status")),
			Type:   models.FeedbackType(query.Get("type")),
			Page:   page,
			Limit:  limit,
		}

		if filter.Status != "" && !filter.Status.Valid() {
			response.Error(w, appErrors.AddValidationError("status", "must be one of open, in_progress, resolved, closed"))
			return
		}
		if filter.Type != "" && !filter.Type.Valid() {
			response.Error(w, appErrors.AddValidationError("type", "must be one of feedback, bug, feature, other"))
			return
		}

		items, total, err := h.feedbackService.ListFeedback(r.Context(), filter, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(items, total, page, limit))
	}
}

func (h *FeedbackHandler) GetFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		feedback, err := h.feedbackService.GetFeedback(r.Context(), id, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, feedback)
	}
}

func (h *FeedbackHandler) UpdateFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateFeedbackRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		feedback, err := h.feedbackService.UpdateFeedback(r.Context(), id, &req, claims)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, feedback)
	}
}

func (h *FeedbackHandler) DeleteFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.feedbackService.DeleteFeedback(r.Context(), id, claims); err != nil {
			response.Error(w, err)
			return
		}

		response.Message(w, http.StatusOK, "Feedback deleted successfully")
	}
}

func (h *FeedbackHandler) ResolveFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.ResolveFeedbackRequest

		// an empty body resolves without a response
		if r.ContentLength != 0 && !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		feedback, err := h.feedbackService.ResolveFeedback(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, feedback)
	}
}

func (h *FeedbackHandler) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		stats, err := h.feedbackService.GetStats(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}

func screenshotTooLarge(maxBytes int64) *appErrors.AppError {
	return appErrors.AddValidationError("screenshot", fmt.Sprintf("must be at most %d MB", maxBytes>>20))
}
