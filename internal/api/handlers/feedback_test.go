package handlers_test

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/services/mocks"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/testutils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/uploads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupFeedbackTest(t *testing.T, maxBytes int64) (*mocks.FeedbackService, *handlers.FeedbackHandler) {
	store, err := uploads.NewDiskStore(config.Uploads{Dir: t.TempDir(), MaxBytes: maxBytes})
	require.NoError(t, err)

	mockFeedbackService := mocks.NewFeedbackService(t)
	return mockFeedbackService, handlers.NewFeedbackHandler(mockFeedbackService, store)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	return buf.Bytes()
}

type formFile struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	if file != nil {
		part, err := writer.CreateFormFile("screenshot", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestCreateFeedback(t *testing.T) {
	t.Run("Success - Anonymous Feedback", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		rating := 5
		createReq := models.CreateFeedbackRequest{Title: "Great", Description: "Checkout was quick", Rating: &rating}
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback", jsonBody(t, createReq), nil)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("CreateFeedback", mock.Anything, &createReq, (*models.Claims)(nil)).
			Return(&models.Feedback{ID: uuid.New(), Title: "Great", Status: models.FeedbackStatusOpen}, nil).Once()

		// Act
		feedbackHandler.CreateFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Success - Attributed To Caller", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		userID := uuid.New()
		createReq := models.CreateFeedbackRequest{Title: "Idea", Description: "Wishlists please", Type: models.FeedbackTypeFeature}
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/feedback", jsonBody(t, createReq), userID, nil)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("CreateFeedback", mock.Anything, &createReq, mock.MatchedBy(func(c *models.Claims) bool {
			return c != nil && c.UserID == userID
		})).Return(&models.Feedback{ID: uuid.New(), UserID: &userID}, nil).Once()

		// Act
		feedbackHandler.CreateFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Failure - Unknown Type", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body := jsonBody(t, map[string]any{"title": "x", "description": "y", "type": "rant"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback", body, nil)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.CreateFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Quick Rating Out Of Range", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/quick",
			jsonBody(t, models.QuickFeedbackRequest{Rating: 9}), nil)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.QuickFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeAPIResponse(t, rr).Error.Code)
	})

	t.Run("Success - Quick Rating", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		quickReq := models.QuickFeedbackRequest{Rating: 4, PageURL: "/checkout"}
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/quick", jsonBody(t, quickReq), nil)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("QuickFeedback", mock.Anything, &quickReq, (*models.Claims)(nil)).
			Return(&models.Feedback{ID: uuid.New()}, nil).Once()

		// Act
		feedbackHandler.QuickFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestBugReport(t *testing.T) {
	fields := map[string]string{
		"title":        "Checkout button dead",
		"description":  "Nothing happens on click",
		"page_url":     "/cart",
		"browser_info": `{"ua":"firefox"}`,
	}

	t.Run("Success - With Screenshot", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body, contentType := multipartBody(t, fields, &formFile{name: "shot.png", content: pngBytes(t)})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("BugReport", mock.Anything, mock.MatchedBy(func(r *models.BugReportRequest) bool {
			return r.Title == fields["title"] &&
				r.BrowserInfo["ua"] == "firefox" &&
				strings.HasPrefix(r.Screenshot, "/uploads/screenshots/") &&
				strings.HasSuffix(r.Screenshot, ".png")
		}), (*models.Claims)(nil)).Return(&models.Feedback{ID: uuid.New(), Type: models.FeedbackTypeBug}, nil).Once()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Success - Without Screenshot", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body, contentType := multipartBody(t, fields, nil)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("BugReport", mock.Anything, mock.MatchedBy(func(r *models.BugReportRequest) bool {
			return r.Screenshot == ""
		}), (*models.Claims)(nil)).Return(&models.Feedback{ID: uuid.New()}, nil).Once()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Failure - Screenshot Is Not An Image", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body, contentType := multipartBody(t, fields, &formFile{name: "shot.png", content: []byte("#!/bin/sh\necho hi\n")})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeAPIResponse(t, rr)
		require.Len(t, resp.Error.Fields, 1)
		assert.Equal(t, "screenshot", resp.Error.Fields[0].Field)
	})

	t.Run("Failure - Screenshot Too Large", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 32)
		body, contentType := multipartBody(t, fields, &formFile{name: "shot.png", content: pngBytes(t)})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Missing Title", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body, contentType := multipartBody(t, map[string]string{"description": "d"}, nil)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeAPIResponse(t, rr).Error.Code)
	})

	t.Run("Failure - Browser Info Not JSON", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		body, contentType := multipartBody(t, map[string]string{"title": "t", "description": "d", "browser_info": "{oops"}, nil)
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/feedback/bug-report", body, nil)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.BugReport()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFeedbackAccess(t *testing.T) {
	t.Run("Failure - Listing Requires Authentication", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/feedback", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.ListFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Success - Listing Filter From Query", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		userID := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/feedback?status=open&type=bug&page=1&limit=10", nil, userID, nil)
		rr := httptest.NewRecorder()

		expected := models.FeedbackFilter{Status: models.FeedbackStatusOpen, Type: models.FeedbackTypeBug, Page: 1, Limit: 10}
		mockFeedbackService.On("ListFeedback", mock.Anything, expected, mock.AnythingOfType("*models.Claims")).
			Return([]*models.Feedback{{ID: uuid.New()}}, 1, nil).Once()

		// Act
		feedbackHandler.ListFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Unknown Status Filter", func(t *testing.T) {
		// Arrange
		_, feedbackHandler := setupFeedbackTest(t, 1<<20)
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/feedback?status=pending", nil, uuid.New(), nil)
		rr := httptest.NewRecorder()

		// Act
		feedbackHandler.ListFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Someone Else's Feedback", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		id := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/feedback/"+id.String(), nil, uuid.New(),
			map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		mockFeedbackService.On("GetFeedback", mock.Anything, id, mock.Anything).
			Return(nil, appErrors.ForbiddenError("You do not have access to this feedback")).Once()

		// Act
		feedbackHandler.GetFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Success - Feedback Updated", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		id := uuid.New()
		title := "Updated title"
		req := testutils.CreateTestRequestWithContext(http.MethodPut, "/api/v1/feedback/"+id.String(),
			jsonBody(t, models.UpdateFeedbackRequest{Title: &title}), uuid.New(), map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		mockFeedbackService.On("UpdateFeedback", mock.Anything, id, mock.MatchedBy(func(r *models.UpdateFeedbackRequest) bool {
			return r.Title != nil && *r.Title == title
		}), mock.Anything).Return(&models.Feedback{ID: id, Title: title}, nil).Once()

		// Act
		feedbackHandler.UpdateFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - Feedback Deleted", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		id := uuid.New()
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/feedback/"+id.String(), nil, uuid.New(),
			map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		mockFeedbackService.On("DeleteFeedback", mock.Anything, id, mock.Anything).Return(nil).Once()

		// Act
		feedbackHandler.DeleteFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Feedback deleted successfully", decodeAPIResponse(t, rr).Message)
	})
}

func TestResolveAndStats(t *testing.T) {
	t.Run("Success - Resolved With Response", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		id := uuid.New()
		resolveReq := models.ResolveFeedbackRequest{AdminResponse: "Fixed in the latest release"}
		req := testutils.CreateTestRequestWithRole(http.MethodPost, "/api/v1/feedback/"+id.String()+"/resolve",
			jsonBody(t, resolveReq), uuid.New(), models.RoleAdmin, map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		mockFeedbackService.On("ResolveFeedback", mock.Anything, id, &resolveReq).
			Return(&models.Feedback{ID: id, Status: models.FeedbackStatusResolved}, nil).Once()

		// Act
		feedbackHandler.ResolveFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - Resolved Without Body", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		id := uuid.New()
		req := testutils.CreateTestRequestWithRole(http.MethodPost, "/api/v1/feedback/"+id.String()+"/resolve",
			nil, uuid.New(), models.RoleAdmin, map[string]string{"id": id.String()})
		rr := httptest.NewRecorder()

		mockFeedbackService.On("ResolveFeedback", mock.Anything, id, &models.ResolveFeedbackRequest{}).
			Return(&models.Feedback{ID: id, Status: models.FeedbackStatusResolved}, nil).Once()

		// Act
		feedbackHandler.ResolveFeedback()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - Stats", func(t *testing.T) {
		// Arrange
		mockFeedbackService, feedbackHandler := setupFeedbackTest(t, 1<<20)
		req := testutils.CreateTestRequestWithRole(http.MethodGet, "/api/v1/feedback/stats", nil, uuid.New(), models.RoleAdmin, nil)
		rr := httptest.NewRecorder()

		mockFeedbackService.On("GetStats", mock.Anything).Return(&models.FeedbackStats{Total: 3, AverageRating: 4.3}, nil).Once()

		// Act
		feedbackHandler.Stats()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		data, ok := decodeAPIResponse(t, rr).Data.(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 3, data["total"])
	})
}
