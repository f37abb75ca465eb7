package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
)

// requireClaims writes a 401 and returns false when the request carries no claims.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Warn("Unauthorized access attempt")
		response.Error(w, appErrors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// optionalClaims returns nil for anonymous requests.
func optionalClaims(r *http.Request) *models.Claims {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	return claims
}
