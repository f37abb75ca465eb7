package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey uuid.UUID

var UserContextKey = contextKey(uuid.New())

type AuthMiddleware struct {
	jwtKey []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {

	return &AuthMiddleware{
		jwtKey: jwtKey,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}

}

// ClaimsFromContext returns the claims Authenticate or OptionalAuthenticate
// stored for the request.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok && claims != nil
}

// WithClaims stores claims the way Authenticate does.
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		claims, appErr := m.parse(r.Context(), authHeader)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.attach(r.Context(), claims)))
	}
}

// OptionalAuthenticate attaches claims when a valid token is sent and lets
// anonymous requests through untouched. A token that is sent but invalid is
// still rejected.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, appErr := m.parse(r.Context(), authHeader)
		if appErr != nil {
			response.Error(w, appErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.attach(r.Context(), claims)))
	}
}

// RequireAdmin authenticates the request and rejects non-admin callers.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.HandlerFunc {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		claims, _ := ClaimsFromContext(r.Context())

		if !claims.IsAdmin() {
			LoggerFromContext(r.Context()).Warn("Admin access denied", slog.String("role", string(claims.Role)))
			response.Error(w, errors.ForbiddenError("Admin access required"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}

func (m *AuthMiddleware) parse(ctx context.Context, authHeader string) (*models.Claims, *errors.AppError) {

	logger := LoggerFromContext(ctx)

	// Token is of format : "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")

	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		logger.Warn("Invalid authorization header format")
		return nil, errors.UnauthorizedError("Invalid authorization format")
	}

	// Stores the decoded information
	claims := &models.Claims{}

	token, err := m.parser.ParseWithClaims(tokenParts[1], claims, func(*jwt.Token) (any, error) {
		return m.jwtKey, nil
	})

	if err != nil || !token.Valid {
		logger.Warn("JWT parsing failed", slog.Any("error", err))
		return nil, errors.UnauthorizedError("Invalid or expired token")
	}

	if claims.UserID == uuid.Nil || (claims.Role != models.RoleUser && claims.Role != models.RoleAdmin) {
		logger.Warn("Token is missing required claims")
		return nil, errors.UnauthorizedError("Invalid token")
	}

	return claims, nil
}

func (m *AuthMiddleware) attach(ctx context.Context, claims *models.Claims) context.Context {

	// Add claims to the context
	ctx = WithClaims(ctx, claims)

	requestScopedLogger := LoggerFromContext(ctx).With(slog.String("userId", claims.UserID.String()))
	ctx = WithLogger(ctx, requestScopedLogger)

	requestScopedLogger.Debug("User authenticated")

	return ctx
}
