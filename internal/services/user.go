package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/pkg/sendgrid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost       = 10
	resetTokenBytes  = 32
	resetTokenExpiry = time.Hour
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error)
	// ForgotPassword never reveals whether the email is registered.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	email       sendgrid.EmailService
	jwtKey      []byte
	tokenTTL    time.Duration
	clientURL   string
	now         func() time.Time
}

func NewUserService(repo repository.UserRepository, rateLimiter repository.RateLimitRepository, email sendgrid.EmailService, cfg *config.Config) UserService {
	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		email:       email,
		jwtKey:      []byte(cfg.Security.JWTKey),
		tokenTTL:    cfg.Security.TokenTTL(),
		clientURL:   strings.TrimRight(cfg.App.ClientURL, "/"),
		now:         time.Now,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if err := s.ensureAvailable(func() (*models.User, error) { return s.repo.GetUserByEmail(ctx, email) }, "Email already registered"); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(func() (*models.User, error) { return s.repo.GetUserByUsername(ctx, username) }, "Username already taken"); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		IsActive: true,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.DuplicateEntryError("Email or username already registered").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("User registered", slog.String("userId", user.ID.String()))

	return user, nil
}

func (s *userService) ensureAvailable(lookup func() (*models.User, error), taken string) error {

	existing, err := lookup()
	switch {
	case err == nil && existing != nil:
		return appErrors.DuplicateEntryError(taken)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return appErrors.DatabaseError("Failed to check existing users").WithError(err)
	}

	return nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	logger := middleware.LoggerFromContext(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// check rate limit
	allowed, remaining, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, email)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		logger.Warn("Login rate limit exceeded", slog.Int("retryAfter", retryAfter))
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	// Retrieve the user from the DB and compare the passwords
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.DatabaseError("Failed to retrieve user").WithError(err)
	}

	if user == nil || !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	now := s.now()
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// Generate Token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	if err := s.rateLimiter.ResetLoginRateLimit(ctx, email); err != nil {
		logger.Warn("Failed to reset login rate limit", slog.String("error", err.Error()))
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(s.tokenTTL.Seconds()),
		User:      user,
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserById(ctx, id)
	if err != nil {
		return nil, repoError(err, "User not found", "Failed to retrieve user")
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {

	users, total, err := s.repo.ListUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch users").WithError(err)
	}

	return users, total, nil
}

func (s *userService) ForgotPassword(ctx context.Context, email string) error {

	logger := middleware.LoggerFromContext(ctx)

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		logger.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return appErrors.DatabaseError("Failed to retrieve user").WithError(err)
	}

	token, err := newResetToken()
	if err != nil {
		return appErrors.InternalError("Failed to generate reset token").WithError(err)
	}

	if err := s.repo.SetResetToken(ctx, user.ID, hashResetToken(token), s.now().Add(resetTokenExpiry)); err != nil {
		return appErrors.DatabaseError("Failed to store reset token").WithError(err)
	}

	resetURL := s.clientURL + "/reset-password/" + token

	if err := s.email.Send(ctx, resetPasswordEmail(user.Email, resetURL)); err != nil {
		logger.Error("Failed to send password reset email",
			slog.String("userId", user.ID.String()), slog.String("error", err.Error()))
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {

	user, err := s.repo.GetUserByResetToken(ctx, hashResetToken(req.Token))
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.BadRequestError("Invalid or expired token")
	}
	if err != nil {
		return appErrors.DatabaseError("Failed to verify reset token").WithError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return appErrors.InternalError("Failed to secure password").WithError(err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return repoError(err, "User not found", "Failed to update password")
	}

	middleware.LoggerFromContext(ctx).Info("Password reset completed", slog.String("userId", user.ID.String()))

	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken gives the form a reset token is stored and looked up in.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
