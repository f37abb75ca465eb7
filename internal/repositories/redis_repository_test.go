package repository_test

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitTest(t *testing.T, maxAttempts int64) (repository.RateLimitRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
	})

	repo := repository.NewRateLimitRepo(client, config.RateConfig{MaxAttempts: maxAttempts, WindowSize: time.Minute})

	return repo, mr
}

func TestRateLimitRepository(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Allows Attempts Within Window", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 3)

		for expectedRemaining := 2; expectedRemaining >= 0; expectedRemaining-- {
			// Act
			allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, "jane@example.com")

			// Assert
			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, expectedRemaining, remaining)
			assert.Zero(t, retryAfter)
		}
	})

	t.Run("Failure - Blocks Once Limit Exceeded", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 2)

		for range 2 {
			allowed, _, _, err := repo.CheckLoginRateLimit(ctx, "bob@example.com")
			require.NoError(t, err)
			require.True(t, allowed)
		}

		// Act
		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, "bob@example.com")

		// Assert
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Greater(t, retryAfter, 0)
		assert.LessOrEqual(t, retryAfter, 60)
	})

	t.Run("Success - Identifiers Are Independent", func(t *testing.T) {
		// Arrange
		repo, _ := setupRateLimitTest(t, 1)

		_, _, _, err := repo.CheckLoginRateLimit(ctx, "a@example.com")
		require.NoError(t, err)

		// Act
		allowed, _, _, err := repo.CheckLoginRateLimit(ctx, "b@example.com")

		// Assert
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Success - Reset Clears Attempts", func(t *testing.T) {
		// Arrange
		repo, mr := setupRateLimitTest(t, 1)

		_, _, _, err := repo.CheckLoginRateLimit(ctx, "carol@example.com")
		require.NoError(t, err)
		require.True(t, mr.Exists("login_attempts:carol@example.com"))

		// Act
		err = repo.ResetLoginRateLimit(ctx, "carol@example.com")

		// Assert
		require.NoError(t, err)
		assert.False(t, mr.Exists("login_attempts:carol@example.com"))

		allowed, _, _, err := repo.CheckLoginRateLimit(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Failure - Redis Unavailable", func(t *testing.T) {
		// Arrange
		repo, mr := setupRateLimitTest(t, 5)
		mr.Close()

		// Act
		allowed, _, _, err := repo.CheckLoginRateLimit(ctx, "dave@example.com")

		// Assert
		require.Error(t, err)
		assert.False(t, allowed)
	})
}
