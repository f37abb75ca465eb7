package repository_test

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

func setupPostgres(t *testing.T) *repository.Repositories {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := t.Context()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start postgres container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := sql.Open("postgres", fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, repository.Migrate(db))

	repos := repository.NewPostgres(db)
	t.Cleanup(func() { repos.Close() })

	return repos
}

func seedUserAndProduct(t *testing.T, repos *repository.Repositories, stock int) (*models.User, *models.Product) {
	t.Helper()

	ctx := t.Context()

	user := &models.User{ID: uuid.New(), Username: "buyer", Email: "buyer@example.com", Password: "hashed", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repos.User.CreateUser(ctx, user))

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Stock:    stock,
		Category: models.CategoryOther,
		IsActive: true,
	}
	require.NoError(t, repos.Product.CreateProduct(ctx, product))

	return user, product
}

func TestPostgresIntegration(t *testing.T) {
	repos := setupPostgres(t)
	ctx := t.Context()

	t.Run("Concurrent decrements never oversell", func(t *testing.T) {
		// Arrange
		_, product := seedUserAndProduct(t, repos, 5)

		var wg sync.WaitGroup
		var wins atomic.Int32

		// Act
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repos.Product.DecrementStockIfAvailable(ctx, product.ID, 1)
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		// Assert
		assert.Equal(t, int32(5), wins.Load())

		stock, err := repos.Product.GetCurrentStock(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stock)
	})

	t.Run("Cart lifecycle", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Username: "lifecycle", Email: "lifecycle@example.com", Password: "hashed", Role: models.RoleUser, IsActive: true}
		require.NoError(t, repos.User.CreateUser(ctx, user))

		cart := models.NewCart(user.ID)
		require.NoError(t, repos.Cart.CreateCart(ctx, cart))

		// a second active cart for the same user is rejected
		err := repos.Cart.CreateCart(ctx, models.NewCart(user.ID))
		require.ErrorIs(t, err, repository.ErrDuplicate)

		keep := models.CartItem{ProductID: uuid.New(), Name: "Keep", Quantity: 2, Price: decimal.RequireFromString("5.00")}
		drop := models.CartItem{ProductID: uuid.New(), Name: "Drop", Quantity: 1, Price: decimal.RequireFromString("3.25")}
		cart.Items = []models.CartItem{drop, keep}
		cart.Recalculate()
		require.NoError(t, repos.Cart.UpdateCart(ctx, cart))

		// Act
		require.NoError(t, repos.Cart.RemoveItem(ctx, cart.ID, drop.ProductID))

		// Assert
		stored, err := repos.Cart.GetActiveCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, keep.ProductID, stored.Items[0].ProductID)
		assert.True(t, decimal.RequireFromString("10.00").Equal(stored.Total))

		first := time.Now().Add(-time.Minute).UTC().Truncate(time.Microsecond)
		completedAt, err := repos.Cart.MarkCompleted(ctx, cart.ID, first)
		require.NoError(t, err)
		assert.True(t, first.Equal(completedAt))

		again, err := repos.Cart.MarkCompleted(ctx, cart.ID, time.Now())
		require.NoError(t, err)
		assert.True(t, first.Equal(again), "second completion keeps the first timestamp")

		history, err := repos.Cart.ListCompletedCarts(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)

		_, err = repos.Cart.GetActiveCart(ctx, user.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
