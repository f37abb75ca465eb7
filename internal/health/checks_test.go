package health

import (
	"context"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerCheck(t *testing.T) {
	tests := []struct {
		name    string
		state   gobreaker.State
		wantErr bool
	}{
		{name: "Success - Closed", state: gobreaker.StateClosed},
		{name: "Success - Half Open", state: gobreaker.StateHalfOpen},
		{name: "Failure - Open", state: gobreaker.StateOpen, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := breakerCheck(func() gobreaker.State { return tc.state })(context.Background())

			if tc.wantErr {
				assert.ErrorIs(t, err, errEmailCircuitOpen)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStorageCheck(t *testing.T) {
	t.Run("Success - Postgres By Default", func(t *testing.T) {
		cfg := &config.Config{Storage: config.Storage{Driver: config.StorageDriverPostgres}}
		assert.Equal(t, "database", storageCheck(cfg).Name)
	})

	t.Run("Success - Mongo When Selected", func(t *testing.T) {
		cfg := &config.Config{Storage: config.Storage{Driver: config.StorageDriverMongo}, Mongo: config.Mongo{URI: "mongodb://localhost:27017"}}
		assert.Equal(t, "mongo", storageCheck(cfg).Name)
	})
}

func TestNewHealthHandler(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{Driver: config.StorageDriverPostgres}}

	h, err := NewHealthHandler(cfg, &Endpoints{EmailBreaker: func() gobreaker.State { return gobreaker.StateClosed }})

	require.NoError(t, err)
	assert.NotNil(t, h.Handler())
}
