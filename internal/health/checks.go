package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/hellofresh/health-go/v5"
	healthMongo "github.com/hellofresh/health-go/v5/checks/mongo"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
	"github.com/sony/gobreaker/v2"
)

const componentName = "ecommerce-backend"

var errEmailCircuitOpen = errors.New("email circuit breaker is open")

// Endpoints holds runtime state the checks need beyond the config.
// EmailBreaker is nil when email delivery is disabled.
type Endpoints struct {
	EmailBreaker func() gobreaker.State
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{storageCheck(cfg), {
		Name:      "redis",
		Timeout:   2 * time.Second,
		SkipOnErr: false,
		Check: healthRedis.New(healthRedis.Config{
			DSN: cfg.RedisConnect.GetDSN(),
		}),
	}}

	if endpoints != nil && endpoints.EmailBreaker != nil {
		checks = append(checks, health.Config{
			Name:      "email",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check:     breakerCheck(endpoints.EmailBreaker),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    componentName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func storageCheck(cfg *config.Config) health.Config {

	if cfg.Storage.Driver == config.StorageDriverMongo {
		return health.Config{
			Name:      "mongo",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: healthMongo.New(healthMongo.Config{
				DSN:         cfg.Mongo.URI,
				TimeoutPing: 2 * time.Second,
			}),
		}
	}

	return health.Config{
		Name:      "database",
		Timeout:   3 * time.Second,
		SkipOnErr: false,
		Check: postgres.New(postgres.Config{
			DSN: cfg.Database.GetDSN(),
		}),
	}
}

// a half-open breaker is still probing, only an open one is reported
func breakerCheck(state func() gobreaker.State) health.CheckFunc {
	return func(context.Context) error {
		if state() == gobreaker.StateOpen {
			return errEmailCircuitOpen
		}
		return nil
	}
}
