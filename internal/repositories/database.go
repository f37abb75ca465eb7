package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"
)

// Repositories bundles the storage interfaces the services depend on.
// Both the Postgres and the Mongo backends produce one.
type Repositories struct {
	User     UserRepository
	Product  ProductRepository
	Cart     CartRepository
	Feedback FeedbackRepository

	close func() error
}

func NewRepositories(user UserRepository, product ProductRepository, cart CartRepository, feedback FeedbackRepository, closeFn func() error) *Repositories {
	return &Repositories{User: user, Product: product, Cart: cart, Feedback: feedback, close: closeFn}
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// OpenPostgres opens a traced connection pool and verifies it is reachable.
func OpenPostgres(cfg *config.Config) (*sql.DB, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("✅ Database migrations applied")
	}

	return db, nil
}

func NewPostgres(db *sql.DB) *Repositories {
	return NewRepositories(
		NewUserRepo(db),
		NewProductRepo(db),
		NewCartRepo(db),
		NewFeedbackRepo(db),
		db.Close,
	)
}
