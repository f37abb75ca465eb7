package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/events"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/health"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories/mongostore"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/tracing"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/uploads"
	"github.com/aaravmahajanofficial/ecommerce-backend/pkg/sendgrid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Load config
	cfg := config.MustLoad()

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Storage setup
	repos, err := openStorage(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("driver", cfg.Storage.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productCache := cache.NewRedisCache(redisClient, cfg.Cache)
	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)

	screenshots, err := uploads.NewDiskStore(cfg.Uploads)
	if err != nil {
		slog.Error("❌ Error preparing the upload directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	emailService := sendgrid.NewEmailService(cfg.SendGrid)
	publisher := events.NewPublisher(cfg.Kafka)

	healthEndpoints := &health.Endpoints{}
	if client, ok := emailService.(*sendgrid.Client); ok {
		healthEndpoints.EmailBreaker = client.State
	}

	healthHandler, err := health.NewHealthHandler(cfg, healthEndpoints)
	if err != nil {
		slog.Error("❌ Error creating the health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Services & handlers
	userService := service.NewUserService(repos.User, rateLimiter, emailService, cfg)
	productService := service.NewProductService(repos.Product, productCache)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	sequencer := service.NewSequencer(repos.Cart, repos.Product, cfg.Checkout.MaxConcurrency)
	checkoutService := service.NewCheckoutService(repos.Cart, sequencer, productCache, publisher, emailService)
	feedbackService := service.NewFeedbackService(repos.Feedback)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, screenshots)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("driver", cfg.Storage.Driver), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()

	routerMux.HandleFunc("POST /api/v1/auth/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/auth/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/auth/me", authMiddleware.Authenticate(userHandler.Me()))
	routerMux.HandleFunc("POST /api/v1/auth/forgot-password", userHandler.ForgotPassword())
	routerMux.HandleFunc("POST /api/v1/auth/reset-password", userHandler.ResetPassword())
	routerMux.HandleFunc("POST /api/v1/auth/logout", authMiddleware.Authenticate(userHandler.Logout()))
	routerMux.HandleFunc("GET /api/v1/users", authMiddleware.RequireAdmin(userHandler.ListUsers()))

	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/featured", productHandler.FeaturedProducts())
	routerMux.HandleFunc("GET /api/v1/products/category/{category}", productHandler.ProductsByCategory())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.RequireAdmin(productHandler.CreateProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.RequireAdmin(productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/products/{id}", authMiddleware.RequireAdmin(productHandler.DeleteProduct()))
	routerMux.HandleFunc("PATCH /api/v1/products/{id}/stock", authMiddleware.RequireAdmin(productHandler.AdjustStock()))

	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{productId}", authMiddleware.Authenticate(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productId}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/cart/checkout", authMiddleware.Authenticate(cartHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/cart/history", authMiddleware.Authenticate(cartHandler.History()))

	routerMux.HandleFunc("POST /api/v1/feedback", authMiddleware.OptionalAuthenticate(feedbackHandler.CreateFeedback()))
	routerMux.HandleFunc("POST /api/v1/feedback/quick", authMiddleware.OptionalAuthenticate(feedbackHandler.QuickFeedback()))
	routerMux.HandleFunc("POST /api/v1/feedback/bug-report", authMiddleware.OptionalAuthenticate(feedbackHandler.BugReport()))
	routerMux.HandleFunc("GET /api/v1/feedback", authMiddleware.Authenticate(feedbackHandler.ListFeedback()))
	routerMux.HandleFunc("GET /api/v1/feedback/stats", authMiddleware.RequireAdmin(feedbackHandler.Stats()))
	routerMux.HandleFunc("GET /api/v1/feedback/{id}", authMiddleware.Authenticate(feedbackHandler.GetFeedback()))
	routerMux.HandleFunc("PUT /api/v1/feedback/{id}", authMiddleware.Authenticate(feedbackHandler.UpdateFeedback()))
	routerMux.HandleFunc("DELETE /api/v1/feedback/{id}", authMiddleware.Authenticate(feedbackHandler.DeleteFeedback()))
	routerMux.HandleFunc("POST /api/v1/feedback/{id}/resolve", authMiddleware.RequireAdmin(feedbackHandler.ResolveFeedback()))

	routerMux.Handle("GET "+uploads.PublicPrefix, screenshots.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "http.server")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	closeAll(shutdownCtx, repos, redisClient, publisher, shutdownTracing)
}

func openStorage(cfg *config.Config) (*repository.Repositories, error) {

	if cfg.Storage.Driver == config.StorageDriverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		db, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}

		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, err
		}

		return mongostore.New(db), nil
	}

	db, err := repository.OpenPostgres(cfg)
	if err != nil {
		return nil, err
	}

	return repository.NewPostgres(db), nil
}

func closeAll(ctx context.Context, repos *repository.Repositories, redisClient io.Closer, publisher events.Publisher, shutdownTracing tracing.ShutdownFunc) {

	if err := publisher.Close(); err != nil {
		slog.Error("⚠️ Error closing event publisher", slog.String("error", err.Error()))
	}

	// shared by the product cache and the login rate limiter
	if err := redisClient.Close(); err != nil {
		slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
	}

	if err := repos.Close(); err != nil {
		slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Database connection closed")
	}

	if err := shutdownTracing(ctx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
