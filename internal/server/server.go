package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"drop-store/internal/config"
	custommiddleware "drop-store/internal/middleware"
	"drop-store/internal/payment"
	"drop-store/internal/repository"
	"drop-store/internal/service"
	"drop-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, provider payment.Provider) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus scrape endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	notificationRepo := repository.NewDropNotificationRepository(db)

	// Initialize services
	authService := service.NewAuthService(adminRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	shippingService := service.NewShippingService()
	checkoutService := service.NewCheckoutService(db, provider, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productRepo, logger)
	categoryHandler := transport.NewCategoryHandler(categoryRepo, logger)
	customerHandler := transport.NewCustomerHandler(customerRepo, orderRepo, logger)
	orderHandler := transport.NewOrderHandler(orderRepo, customerRepo, checkoutService, logger)
	paymentHandler := transport.NewPaymentHandler(checkoutService, logger)
	shippingHandler := transport.NewShippingHandler(shippingService, logger)
	settingsHandler := transport.NewSettingsHandler(settingsRepo, logger)
	notificationHandler := transport.NewNotificationHandler(notificationRepo, logger)
	authHandler := transport.NewAuthHandler(authService, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Rate limit the auth surface when Redis is configured
	var redisClient *redis.Client
	var rateLimiter func(http.Handler) http.Handler
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateLimiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 10,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger)
	}

	// Register routes
	productHandler.RegisterRoutes(router, authMiddleware)
	categoryHandler.RegisterRoutes(router, authMiddleware)
	customerHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware)
	paymentHandler.RegisterRoutes(router)
	shippingHandler.RegisterRoutes(router)
	settingsHandler.RegisterRoutes(router, authMiddleware)
	notificationHandler.RegisterRoutes(router, authMiddleware)
	authHandler.RegisterRoutes(router, authMiddleware, rateLimiter)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
