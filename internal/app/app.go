package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/shibinnakam/cochin-backoffice/internal/auth"
	"github.com/shibinnakam/cochin-backoffice/internal/config"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/gateway"
	gatewaymock "github.com/shibinnakam/cochin-backoffice/internal/gateway/mock"
	"github.com/shibinnakam/cochin-backoffice/internal/handler"
	"github.com/shibinnakam/cochin-backoffice/internal/identity"
	"github.com/shibinnakam/cochin-backoffice/internal/notification"
	notificationmock "github.com/shibinnakam/cochin-backoffice/internal/notification/mock"
	"github.com/shibinnakam/cochin-backoffice/internal/repository/postgres"
	redisrepo "github.com/shibinnakam/cochin-backoffice/internal/repository/redis"
	"github.com/shibinnakam/cochin-backoffice/internal/service"
	"github.com/shibinnakam/cochin-backoffice/migrations"
	"github.com/shibinnakam/cochin-backoffice/pkg/database"
	"github.com/shibinnakam/cochin-backoffice/pkg/health"
	"github.com/shibinnakam/cochin-backoffice/pkg/httpclient"
	pkgkafka "github.com/shibinnakam/cochin-backoffice/pkg/kafka"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second

	// Abandoned carts expire out of Redis after this long.
	cartTTL = 30 * 24 * time.Hour
)

// App owns the process-wide resources and the HTTP server.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	redis    *goredis.Client
	producer *pkgkafka.Producer
	server   *http.Server
}

// New builds the application: connections, repositories, services, and the
// router, in dependency order.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	resignationRepo := postgres.NewResignationRepository(pool)
	leaveRepo := postgres.NewLeaveRepository(pool)
	cartRepo := redisrepo.NewCartRepository(redisClient, cartTTL)

	// Shared building blocks.
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	resolver := identity.NewResolver(staffRepo, userRepo)
	verifier := gateway.NewSignatureVerifier(cfg.GatewayKeySecret)

	var paymentGateway gateway.Gateway
	if cfg.GatewayKeyID != "" {
		cbClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("payment-gateway"),
			logger,
		)
		paymentGateway = gateway.NewRazorpayGateway(cbClient, cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, logger)
	} else {
		logger.Warn("no gateway key configured, using mock payment gateway")
		paymentGateway = gatewaymock.NewGateway()
	}

	var sender notification.Sender
	if cfg.EmailAPIBaseURL != "" {
		sender = notification.NewHTTPSender(
			httpclient.New(httpclient.DefaultConfig()),
			cfg.EmailAPIBaseURL, cfg.EmailAPIKey, cfg.EmailFrom,
		)
	} else {
		logger.Warn("no email API configured, using mock sender")
		sender = notificationmock.NewSender(logger)
	}

	// Services.
	authSvc := service.NewAuthService(userRepo, staffRepo, resolver, tokens, sender, producer, cfg.ClientURL, logger)
	cartSvc := service.NewCartService(cartRepo, productRepo, logger)
	checkoutSvc := service.NewCheckoutService(orderRepo, productRepo, cartRepo, paymentGateway, verifier, producer, logger)
	staffSvc := service.NewStaffService(staffRepo, userRepo, tokens, sender, producer, cfg.ClientURL, logger)
	hrSvc := service.NewHRService(resignationRepo, leaveRepo, staffRepo, sender, producer, logger)

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleCallbackURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", kafkaProducer.Ping)

	router := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, logger),
		OAuth:   handler.NewOAuthHandler(authSvc, oauthCfg, cfg.ClientURL, logger),
		Cart:    handler.NewCartHandler(cartSvc, logger),
		Order:   handler.NewOrderHandler(checkoutSvc, logger),
		Payment: handler.NewPaymentHandler(checkoutSvc, logger),
		Staff:   handler.NewStaffHandler(staffSvc, logger),
		HR:      handler.NewHRHandler(hrSvc, logger),
		Guard:   handler.NewGuard(tokens, resolver, logger),
		Health:  healthHandler,
	}, cfg.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		redis:    redisClient,
		producer: kafkaProducer,
		server:   server,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.server.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	a.close()
	return nil
}

func (a *App) close() {
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close failed", slog.String("error", err.Error()))
	}
	a.pool.Close()
}
