// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/config"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/catalog"
	"github.com/your-org/tshirt-store/internal/domain/order"
	"github.com/your-org/tshirt-store/internal/domain/orderstore"
	"github.com/your-org/tshirt-store/internal/domain/payment"
	"github.com/your-org/tshirt-store/internal/domain/user"
	"github.com/your-org/tshirt-store/internal/infrastructure/database/mongo"
	"github.com/your-org/tshirt-store/internal/infrastructure/database/postgres"
	"github.com/your-org/tshirt-store/internal/infrastructure/database/redis"
	"github.com/your-org/tshirt-store/internal/infrastructure/storage"
	httpserver "github.com/your-org/tshirt-store/internal/interfaces/http"
	"github.com/your-org/tshirt-store/internal/interfaces/http/handlers"
	"github.com/your-org/tshirt-store/internal/interfaces/http/routes"
	"github.com/your-org/tshirt-store/internal/pkg/auth"
	"github.com/your-org/tshirt-store/internal/pkg/logger"
	"github.com/your-org/tshirt-store/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	logr.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres holds the catalog and users, and orders unless Mongo is selected
	db, err := postgres.NewConnection(cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	migration := postgres.NewMigration(db.GetDB(), logr)
	if err := migration.RunAutoMigrations(postgres.Models(cfg.OrderStore.Driver)...); err != nil {
		logr.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		logr.WithError(err).Warn("Index creation failed")
	}
	if err := migration.SeedInitialData(ctx, cfg); err != nil {
		logr.WithError(err).Warn("Data seeding failed")
	}

	healthChecks := map[string]httpserver.HealthCheck{
		"database": db.Health,
	}

	// Redis backs sessions under the redis driver; otherwise it is optional
	// and only serves the catalog cache and the rate limiter.
	var redisClient *redis.Client
	if cfg.Storage.Driver == "redis" || cfg.Redis.Host != "" {
		redisClient, err = redis.NewConnection(cfg, logr)
		if err != nil {
			if cfg.Storage.Driver == "redis" {
				logr.WithError(err).Fatal("Failed to connect to Redis")
			}
			logr.WithError(err).Warn("Redis unavailable, catalog cache and rate limiting disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			healthChecks["redis"] = redisClient.Health
		}
	}

	sessionKV, closeKV := openSessionStorage(ctx, cfg, redisClient, logr)
	defer closeKV()
	if p, ok := sessionKV.(interface{ Ping(context.Context) error }); ok {
		healthChecks["storage"] = p.Ping
	}

	var products catalog.Repository = catalog.NewGormRepository(db.GetDB())
	if redisClient != nil {
		cached := catalog.NewCachedRepository(products, redisClient.GetClient(), cfg.Shop.CatalogCacheTTL, logr)
		if err := cached.Invalidate(ctx); err != nil {
			logr.WithError(err).Warn("Failed to clear catalog cache")
		}
		products = cached
	}

	orderRepo, closeOrders := openOrderRepository(ctx, cfg, db, healthChecks, logr)
	defer closeOrders()
	razorpay := payment.NewRazorpayService(cfg, logr)
	orderStore := orderstore.NewService(orderRepo, razorpay, cfg.Shop.Currency, logr)

	policy, err := order.ParseMirrorPolicy(cfg.Mirror.Policy)
	if err != nil {
		logr.WithError(err).Fatal("Invalid mirror policy")
	}
	mirror, closeMirror := buildMirror(cfg, logr)
	dispatcher := order.NewDispatcher(mirror, policy, cfg.Mirror.Timeout, cfg.Mirror.RetryBackoff, logr)

	var consumer *orderstore.Consumer
	if cfg.Mirror.Transport == "kafka" {
		consumer = orderstore.NewConsumer(orderStore, cfg.Mirror.KafkaTopic, cfg.App.Name+"-order-store", logr, cfg.Mirror.KafkaBrokers...)
		go consumer.Run(ctx)
	}

	jwtManager := auth.NewJWTManager(cfg)
	users := user.NewService(user.NewGormRepository(db.GetDB()), auth.NewPasswordManager(cfg.Security.BcryptCost), jwtManager, logr)
	checkout := order.NewCheckout(razorpay, dispatcher, order.NewIDGenerator(), logr)

	sessions := handlers.NewSessions(sessionKV, cfg.Storage.SessionTTL, cfg.IsProduction())
	shipping := cart.ShippingPolicy{
		FreeThreshold: cfg.Shop.FreeShippingThreshold,
		FlatRate:      cfg.Shop.FlatShippingRate,
	}
	cartHandler := handlers.NewCartHandler(products, sessions, shipping, logr)

	deps := httpserver.Dependencies{
		Handlers: &routes.Handlers{
			JWT:      jwtManager,
			Auth:     handlers.NewAuthHandler(users),
			Catalog:  handlers.NewCatalogHandler(products),
			Cart:     cartHandler,
			Checkout: handlers.NewCheckoutHandler(cartHandler, checkout, razorpay, pdf.NewService(cfg), cfg.Shop.Currency, logr),
			Orders:   handlers.NewOrderHandler(orderStore),
			Admin:    handlers.NewAdminOrderHandler(orderStore, logr),
		},
		HealthChecks: healthChecks,
	}
	if redisClient != nil {
		deps.RedisClient = redisClient.GetClient()
	}

	server := httpserver.NewServer(cfg, deps, logr)
	go func() {
		if err := server.Start(); err != nil {
			logr.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	logr.WithFields(logrus.Fields{
		"storage":     cfg.Storage.Driver,
		"order_store": cfg.OrderStore.Driver,
		"mirror":      policy.String() + "/" + cfg.Mirror.Transport,
	}).Info("All systems operational")

	<-ctx.Done()
	logr.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// background mirror deliveries finish before their transport closes
	dispatcher.Wait()
	closeMirror()
	if consumer != nil {
		consumer.Close()
	}

	logr.Info("Server shutdown completed")
}

// openSessionStorage returns the KV holding carts and session orders
func openSessionStorage(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logr *logrus.Logger) (storage.KV, func()) {
	switch cfg.Storage.Driver {
	case "sqlite":
		kv, err := storage.OpenSQLite(cfg.Storage.SQLitePath, cfg.Storage.SessionTTL)
		if err != nil {
			logr.WithError(err).Fatal("Failed to open SQLite session storage")
		}
		if err := kv.InitSchema(ctx); err != nil {
			logr.WithError(err).Fatal("Failed to initialise SQLite session storage")
		}
		logr.WithField("path", cfg.Storage.SQLitePath).Info("Session storage on SQLite")
		return kv, func() {
			if err := kv.Close(); err != nil {
				logr.WithError(err).Error("Failed to close SQLite session storage")
			}
		}
	default:
		logr.Info("Session storage on Redis")
		return storage.NewRedisKV(redisClient.GetClient(), cfg.Storage.SessionTTL), func() {}
	}
}

// openOrderRepository returns the order store backend selected by ORDER_STORE_DRIVER
func openOrderRepository(ctx context.Context, cfg *config.Config, db *postgres.DB, checks map[string]httpserver.HealthCheck, logr *logrus.Logger) (orderstore.Repository, func()) {
	if cfg.OrderStore.Driver != "mongo" {
		return orderstore.NewGormRepository(db.GetDB()), func() {}
	}

	client, err := mongo.NewConnection(ctx, cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	checks["mongo"] = client.Health

	repo := orderstore.NewMongoRepository(client.Database())
	if err := repo.CreateIndexes(ctx); err != nil {
		logr.WithError(err).Warn("Failed to create order indexes")
	}

	return repo, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logr.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}
}

// buildMirror returns the transport placed orders are replicated over
func buildMirror(cfg *config.Config, logr *logrus.Logger) (order.Mirror, func()) {
	if cfg.Mirror.Transport == "kafka" {
		m := order.NewKafkaMirror(cfg.Mirror.KafkaTopic, cfg.Mirror.KafkaBrokers...)
		return m, func() {
			if err := m.Close(); err != nil {
				logr.WithError(err).Error("Failed to close kafka writer")
			}
		}
	}

	m := order.NewHTTPMirror(order.HTTPMirrorConfig{
		URL:             cfg.Mirror.URL,
		BreakerFailures: cfg.Mirror.BreakerFailures,
		BreakerCooldown: cfg.Mirror.BreakerCooldown,
	}, &http.Client{Timeout: cfg.Mirror.Timeout}, logr)
	return m, func() {}
}
