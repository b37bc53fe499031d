package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"printshop-backend/internal/config"
	"printshop-backend/internal/domain"
	"printshop-backend/internal/events"
	"printshop-backend/internal/infrastructure/cache"
	"printshop-backend/internal/infrastructure/repo"
	"printshop-backend/internal/server"
	"printshop-backend/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	var (
		orderRepo   usecase.OrderRepo
		paymentRepo usecase.PaymentRepo
		catalogRepo usecase.CatalogRepo
	)
	if cfg.PostgresDSN != "" {
		store, err := repo.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("Failed to open postgres store", zap.Error(err))
		}
		defer store.Close()
		orderRepo = store.Orders
		paymentRepo = store.Payments
		catalogRepo = store.Catalog
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		orderRepo = repo.NewMemoryOrderRepo()
		paymentRepo = repo.NewMemoryPaymentRepo()
		catalogRepo = repo.NewMemoryCatalogRepo()
	}

	var catalogCache usecase.Cache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr)
		defer rc.Close()
		catalogCache = rc
	}

	var sink usecase.EventSink
	if cfg.KafkaBrokers != "" {
		producer := events.NewKafkaProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, logger)
		defer producer.Close()
		sink = producer
	}

	addons, err := parseAddonMap(cfg.AddonMap)
	if err != nil {
		logger.Fatal("Invalid ADDON_MAP", zap.Error(err))
	}

	orderService := &usecase.OrderService{
		Orders:         orderRepo,
		Payments:       paymentRepo,
		Events:         sink,
		Logger:         logger,
		StrictTerminal: cfg.StrictTransitions,
		StrictAmounts:  cfg.StrictAmounts,
	}
	catalogService := &usecase.CatalogService{
		Repo:     catalogRepo,
		Cache:    catalogCache,
		CacheTTL: cfg.CatalogCacheTTL,
		Logger:   logger,
	}
	authService := &usecase.AuthService{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}

	srv := server.New(logger, orderService, catalogService, authService, addons, cfg.TokenIssueKey)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseAddonMap(raw string) (domain.AddonMap, error) {
	var m domain.AddonMap
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return m, err
	}
	return m, nil
}
