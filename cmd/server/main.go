package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/adapter/client"
	"github.com/wastefront/pricing-service/internal/adapter/handler"
	"github.com/wastefront/pricing-service/internal/adapter/storage"
	"github.com/wastefront/pricing-service/internal/config"
	"github.com/wastefront/pricing-service/internal/core/event"
	"github.com/wastefront/pricing-service/internal/core/rules"
	"github.com/wastefront/pricing-service/internal/core/service"
	"github.com/wastefront/pricing-service/internal/port"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories: in-memory by default, MySQL when a DSN is configured.
	var (
		visits     port.VisitRepository
		exemptions port.ExemptionRepository
		resetters  []handler.Resetter
	)
	if cfg.MySQL.DSN != "" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			logger.Fatal("failed to open mysql", zap.Error(err))
		}
		defer db.Close()
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		logger.Info("using mysql visit store")

		mysqlAdapter := storage.NewMySQLAdapter(db)
		visits = mysqlAdapter
		exemptions = mysqlAdapter
		resetters = append(resetters, mysqlAdapter)
	} else {
		logger.Info("using in-memory visit store")
		memVisits := storage.NewMemoryVisitRepository()
		memExemptions := storage.NewMemoryExemptionRepository()
		visits = memVisits
		exemptions = memExemptions
		resetters = append(resetters, memVisits, memExemptions)
	}

	visitors := storage.NewMemoryVisitorRepository()
	resetters = append(resetters, visitors)

	// Visitor lookup cache, only when Redis is configured.
	var visitorCache port.VisitorCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to ping redis", zap.Error(err))
		}
		defer rdb.Close()
		logger.Info("visitor cache enabled", zap.String("addr", cfg.Redis.Addr))

		redisAdapter := storage.NewRedisAdapter(rdb)
		visitorCache = redisAdapter
		resetters = append(resetters, cacheResetter{redisAdapter})
	}

	directory := client.NewVisitorAPIClient(
		cfg.VisitorAPI.BaseURL, cfg.VisitorAPI.AuthToken, cfg.VisitorAPI.WorkshopID,
		visitorCache, logger)
	invoices := client.NewInvoiceAPIClient(
		cfg.InvoiceAPI.BaseURL, cfg.InvoiceAPI.AuthToken, cfg.InvoiceAPI.WorkshopID)

	engine := rules.NewEngine(rules.DefaultRules()...)
	engine.AddRule(rules.NewOakCityBusinessConstructionRule(exemptions))
	engine.AddRule(rules.NewOakCityHouseholdConstructionRule(exemptions))

	dispatcher := event.NewDispatcher(logger)
	dispatcher.Subscribe(service.NewInvoiceHandler(invoices, logger).Handle)

	calculator := service.NewPriceCalculator(
		directory, engine,
		service.NewMonthlySurchargeService(visits, visitors),
		visits, visitors, dispatcher, logger)

	httpHandler := handler.NewHTTPHandler(calculator, resetters, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpHandler.NewRouter(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}

type cacheResetter struct {
	cache port.VisitorCache
}

func (c cacheResetter) Reset(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}
