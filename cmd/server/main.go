package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/court-slot-reservation/internal/config"
	"github.com/iliyamo/court-slot-reservation/internal/database"
	"github.com/iliyamo/court-slot-reservation/internal/handler"
	"github.com/iliyamo/court-slot-reservation/internal/logger"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
	"github.com/iliyamo/court-slot-reservation/internal/repository"
	"github.com/iliyamo/court-slot-reservation/internal/router"
	"github.com/iliyamo/court-slot-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		zlog.Fatal("migrate database", zap.Error(err))
	}
	if v, err := database.SchemaVersion(ctx, db); err == nil {
		zlog.Info("schema ready", zap.Int64("version", v))
	}

	// Redis is optional; cache and rate limiting degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		zlog.Warn("redis unavailable, cache and rate limiting disabled")
	}

	venues := repository.NewVenueRepo(db)
	courts := repository.NewCourtRepo(db)
	hoursRepo := repository.NewBusinessHoursRepo(db)
	templates := repository.NewSlotTemplateRepo(db)
	records := repository.NewSlotRecordRepo(db)
	priceTemplates := repository.NewPriceTemplateRepo(db)

	hours := service.NewHoursService(hoursRepo)
	prices := service.NewPriceService(priceTemplates, venues, hoursRepo, zlog)
	availability := service.NewAvailabilityService(venues, courts, templates, records, hours, prices, zlog)
	publisher := queue.NewPublisher(zlog)
	locks := service.NewLockService(venues, courts, templates, records, publisher, zlog)

	// Release holds when the order service reports a cancellation.
	go queue.StartOrderCancelledConsumer(ctx, locks, zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Availability: handler.NewAvailabilityHandler(availability),
		Locks:        handler.NewLockHandler(locks),
		Prices:       handler.NewPriceHandler(prices),
	}, db, rdb, cfg.JWTSecret)

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(addr); err != nil {
		zlog.Info("server stopped", zap.Error(err))
	}
}
