package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avakarimi/mechanic-shop-api/internal/config"
	"github.com/avakarimi/mechanic-shop-api/internal/database"
	"github.com/avakarimi/mechanic-shop-api/internal/handler"
	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/queue"
	"github.com/avakarimi/mechanic-shop-api/internal/repository"
	"github.com/avakarimi/mechanic-shop-api/internal/router"
	"github.com/avakarimi/mechanic-shop-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache/limits degrade to no-ops

	customers := repository.NewCustomerRepo(db)
	mechanics := repository.NewMechanicRepo(db)
	inventory := repository.NewInventoryRepo(db)
	tickets := repository.NewTicketRepo(db)
	tokens := repository.NewTokenRepo(db)

	ticketSvc := service.NewTicketService(tickets, customers, mechanics, inventory, queue.NewPublisher())

	cacheCfg := config.LoadCacheConfig()
	buster := middleware.NewCacheBuster(cacheCfg, rdb)

	rlCfg := config.LoadRateLimitConfig()
	strictCfg := rlCfg
	strictCfg.Capacity = 5
	strictCfg.RefillTokens = 1
	strictCfg.RefillInterval = time.Minute
	strictCfg.Prefix = rlCfg.Prefix + ":strict"

	authH := handler.NewAuthHandler(cfg, customers, mechanics, tokens)
	customerH := handler.NewCustomerHandler(customers)
	mechanicH := handler.NewMechanicHandler(mechanics, buster)
	inventoryH := handler.NewInventoryHandler(inventory, buster)
	ticketH := handler.NewTicketHandler(ticketSvc, buster)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterPublic(e, authH, mechanicH, inventoryH,
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.NewTokenBucket(strictCfg, rdb))
	router.RegisterCustomer(e, cfg.JWTSecret, authH, customerH, ticketH)
	router.RegisterMechanic(e, cfg.JWTSecret, customerH, mechanicH, inventoryH, ticketH)

	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
