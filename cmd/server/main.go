package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/Rachitt19/BlogApp/internal/config"
	"github.com/Rachitt19/BlogApp/internal/database"
	"github.com/Rachitt19/BlogApp/internal/handlers"
	"github.com/Rachitt19/BlogApp/internal/logger"
	"github.com/Rachitt19/BlogApp/internal/middleware"
	"github.com/Rachitt19/BlogApp/internal/repository"
	"github.com/Rachitt19/BlogApp/internal/routes"
	"github.com/Rachitt19/BlogApp/internal/service"
	"github.com/Rachitt19/BlogApp/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET must be set")
	}
	zlog, err := logger.New(logger.Config{Development: cfg.Development(), Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, client, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, zlog)
	if err != nil {
		zlog.Fatalf("mongo init: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, zlog)
	if err != nil {
		zlog.Fatalf("redis init: %v", err)
	}
	defer rdb.Close()

	chatRepo := repository.NewChatRepository(db.Collection("chats"))
	msgRepo := repository.NewMessageRepository(db.Collection("messages"))
	userRepo := repository.NewUserRepository(db.Collection("users"))
	unreadCache := repository.NewUnreadCache(rdb, cfg.Redis.Prefix)

	hub := ws.NewHub()
	chatSvc := service.NewChatService(chatRepo, msgRepo, userRepo, unreadCache, zlog)
	groupSvc := service.NewGroupService(chatRepo, msgRepo, userRepo, hub, zlog)
	unreadSvc := service.NewUnreadTracker(chatRepo, msgRepo, unreadCache)
	relay := ws.NewRelay(hub, chatSvc, zlog, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes)

	var limiter *middleware.RateLimiter
	if cfg.Rate.Enabled {
		limiter = middleware.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.Rate.PerMinute, time.Minute)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h := handlers.NewChatHandler(chatSvc, groupSvc, unreadSvc, zlog)
	routes.Register(app, cfg.Auth.JWTSecret, h, relay, limiter, zlog)

	errs := make(chan error, 1)
	go func() {
		zlog.Infof("server listening on :%s", cfg.App.Port)
		errs <- app.Listen(":" + cfg.App.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zlog.Fatalf("server error: %v", err)
	case s := <-sig:
		zlog.Infof("signal received: %v", s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Warnf("shutdown: %v", err)
	}
	zlog.Info("server stopped")
}
