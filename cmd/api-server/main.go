package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clinichub/clinic-api/internal/api"
	"github.com/clinichub/clinic-api/internal/auth"
	"github.com/clinichub/clinic-api/internal/clinic"
	"github.com/clinichub/clinic-api/internal/config"
	"github.com/clinichub/clinic-api/internal/logger"
	"github.com/clinichub/clinic-api/internal/redisclient"
	"github.com/clinichub/clinic-api/internal/store"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Mongo
	mongoCtx, cancelMongo := context.WithTimeout(rootCtx, 10*time.Second)
	mongoClient, err := store.ConnectMongo(mongoCtx, cfg.MongoURI)
	cancelMongo()
	if err != nil {
		zlog.Fatal("mongo connection error", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			zlog.Warn("error disconnecting mongo", zap.Error(err))
		}
	}()
	zlog.Info("connected to MongoDB")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zlog.Warn("error closing redis", zap.Error(err))
		}
	}()
	zlog.Info("connected to Redis")

	repo := clinic.NewMongoRepository(mongoClient, cfg.MongoDatabase)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	svc := clinic.NewService(repo, locker, zlog)
	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Issuer:  issuer,
		Mongo:   mongoClient,
		Redis:   rdb,
		Log:     zlog,
		Env:     cfg.Env,
		Version: version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info("shutdown signal received")
	case err := <-errCh:
		zlog.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}

	zlog.Info("api-server stopped")
}
