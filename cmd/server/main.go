// Package main runs the RunConnect event store with its HTTP surface
// and cross-context sync loop.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zaliyaya/RunConnect/config"
	"github.com/zaliyaya/RunConnect/internal/device"
	"github.com/zaliyaya/RunConnect/internal/middleware"
	"github.com/zaliyaya/RunConnect/internal/storage"
	"github.com/zaliyaya/RunConnect/internal/store"
	"github.com/zaliyaya/RunConnect/internal/web"
	"github.com/zaliyaya/RunConnect/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	deviceID, err := device.LoadOrCreate(cfg.Storage.Dir)
	if err != nil {
		logger.Fatal("device id", zap.Error(err))
	}
	logger.Info("context identity", zap.String("device_id", deviceID))

	backend, cleanup, err := newBackend(ctx, cfg, deviceID, logger)
	if err != nil {
		logger.Fatal("storage backend", zap.Error(err))
	}
	defer cleanup()

	opts := []store.Option{store.WithPollInterval(cfg.Sync.PollInterval)}
	if cfg.Storage.SeedDemoData {
		opts = append(opts, store.WithSeed(store.SeedEvents()))
	}
	st := store.New(backend, deviceID, logger, opts...)
	st.Load(ctx)

	stopSync := st.StartSync(ctx)
	defer stopSync()

	handler := web.NewHandler(st, logger)
	feed := web.NewFeed(st, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Identity())
	web.RegisterRoutes(router, handler, feed)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("backend", backend.Kind()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newBackend(ctx context.Context, cfg *config.Config, deviceID string, logger *zap.Logger) (storage.Backend, func(), error) {
	switch cfg.Storage.Backend {
	case "file":
		b, err := storage.NewFileBackend(cfg.Storage.Dir, deviceID, logger)
		return b, func() {}, err
	default:
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisBackend(rdb.Client, deviceID, logger), func() { _ = rdb.Close() }, nil
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
