package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/daylogapp/daylog/api/handler"
	"github.com/daylogapp/daylog/internal/config"
	"github.com/daylogapp/daylog/internal/infrastructure/monitor"
	pgInfra "github.com/daylogapp/daylog/internal/infrastructure/postgres"
	redisInfra "github.com/daylogapp/daylog/internal/infrastructure/redis"
	"github.com/daylogapp/daylog/internal/middleware"
	"github.com/daylogapp/daylog/internal/router"
	"github.com/daylogapp/daylog/internal/services"
	"github.com/daylogapp/daylog/internal/services/lifecycle"
	"github.com/daylogapp/daylog/pkg/httpcontext"
	"github.com/daylogapp/daylog/pkg/logger"
	"github.com/daylogapp/daylog/repository/postgres"
	redisRepo "github.com/daylogapp/daylog/repository/redis"
	accountUC "github.com/daylogapp/daylog/usecase/account"
	authUC "github.com/daylogapp/daylog/usecase/auth"
	todoUC "github.com/daylogapp/daylog/usecase/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pool, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	todoRepo := postgres.NewTodoRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)

	rollup := services.NewActivityRollup(activityRepo, mon, zapLogger, services.RollupConfig{
		Interval: cfg.Activity.RollupInterval,
	})
	rollup.Start()
	manager.Register("activity_rollup", func(ctx context.Context) error {
		rollup.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL, zapLogger)
	todoUseCase := todoUC.New(todoRepo, zapLogger)
	accountUseCase := accountUC.New(userRepo, todoRepo, sessionRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Auth.SessionTTL),
		Todo:     apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Activity: apiHandler.NewActivityHandler(activityRepo, ctxAdapter, zapLogger),
		Account:  apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.Auth.JWTSecret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
