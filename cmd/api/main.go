package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scentify/internal/core/auth"
	"scentify/internal/core/config"
	"scentify/internal/core/logger"
	"scentify/internal/core/server"
	"scentify/internal/repo"
	"scentify/internal/service"
	"scentify/internal/transport/http/handler"
	"scentify/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.File))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 存储（失败直接 Fatal）
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := repo.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}

	// 依赖
	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	perfumeSvc := service.NewPerfumeService(stores.Perfumes)
	authSvc := service.NewAuthService(stores.Users, jwter, log)

	reg := router.NewRegistry(
		handler.NewAuthHandler(authSvc),
		handler.NewCatalogHandler(perfumeSvc),
	)

	// 路由（用户端）
	r := router.NewAPIEngine(router.Deps{Log: log, Env: cfg.App.Env, Limits: cfg.Limits}, reg)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("storefront api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("storefront api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭：先停 HTTP，再断存储
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := stores.Close(closeCtx); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	log.Info("storefront api stopped gracefully")
}
