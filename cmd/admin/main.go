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

	"scentify/internal/core/auth"
	"scentify/internal/core/config"
	"scentify/internal/core/imagehost"
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 存储 + 图床（失败直接 Fatal）
	stores, err := repo.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	host, publicID, err := imagehost.New(ctx, imagehost.Options{
		Driver: cfg.ImageHost.Driver,
		Cloudinary: imagehost.CloudinaryOptions{
			CloudName: cfg.ImageHost.Cloudinary.CloudName,
			APIKey:    cfg.ImageHost.Cloudinary.APIKey,
			APISecret: cfg.ImageHost.Cloudinary.APISecret,
		},
		S3: imagehost.S3Options(cfg.ImageHost.S3),
	})
	if err != nil {
		log.Fatal("image host", zap.Error(err), zap.String("driver", cfg.ImageHost.Driver))
	}

	// 依赖
	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	perfumeSvc := service.NewPerfumeService(stores.Perfumes)
	userSvc := service.NewUserService(stores.Users)
	authSvc := service.NewAuthService(stores.Users, jwter, log)
	dashSvc := service.NewDashboardService(stores.Perfumes, stores.Users)
	imageSvc := service.NewImageService(perfumeSvc, host, publicID, service.UploadLimits{
		MaxFiles:     cfg.Upload.MaxFiles,
		MaxFileBytes: cfg.Upload.MaxFileBytes(),
		Folder:       cfg.ImageHost.Folder,
	}, log)

	reg := router.NewRegistry(
		handler.NewPerfumeHandler(perfumeSvc),
		handler.NewUploadHandler(imageSvc),
		handler.NewUserHandler(userSvc),
		handler.NewDashboardHandler(dashSvc),
	)

	// 路由（后台端）；请求体需容纳一批图片
	maxBody := int64(cfg.Upload.MaxFiles)*cfg.Upload.MaxFileBytes() + 10<<20
	r := router.NewAdminEngine(
		router.Deps{Log: log, Env: cfg.App.Env, Limits: cfg.Limits, MaxBodyBytes: maxBody},
		router.AdminGuard{Enabled: cfg.Admin.RequireAuth, Tokens: authSvc, Users: stores.Users},
		handler.NewAuthHandler(authSvc),
		reg,
	)
	if !cfg.Admin.RequireAuth {
		log.Warn("admin api running without authentication", zap.String("env", cfg.App.Env))
	}

	// HTTP Server
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动前打印可点击地址
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("image_host", cfg.ImageHost.Driver),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	// 关闭
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
	log.Info("admin api stopped gracefully")
}
