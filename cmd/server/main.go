package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/tracemap-backend-go/internal/api"
	"github.com/jengzang/tracemap-backend-go/internal/app"
	"github.com/jengzang/tracemap-backend-go/internal/config"
	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/middleware"
	"github.com/jengzang/tracemap-backend-go/internal/render"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	svc, err := app.NewGlobeService(cfg, database.GetDB(), render.NewRecorder(cfg.CommandsMax))
	if err != nil {
		log.Fatal("Failed to initialize service:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	go limiter.Run(ctx.Done())

	if cfg.JWTSecret == "" {
		log.Printf("JWT_SECRET not set, mutating endpoints are open")
	}

	// 初始化路由
	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: api.SetupRouter(cfg, svc, limiter),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
	log.Printf("Server stopped")
}
