// @title        Catalog API
// @version      1.0
// @description  JSON-file-backed catalog: listing, search, categories, creation and stats.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/config"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, map[string]any{
		"service":     "catalog-service",
		"environment": cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("config", cfg.Fields()...)

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := item.NewFileRepo(cfg.DataFile)
	if _, err := repo.ModTime(context.Background()); err != nil {
		logger.Warn("data file not readable yet", zap.String("path", repo.Path()), zap.Error(err))
	}
	stats := item.NewStatsCache(repo)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: newRouter(logger, repo, stats, routerOptions{
			Dev:            cfg.Development(),
			CORSOrigins:    cfg.CORSOrigins,
			MetricsEnabled: cfg.MetricsEnabled,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("catalog-service listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}
