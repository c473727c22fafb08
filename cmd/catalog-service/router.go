package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/catalog-browser/docs"
	"github.com/MikeMC777/catalog-browser/internal/httpx"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

type routerOptions struct {
	Dev            bool
	CORSOrigins    []string
	MetricsEnabled bool
}

func newRouter(log *zap.Logger, repo item.Repository, stats *item.StatsCache, opts routerOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		httpx.Recovery(log, opts.Dev),
		httpx.RequestID(),
		httpx.Logger(log),
		httpx.CORS(opts.CORSOrigins),
	)
	if opts.MetricsEnabled {
		r.Use(httpx.Metrics())
	}
	r.Use(httpx.ErrorHandler(log, opts.Dev))
	r.NoRoute(httpx.NotFound)

	api := r.Group("/api")
	{
		items := api.Group("/items")
		items.GET("", listItemsHandler(repo))
		items.GET("/search", searchItemsHandler(repo))
		items.GET("/categories", categoriesHandler(repo))
		items.GET("/:id", getItemHandler(repo))
		items.POST("", createItemHandler(repo))

		api.GET("/stats", statsHandler(stats))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}
