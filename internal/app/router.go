package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RiderHandler    *handler.RiderHandler
	OrderHandler    *handler.OrderHandler
	TrackingHandler *handler.TrackingHandler
	RedisClient     redis.Cmdable
	NewRelicApp     *newrelic.Application
	Logger          *slog.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicIdentity())
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger))
	}

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		riders := api.Group("/riders")
		{
			riders.POST("", deps.RiderHandler.Register)
			riders.GET("/me", middleware.RequireRider(), deps.RiderHandler.Me)
			riders.PUT("/location", middleware.RequireRider(), deps.RiderHandler.UpdateLocation)
			riders.PUT("/availability", middleware.RequireRider(), deps.RiderHandler.SetAvailability)
		}

		api.GET("/rider/current-order", middleware.RequireRider(), deps.RiderHandler.CurrentOrder)

		orders := api.Group("/orders")
		{
			orders.POST("", middleware.RequireCustomer(), deps.OrderHandler.Create)
			orders.GET("/:id", deps.OrderHandler.Get)
			orders.GET("/:id/events", deps.OrderHandler.History)
			orders.PUT("/:id/status", deps.OrderHandler.UpdateStatus)
			orders.GET("/:id/rider-location", middleware.RequireCustomer(), deps.TrackingHandler.RiderLocation)
		}
	}

	router.GET("/ws/orders/:id/track", middleware.RequireCustomer(), deps.TrackingHandler.Stream)

	return router
}
