package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmsync/feedstock-service/internal/auth"
	consumptionH "github.com/farmsync/feedstock-service/internal/consumption/handler"
	feedH "github.com/farmsync/feedstock-service/internal/feed/handler"
	notificationH "github.com/farmsync/feedstock-service/internal/notification/handler"
	sessionH "github.com/farmsync/feedstock-service/internal/session/handler"
	stockH "github.com/farmsync/feedstock-service/internal/stock/handler"
)

type Handlers struct {
	Feed         *feedH.FeedHandler
	Stock        *stockH.StockHandler
	Session      *sessionH.SessionHandler
	Consumption  *consumptionH.ConsumptionHandler
	Notification *notificationH.NotificationHandler
}

// New wires the gin engine with all routes and middleware.
func New(h *Handlers, appEnv string, logger *zap.Logger) *gin.Engine {
	if appEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(actorMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/feeds", h.Feed.Create)
		v1.GET("/feeds", h.Feed.List)
		v1.GET("/feeds/:id", h.Feed.Get)
		v1.PUT("/feeds/:id", h.Feed.Update)
		v1.DELETE("/feeds/:id", h.Feed.Delete)
		v1.PUT("/feeds/:id/nutrients", h.Feed.SetComposition)

		v1.POST("/nutrients", h.Feed.CreateNutrient)
		v1.GET("/nutrients", h.Feed.ListNutrients)

		v1.GET("/stocks", h.Stock.List)
		v1.GET("/stocks/:feedID", h.Stock.Get)
		v1.POST("/stocks/:feedID/restock", h.Stock.Restock)
		v1.PUT("/stocks/:feedID", h.Stock.SetStock)
		v1.GET("/stock-history", h.Stock.History)

		v1.POST("/sessions", h.Session.Create)
		v1.GET("/sessions", h.Session.List)
		v1.GET("/sessions/:id", h.Session.Get)
		v1.DELETE("/sessions/:id", h.Session.Delete)
		v1.GET("/sessions/:id/nutrients", h.Session.Nutrients)

		v1.POST("/sessions/:id/items", h.Consumption.AddItems)
		v1.GET("/sessions/:id/items", h.Consumption.ListBySession)
		v1.PUT("/items/:id", h.Consumption.UpdateItem)
		v1.DELETE("/items/:id", h.Consumption.DeleteItem)

		v1.GET("/notifications", h.Notification.List)
		v1.PATCH("/notifications/:id/read", h.Notification.MarkRead)
		v1.DELETE("/notifications/:id", h.Notification.Delete)
	}

	return r
}

// actorMiddleware lifts the gateway-populated identity headers onto the
// request context.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := auth.Actor{
			ID:   c.GetHeader("x-user-id"),
			Name: c.GetHeader("x-user-name"),
			Role: c.GetHeader("x-user-role"),
		}
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
