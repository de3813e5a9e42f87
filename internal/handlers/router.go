package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.lg))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/orders", h.SubmitOrder)
		v1.POST("/orders/:id/confirm-payment", h.ConfirmPayment)
		v1.POST("/items/:id/accept", h.AcceptItem)
		v1.POST("/items/:id/ready", h.CompleteItem)
		v1.POST("/items/:id/serve", h.ServeItem)

		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/unpaid", h.ListUnpaidOrders)
		v1.GET("/orders/completed", h.ListCompletedOrders)
		v1.GET("/orders/history/:booth", h.BoothHistory)
		v1.GET("/items", h.ListItems)
		v1.GET("/menus", h.ListMenu)

		v1.GET("/stream", h.Stream)

		v1.POST("/admin/auth", h.AdminAuth)
		v1.GET("/health", h.Health)
	}
	return r
}

func requestLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		lg.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
