package router

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(scanHandler *handlers.ScanHandler, vocabHandler *handlers.VocabHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/scan/inbound", scanHandler.Inbound)
		api.POST("/scan/outbound", scanHandler.Outbound)
		api.POST("/scan/first", scanHandler.FirstStation)
		api.POST("/scan/trace", scanHandler.Trace)

		api.GET("/config/series", vocabHandler.Series)
		api.GET("/config/models", vocabHandler.Models)
		api.GET("/config/containers", vocabHandler.Containers)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// QR deep links arrive as GET /b=<barcode>; "=" keeps them out of normal
	// route patterns, so they land in NoRoute and get bounced to the client
	// app with the code as a query parameter.
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if code, ok := strings.CutPrefix(path, "/b="); ok {
			c.Redirect(http.StatusFound, "/?b="+url.QueryEscape(code))
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
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
