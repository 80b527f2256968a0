package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		timeoutMiddleware(cfg.HTTP.RequestTimeout),
	)

	router.GET("/healthz", handler.Health)

	// The limiter runs after authentication so it can key on the client.
	limiter := rateLimitMiddleware(cfg.HTTP.RateLimit, logger)

	api := router.Group("/api/v1")
	api.POST("/auth/refresh", limiter, handler.RefreshToken)

	secured := api.Group("")
	if cfg.Auth.Enabled {
		secured.Use(authMiddleware(authSvc))
	}
	secured.Use(limiter)
	{
		secured.POST("/risk/assess", handler.AssessRisk)
		secured.POST("/risk/quick", handler.QuickRisk)
		secured.POST("/risk/what-if", handler.WhatIf)
		secured.POST("/routes/analyze", handler.AnalyzeRoute)
		secured.POST("/stops/nearby", handler.NearbyStops)
		secured.POST("/stops/fuel", handler.FuelStops)
		secured.POST("/stops/emergency", handler.EmergencyStops)
		secured.POST("/stops/before-zone", handler.StopsBeforeZone)
		secured.POST("/stops/hos", handler.HOSRecommendation)
		secured.POST("/proximity/check", handler.CheckProximity)
		secured.POST("/proximity/countdown", handler.ProximityCountdown)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        retryUpstreamFailures(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if claims, ok := claimsFrom(c); ok {
			attrs = append(attrs, "subject", claims.Subject)
		}
		logger.Info("http request", attrs...)
	}
}
