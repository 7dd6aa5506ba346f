// Package server wires the HTTP routes and middleware.
package server

import (
	"paylot-backend/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Config holds the router dependencies.
type Config struct {
	Handler *handlers.Handler
	Logger  *logrus.Logger
	// LeadRateLimit is the per-IP, per-minute cap on lead submissions.
	LeadRateLimit int
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	// Use the socket address; no proxy is trusted to set X-Forwarded-For.
	router.SetTrustedProxies(nil)

	router.Use(
		requestIDMiddleware(),
		loggingMiddleware(cfg.Logger),
		gin.Recovery(),
		corsMiddleware(),
	)

	h := cfg.Handler
	router.GET("/", h.Root)
	router.GET("/test", h.Health)

	api := router.Group("/api")
	api.GET("/hello", h.Hello)
	api.GET("/dashboard", h.Dashboard)
	registerLeadRoutes(api, h, newIPRateLimiter(cfg.LeadRateLimit))

	return router
}

func registerLeadRoutes(router *gin.RouterGroup, h *handlers.Handler, limiter *ipRateLimiter) {
	leads := router.Group("/leads")
	{
		leads.POST("", rateLimitMiddleware(limiter), h.CreateLead)
		leads.GET("", h.ListLeads)
		leads.GET("/export", h.ExportLeads)
		leads.GET("/:id", h.GetLead)
	}
}
