// Package http assembles the gin router and HTTP server.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/interfaces/http/handlers"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine           *gin.Engine
	config           *config.Config
	logger           logger.Logger
	middleware       *handlers.Middleware
	healthHandler    *handlers.HealthHandler
	sessionHandler   *handlers.SessionHandler
	simulatorHandler *handlers.SimulatorHandler
	threatHandler    *handlers.ThreatHandler
	policyHandler    *handlers.PolicyHandler
	server           *http.Server
	routesSet        bool
}

// NewRouter creates the router.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	middleware *handlers.Middleware,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	simulatorHandler *handlers.SimulatorHandler,
	threatHandler *handlers.ThreatHandler,
	policyHandler *handlers.PolicyHandler,
) *Router {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:           gin.New(),
		config:           cfg,
		logger:           log.WithComponent(constants.ComponentHTTP),
		middleware:       middleware,
		healthHandler:    healthHandler,
		sessionHandler:   sessionHandler,
		simulatorHandler: simulatorHandler,
		threatHandler:    threatHandler,
		policyHandler:    policyHandler,
	}
}

// SetupRoutes registers middleware and all routes. Safe to call more than
// once.
func (r *Router) SetupRoutes() {
	if r.routesSet {
		return
	}
	r.routesSet = true

	r.engine.Use(gin.Recovery())
	r.engine.Use(r.middleware.RequestID())
	r.engine.Use(r.middleware.Logger())
	r.engine.Use(r.middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.Debug {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", r.sessionHandler.IngestSession)
			sessions.POST("/analyze", r.sessionHandler.AnalyzeSession)
			sessions.GET("", r.sessionHandler.ListSessions)
			sessions.GET("/:session_id", r.sessionHandler.GetSession)
			sessions.GET("/:session_id/risk-history", r.sessionHandler.GetRiskHistory)
		}

		risk := v1.Group("/risk")
		{
			risk.GET("/users/:user_name", r.sessionHandler.AssessUser)
			risk.GET("/devices/:mac_address", r.sessionHandler.AssessDevice)
		}

		threats := v1.Group("/threats")
		{
			threats.GET("/active", r.threatHandler.ListActiveThreats)
			threats.GET("/statistics", r.threatHandler.Statistics)
			threats.GET("/users/:user_name", r.threatHandler.AnalyzeUserBehavior)
			threats.GET("/devices/:mac_address", r.threatHandler.AnalyzeDeviceBehavior)
			threats.GET("/severity/:severity", r.threatHandler.ListBySeverity)
			threats.POST("/:detection_id/resolve", r.threatHandler.Resolve)
		}

		policies := v1.Group("/policies")
		{
			policies.GET("", r.policyHandler.ListPolicies)
			policies.POST("", r.policyHandler.CreatePolicy)
			policies.GET("/:policy_id", r.policyHandler.GetPolicy)
			policies.PUT("/:policy_id/status", r.policyHandler.UpdatePolicyStatus)
			policies.DELETE("/:policy_id", r.policyHandler.DeletePolicy)
		}

		recommendations := v1.Group("/recommendations")
		{
			recommendations.GET("", r.policyHandler.ListRecommendations)
			recommendations.GET("/users/:user_name", r.policyHandler.RecommendForUser)
			recommendations.POST("/emergency", r.policyHandler.RecommendForEmergency)
			recommendations.POST("/:recommendation_id/implement", r.policyHandler.ImplementRecommendation)
			recommendations.POST("/:recommendation_id/reject", r.policyHandler.RejectRecommendation)
		}

		sim := v1.Group("/simulator")
		{
			sim.GET("/status", r.simulatorHandler.Status)
			sim.POST("/start", r.simulatorHandler.Start)
			sim.POST("/stop", r.simulatorHandler.Stop)
			sim.PUT("/config", r.simulatorHandler.Configure)
			sim.GET("/devices", r.simulatorHandler.ListDevices)
			sim.GET("/devices/:device_id", r.simulatorHandler.GetDevice)
			sim.GET("/events", r.simulatorHandler.ListEvents)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server. It blocks until the server stops.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting HTTP server", logger.Fields{"address": addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the underlying gin engine, used by tests.
func (r *Router) Engine() *gin.Engine {
	r.SetupRoutes()
	return r.engine
}
