package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/middleware"
	"github.com/yourorg/trading-admin/internal/validator"
)

// NewRouter wires the dashboard, the JSON API and the health endpoints
func NewRouter(
	dashboard *DashboardHandler,
	api *APIHandler,
	pinger Pinger,
	templates *template.Template,
	logger *zap.Logger,
) *gin.Engine {
	if err := validator.RegisterGin(); err != nil {
		logger.Error("Failed to register request validators", zap.Error(err))
	}

	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	router.SetHTMLTemplate(templates)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": errorMessage("Database error", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Dashboard
	router.GET("/", dashboard.Index)
	router.GET("/views", dashboard.Views)
	router.GET("/functions", dashboard.Functions)
	router.POST("/functions/:fn", dashboard.ExecuteFunction)
	router.GET("/procedures", dashboard.Procedures)
	router.POST("/procedures/:proc", dashboard.ExecuteProcedure)

	// JSON API
	v1 := router.Group("/api/v1")
	{
		v1.GET("/reference", api.GetReference)
		v1.GET("/exchanges", api.ListExchanges)
		v1.DELETE("/exchanges/:id", api.DeleteExchange)
		v1.GET("/views/:view", api.GetView)

		functions := v1.Group("/functions")
		{
			functions.POST("/signal-count", api.SignalCount)
			functions.POST("/strategy-followers-count", api.FollowersCount)
			functions.POST("/users-by-strategy-currency", api.UsersByStrategyAndCurrency)
		}

		procedures := v1.Group("/procedures")
		{
			procedures.POST("/add-exchange-for-user", api.AddExchangeForUser)
			procedures.POST("/add-strategy-for-user", api.AddStrategyForUser)
			procedures.POST("/enable-user-strategy", api.EnableUserStrategy)
			procedures.POST("/disable-user-strategy", api.DisableUserStrategy)
		}
	}

	return router
}
