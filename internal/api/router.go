package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/app"
	iauth "github.com/bannerworks/alertbanner/internal/auth"
	"github.com/bannerworks/alertbanner/internal/handlers"
	"github.com/bannerworks/alertbanner/internal/middleware"
	"github.com/bannerworks/alertbanner/internal/realtime"
	"github.com/bannerworks/alertbanner/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *realtime.Hub, notifier *services.NotifierService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	alertHandler, err := handlers.NewAlertHandler(db, cfg.Features.WorkflowPolicy(), notifier)
	if err != nil {
		return nil, err
	}
	languageHandler, err := handlers.NewLanguageHandler(db)
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(jwt)
	requireEditor := middleware.RequireEditor()

	api := r.Group("/api")
	api.Use(requireAuth)

	alerts := api.Group("/alerts")
	{
		alerts.GET("", alertHandler.List)
		alerts.GET("/:id", alertHandler.Get)
		alerts.POST("", requireEditor, alertHandler.Create)
		alerts.PUT("/:id", requireEditor, alertHandler.Update)
		alerts.DELETE("/:id", requireEditor, alertHandler.Delete)
		alerts.POST("/:id/languages", requireEditor, alertHandler.AddLanguage)
		alerts.DELETE("/:id/languages/:code", requireEditor, alertHandler.RemoveLanguage)
	}

	drafts := api.Group("/drafts")
	{
		drafts.GET("", alertHandler.ListDrafts)
		drafts.POST("", requireEditor, alertHandler.SaveDraft)
	}

	templates := api.Group("/templates")
	{
		templates.GET("", alertHandler.ListTemplates)
		templates.POST("/:id/instantiate", requireEditor, alertHandler.Instantiate)
	}

	languages := api.Group("/languages")
	{
		languages.GET("", languageHandler.List)
		languages.POST("/:code/provision", requireEditor, languageHandler.Provision)
	}

	if cfg.Features.Realtime.Enabled && hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub, jwt)
		// Token arrives as a query parameter; browsers cannot set websocket headers.
		r.GET("/api/realtime/alerts", realtimeHandler.Stream)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
