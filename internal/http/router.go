package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/http/handlers"
	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Sessions handlers.Sessions
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Ready    func() error
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.Config.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.AllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))

	// operational
	h := handlers.NewHealthHandler(d.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limiter := middlewares.NewRateLimiter(d.Config.RateLimitPerMinute, time.Minute)
	limit := limiter.RateLimiterMiddleware(middlewares.KeyByIP)
	session := middlewares.Session(int(d.Config.SessionTTL.Seconds()))

	// JSON widget API
	wh := handlers.NewWidgetHandler(d.Sessions)
	api := r.Group("/api/widget",
		limit,
		session,
		middlewares.MaxBodyBytes(d.Config.MaxBodyBytes),
		middlewares.RequireJSON(),
	)
	api.GET("", wh.Get)
	api.POST("/submit", wh.Submit)
	api.POST("/cancel", wh.CancelEdit)
	api.POST("/users/:id/edit", wh.BeginEdit)
	api.DELETE("/users/:id", wh.Delete)
	api.POST("/sort/:key", wh.Sort)
	api.POST("/page/:page", wh.GoToPage)
	api.POST("/prev", wh.Prev)
	api.POST("/next", wh.Next)
	api.DELETE("/session", wh.Reset)

	// rendered page
	ph := handlers.NewPageHandler(d.Sessions)
	r.GET("/", limit, session, ph.Render)
	ui := r.Group("/ui",
		limit,
		session,
		middlewares.MaxBodyBytes(d.Config.MaxBodyBytes),
	)
	ui.POST("/submit", ph.Submit)
	ui.POST("/cancel", ph.CancelEdit)
	ui.POST("/users/:id/edit", ph.BeginEdit)
	ui.POST("/users/:id/delete", ph.Delete)
	ui.POST("/sort/:key", ph.Sort)
	ui.POST("/page/:page", ph.GoToPage)
	ui.POST("/prev", ph.Prev)
	ui.POST("/next", ph.Next)

	return r
}
