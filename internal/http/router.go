package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/userapi/internal/http/handlers"
	"github.com/geocoder89/userapi/internal/http/middlewares"
	"github.com/geocoder89/userapi/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterOptions struct {
	Env         string
	ServiceName string

	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Prom and Gatherer are optional; /metrics is only mounted with a Gatherer.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// Ready lists readiness dependencies by name.
	Ready map[string]handlers.Pinger
}

func NewRouter(log *slog.Logger, users handlers.UsersService, opts RouterOptions) *gin.Engine {
	if opts.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	// inside the logger so a recovered panic still gets its "request completed" line
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORS(opts.CORSAllowedOrigins))
	}
	if opts.Prom != nil {
		r.Use(opts.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(opts.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// users
	uh := handlers.NewUsersHandler(users)

	api := r.Group("/users")
	if opts.RateLimitPerMinute > 0 {
		api.Use(middlewares.NewRateLimiter(opts.RateLimitPerMinute, time.Minute).Middleware())
	}
	api.Use(middlewares.MaxBodyBytes(opts.MaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	api.GET("", uh.GetUsers)
	api.POST("", uh.CreateUser)
	api.GET("/:id", uh.GetUserByID)
	api.PUT("/:id", uh.UpdateUser)
	api.DELETE("/:id", uh.DeleteUser)

	return r
}
