package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/authhub/internal/auth"
	"github.com/geocoder89/authhub/internal/config"
	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/geocoder89/authhub/internal/http/handlers"
	"github.com/geocoder89/authhub/internal/http/middlewares"
	"github.com/geocoder89/authhub/internal/observability"
	"github.com/geocoder89/authhub/internal/repo/postgres"
	"github.com/geocoder89/authhub/internal/session"
	"github.com/geocoder89/authhub/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UsersStore is everything the router needs from a credential store.
type UsersStore interface {
	auth.UserStore
	ListAll(ctx context.Context) ([]user.Listing, error)
}

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool) *gin.Engine {
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// wire up the repository
	users := postgres.NewUsersRepo(pool, prom)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	return assemble(cfg, log, users, ping, prom, registry)
}

// NewRouterWithStore runs the full stack on an alternate store implementation.
// Tests use this with the in-memory repo.
func NewRouterWithStore(cfg config.Config, log *slog.Logger, users UsersStore, ping func() error) *gin.Engine {
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	return assemble(cfg, log, users, ping, prom, registry)
}

func assemble(cfg config.Config, log *slog.Logger, users UsersStore, ping func() error, prom *observability.Prom, registry *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.SetHTMLTemplate(web.Templates())

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("authhub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(session.Middleware(session.NewStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.Env == "prod")))

	// health + metrics
	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// auth flows

	authenticator := auth.NewAuthenticator(users, prom)
	authHandler := handlers.NewAuthHandler(authenticator, users, log, prom)

	// the credential endpoints sit behind a per-IP window
	limiter := middlewares.NewRateLimiter(10, time.Minute)

	r.GET("/", session.RequireLogin(), authHandler.Index)
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/users", session.RequireLogin(), authHandler.ListUsers)

	return r
}
