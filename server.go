package main

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/comments"
	"github.com/user/movielab-go/config"
	"github.com/user/movielab-go/favourites"
	"github.com/user/movielab-go/logging"
	"github.com/user/movielab-go/metrics"
	"github.com/user/movielab-go/movies"
	"github.com/user/movielab-go/users"
)

// pinger is the part of the pool /healthz needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// services bundles what the router dispatches to.
type services struct {
	db         pinger
	auth       auth.Service
	users      users.ProfileService
	movies     movies.MovieService
	comments   comments.CommentService
	favourites favourites.Service
}

func newServices(pool *pgxpool.Pool, cfg *config.AppConfig) services {
	return services{
		db:         pool,
		auth:       auth.NewAuthService(pool, cfg.Auth),
		users:      users.NewUserService(pool),
		movies:     movies.NewMovieService(pool),
		comments:   comments.NewCommentService(pool),
		favourites: favourites.NewManager(favourites.NewPgStore(pool)),
	}
}

func newRouter(cfg *config.AppConfig, svc services) chi.Router {
	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(logging.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.AccessLog)
	r.Use(metrics.Middleware)
	r.Use(recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders:   []string{"Location", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(svc.db))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	requireAuth := auth.JWTMiddleware(&cfg.Auth)

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.Limit(
			cfg.Server.RateLimitRequests,
			cfg.Server.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
		auth.NewHandlers(svc.auth).RegisterRoutes(r)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		users.NewUserHandlers(svc.users).RegisterRoutes(r)
	})

	r.Route("/api/movies", func(r chi.Router) {
		movies.NewMovieHandler(svc.movies, svc.comments).RegisterRoutes(r, requireAuth)
	})

	r.Route("/api/favourites", func(r chi.Router) {
		r.Use(requireAuth)
		favourites.NewHandler(svc.favourites).RegisterRoutes(r)
	})

	return r
}

// healthz godoc
// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} apperror.ErrorResponse
// @Router /healthz [get]
func healthz(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
			auth.WriteJSON(w, http.StatusServiceUnavailable, apperror.ErrorResponse{Error: "database unavailable"})
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		endpoint = rctx.RoutePattern()
	}
	metrics.RecordRateLimitHit(endpoint)
	auth.WriteJSON(w, http.StatusTooManyRequests, apperror.ErrorResponse{Error: "too many requests"})
}

// recoverer turns a handler panic into the standard 500 payload.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				err := apperror.NewInternalError("internal server error", fmt.Errorf("panic: %v", rvr))
				logging.Ctx(r.Context()).Error().Err(err).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
				auth.WriteJSON(w, err.StatusCode(), err.ToResponse())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
