package http

import (
	"net/http"
	"time"

	"github.com/bpmonitor/capstone/internal/middleware"
	"github.com/bpmonitor/capstone/internal/session"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RouterOptions holds the optional parts of the router.
type RouterOptions struct {
	// Metrics, when set, instruments every request and serves /metrics.
	Metrics *middleware.Metrics
	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string
	// LoginRate caps credential lookups per client IP per minute; 0 disables it.
	LoginRate int
	// StaticDir, when set, is served for every path outside /api.
	StaticDir string
}

// NewRouter constructs the HTTP handler serving the REST API.
//
// Routes:
//
//	POST   /api/assignment/user            → userHandler.Register
//	GET    /api/assignment/user            → userHandler.FindUsers (login, lookup or list)
//	GET    /api/assignment/user/{id}       → userHandler.FindUserByID
//	PUT    /api/assignment/user/{id}       → userHandler.UpdateUser
//	DELETE /api/assignment/user/{id}       → userHandler.DeleteUser
//	POST   /api/assignment/logout          → userHandler.Logout
//	GET    /api/assignment/loggedin        → userHandler.LoggedIn
//	GET    /api/capstone/user/{userId}/bp  → bpHandler.GetAllBPForUser
//	GET    /api/capstone/user/{userId}/sampledata → bpHandler.GetSampleDataForUser
//	POST   /api/capstone/bp                → bpHandler.ImportSample
//
// Every /api request carries a session attached by sessions.Middleware.
func NewRouter(
	userHandler *UserHandler,
	bpHandler *BPHandler,
	sessions *session.Manager,
	logger *zap.Logger,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Only allow request bodies with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(sessions.Middleware)

		r.Route("/assignment", func(r chi.Router) {
			r.Post("/user", userHandler.Register)
			r.With(limitCredentialLookups(opts.LoginRate)).Get("/user", userHandler.FindUsers)
			r.Get("/user/{id}", userHandler.FindUserByID)
			r.Put("/user/{id}", userHandler.UpdateUser)
			r.Delete("/user/{id}", userHandler.DeleteUser)
			r.Post("/logout", userHandler.Logout)
			r.Get("/loggedin", userHandler.LoggedIn)
		})

		r.Route("/capstone", func(r chi.Router) {
			r.Get("/user/{userId}/bp", bpHandler.GetAllBPForUser)
			r.Get("/user/{userId}/sampledata", bpHandler.GetSampleDataForUser)
			r.Post("/bp", bpHandler.ImportSample)
			r.Post("/bp/", bpHandler.ImportSample)
		})
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}

// limitCredentialLookups rate-limits GET /user requests that carry a
// password, per client IP. Plain lookups and listings pass through.
func limitCredentialLookups(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.LimitByIP(perMinute, time.Minute)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("password") == "" {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
