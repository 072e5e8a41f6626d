package app

import (
	"database/sql"
	"net/http"
	"time"

	"quizbank/internal/app/observability"
	"quizbank/internal/auth"
	"quizbank/internal/question"
	"quizbank/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg Config, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(db)
	r.Use(collector.Middleware)

	r.Use(RequireAllowedOrigin(cfg.AllowedOrigins))
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return OriginAllowed(cfg.AllowedOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", auth.HeaderEmail, auth.HeaderRole},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(db, auth.ServiceConfig{})
	authHandler := auth.NewHandler(authSvc)

	questionSvc := question.NewService(db, question.ServiceConfig{
		PlaceholderAssignees: cfg.BulkPlaceholderAssignees,
	})
	questionHandler := question.NewHandler(questionSvc)

	submissionSvc := submission.NewService(db)
	submissionHandler := submission.NewHandler(submissionSvc)

	authLimiter := NewIPRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	r.Route("/api/auth", func(api chi.Router) {
		api.Use(RateLimitMiddleware(authLimiter))
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)
		api.Get("/users", authHandler.ListUsers)
		api.Delete("/user/{id}", authHandler.DeleteUser)
	})

	r.Group(func(secure chi.Router) {
		secure.Use(auth.RequireIdentity(auth.HeaderVerifier{}))

		secure.Route("/api/questions", func(api chi.Router) {
			api.Get("/", questionHandler.List)
			api.Post("/", questionHandler.Create)
			api.Post("/bulk", questionHandler.CreateBulk)

			api.Group(func(admin chi.Router) {
				admin.Use(auth.RequireRoles(auth.RoleAdmin))
				admin.Get("/export", questionHandler.Export)
			})

			api.Get("/{id}", questionHandler.Get)
			api.Put("/{id}", questionHandler.Update)
			api.Delete("/{id}", questionHandler.Delete)
		})

		secure.Post("/api/submission", submissionHandler.Submit)
	})

	return r
}
