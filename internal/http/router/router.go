package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/JesseBremer/journal-mate/docs"
	"github.com/JesseBremer/journal-mate/internal/http/ban"
	"github.com/JesseBremer/journal-mate/internal/http/handlers"
	mw "github.com/JesseBremer/journal-mate/internal/http/middleware"
	rl "github.com/JesseBremer/journal-mate/internal/http/rate_limiter"
)

type Config struct {
	Server *handlers.Server
	// Limiter throttles the login and register routes; nil disables it.
	Limiter *rl.Limiter
	Bans    ban.Tracker
	// TrustProxy rewrites the client address from proxy headers before the
	// limiter sees it.
	TrustProxy bool
}

func NewRouter(cfg Config) http.Handler {
	s := cfg.Server
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(cfg.Limiter, cfg.Bans))
			r.Post("/register", s.RegisterHandler)
			r.Post("/login", s.LoginHandler)
		})

		r.Get("/auth/status", s.AuthStatusHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(s.Sessions(), s.CookieName()))

			r.Post("/logout", s.LogoutHandler)
			r.Delete("/delete-account", s.DeleteAccountHandler)

			r.Get("/entries", s.GetEntriesHandler)
			r.Post("/entries", s.CreateEntryHandler)
			r.Get("/entries/{id}", s.GetEntryHandler)
			r.Put("/entries/{id}", s.UpdateEntryHandler)
			r.Delete("/entries/{id}", s.DeleteEntryHandler)

			r.Get("/stats", s.StatsHandler)
			r.Get("/export", s.ExportEntriesHandler)
			r.Post("/import", s.ImportEntriesHandler)
		})
	})

	return r
}
