package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/accountill/internal/http/auth"
	"github.com/MrJamesThe3rd/accountill/internal/http/invoice"
)

type Options struct {
	Timeout        time.Duration
	AllowedOrigins []string
	// JWTSecret enables bearer token checks on the invoice routes when set.
	JWTSecret string
}

func New(opts Options, invoicesV1 *invoice.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(opts.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/", health)

	router.Group(func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		invoicesV1.Routes(r)
	})

	return router
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("SERVER IS RUNNING"))
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}

	return origins
}
