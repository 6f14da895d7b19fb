package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/token/api"
)

// Config holds the handlers and JWT settings needed to set up routes
type Config struct {
	// Prefix the token API is mounted under, e.g. /api/token
	Prefix       string
	TokenHandler *api.Handler

	// JWT authentication for callers
	JWTAuth  *jwtauth.JWTAuth
	Issuer   string
	Audience string

	// MetricsPath is left unmounted when empty or when MetricsHandler is nil
	MetricsPath    string
	MetricsHandler http.Handler
}

// SetupRoutes mounts the public and authenticated token routes
func SetupRoutes(router chi.Router, cfg Config) {
	if cfg.MetricsPath != "" && cfg.MetricsHandler != nil {
		router.Method(http.MethodGet, cfg.MetricsPath, cfg.MetricsHandler)
	}

	router.Group(func(r chi.Router) {
		r.Use(client.Verifier(cfg.JWTAuth))
		r.Use(jwtauth.Authenticator(cfg.JWTAuth))
		r.Use(client.NewAuthUserMiddleware(cfg.Issuer, cfg.Audience))

		// /me echoes the authenticated caller
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := client.GetAuthUser(r.Context())
			if !ok {
				slog.Error("Failed getting AuthUser")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			render.JSON(w, r, authUser)
		})

		r.Mount(cfg.Prefix, cfg.TokenHandler.Routes())
		slog.Info("Token routes mounted", "prefix", cfg.Prefix)
	})
}
