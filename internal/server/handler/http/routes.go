package http

import (
	"net/http"

	"github.com/atinyakov/secretkeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the vault
// API under /api.
//
// Routes:
//
//	POST   /api/cards                 → CreateCard
//	PATCH  /api/cards/{name}          → UpdateCard
//	GET    /api/secrets               → List (?folder=)
//	GET    /api/folders               → Folders
//	GET    /api/secrets/{name}/reveal → Reveal
//	POST   /api/secrets/{name}/rename → Rename
//	POST   /api/secrets/{name}/move   → Move
//	DELETE /api/secrets/{name}        → Delete
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500
//  2. AllowContentType("application/json"): rejects non-JSON bodies
//  3. WithRequestLogging(logger): logs incoming requests
//  4. auth: resolves the vault owner
//
// auth is normally middleware.CertAuth.
func NewRouter(
	h *SecretHandler,
	logger *zap.Logger,
	auth func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(auth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/cards", h.CreateCard)
		r.Patch("/cards/{name}", h.UpdateCard)

		r.Get("/folders", h.Folders)

		r.Route("/secrets", func(r chi.Router) {
			r.Get("/", h.List)
			r.Delete("/{name}", h.Delete)
			r.Get("/{name}/reveal", h.Reveal)
			r.Post("/{name}/rename", h.Rename)
			r.Post("/{name}/move", h.Move)
		})
	})

	return r
}
