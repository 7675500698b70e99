// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// CertAuth is a middleware that enforces mutual TLS authentication.
//
// The Common Name (CN) of the client certificate names the vault owner; it
// is stored in the request context for GetOwnerFromContext. Requests without
// a client certificate are rejected with 401.
func CertAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
			http.Error(w, "no client certificate provided", http.StatusUnauthorized)
			return
		}
		cn := r.TLS.PeerCertificates[0].Subject.CommonName
		if cn == "" {
			http.Error(w, "client certificate has no common name", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), cn)))
	})
}

// WithOwner returns a copy of ctx that carries owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// GetOwnerFromContext extracts the vault owner from the request context.
// Returns an empty string if not found.
func GetOwnerFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ownerKey).(string); ok {
		return s
	}
	return ""
}
