package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/todo-web/internal/session"
)

type contextKey struct{}

var identityKey contextKey

func withIdentity(ctx context.Context, id session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the user that the identity middleware stored in ctx.
func IdentityFrom(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(identityKey).(session.Identity)
	return id, ok
}

// requireIdentity resolves the caller before any handler runs. Requests
// without an identity are answered by onMissing and never reach the store.
func (s *Server) requireIdentity(onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := s.resolver.Resolve(r)
			if !ok {
				onMissing(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.Session.LoginURL, http.StatusFound)
}

func (s *Server) unauthorizedJSON(w http.ResponseWriter, r *http.Request) {
	s.respondWithError(w, http.StatusUnauthorized, "Authentication required")
}

// currentUser is only called behind requireIdentity.
func currentUser(r *http.Request) session.Identity {
	id, _ := IdentityFrom(r.Context())
	return id
}

func todoID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
