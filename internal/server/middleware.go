package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/service"
)

const sessionCookieName = "session_token"

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "sessionToken"
)

// requireSession resolves the session cookie to a user and stores both the
// user and the raw token on the request context. Requests without a valid,
// unexpired session never reach the wrapped handler.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := s.authService.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				respondWithError(w, http.StatusUnauthorized, "Authentication required")
			} else {
				log.Printf("Error authenticating session: %v", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to authenticate request")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, sessionContextKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the authenticated user placed on the context by
// requireSession. Only call it from handlers behind that middleware.
func userFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

func sessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionContextKey).(string)
	return token
}

func setSessionCookie(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
