package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-webapp/internal/service"
)

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, session, err := s.authService.SignUp(r.Context(), req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			respondWithValidationError(w, validationErr)
		} else {
			log.Printf("Error calling SignUp service: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to sign up")
		}
		return
	}

	setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": session.Token,
	})
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, session, err := s.authService.SignIn(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			log.Printf("Error calling SignIn service: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		}
		return
	}

	setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": session.Token,
	})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromContext(r.Context())

	if err := s.authService.SignOut(r.Context(), token); err != nil {
		log.Printf("Error calling SignOut service: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// sessionHandler reports the current user, mirroring what a frontend needs
// to restore state after a reload.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	respondWithJSON(w, http.StatusOK, map[string]any{
		"user": &service.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
			UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
		},
	})
}
