package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-webapp/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up/email", s.signUpHandler)
		r.Post("/auth/sign-in/email", s.signInHandler)

		// Everything below requires a valid session cookie.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/sign-out", s.signOutHandler)
			r.Get("/auth/session", s.sessionHandler)

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", s.getTodosHandler)
				r.Post("/", s.createTodoHandler)
				r.Patch("/{id}", s.updateTodoHandler)
				r.Delete("/{id}", s.deleteTodoHandler)
			})
		})
	})

	// Anything that is not an API route falls through to the frontend
	// build output.
	r.NotFound(s.staticHandler)

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) getTodosHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	todos, err := s.todoService.GetTodos(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error calling GetTodos service: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req service.CreateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todoResp, err := s.todoService.CreateTodo(r.Context(), user.ID, req)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			respondWithValidationError(w, validationErr)
		} else {
			log.Printf("Error calling CreateTodo service: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to create todo")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, todoResp)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req service.UpdateTodoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updatedTodo, err := s.todoService.UpdateTodo(r.Context(), id, user.ID, req)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrTodoNotFound):
			respondWithError(w, http.StatusNotFound, "Todo not found")
		case errors.As(err, &validationErr):
			respondWithValidationError(w, validationErr)
		default:
			log.Printf("Error calling UpdateTodo service: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to update todo")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updatedTodo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id := chi.URLParam(r, "id")

	deletedTodo, err := s.todoService.DeleteTodo(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrTodoNotFound) {
			respondWithError(w, http.StatusNotFound, "Todo not found")
		} else {
			log.Printf("Error calling DeleteTodo service: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to delete todo")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, deletedTodo)
}

// decodeJSONBody decodes the request body into dst, rejecting unknown fields
// and type mismatches. It writes the 400 response itself and reports whether
// decoding succeeded.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
		respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.EOF):
		respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
	default:
		log.Printf("Error decoding request body: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Error processing request")
	}
	return false
}

func respondWithValidationError(w http.ResponseWriter, err *service.ValidationError) {
	respondWithJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "Invalid request body",
		"fields": err.Fields,
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
