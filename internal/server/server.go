package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Tomlord1122/todo-webapp/internal/database"
	"github.com/Tomlord1122/todo-webapp/internal/service"
)

type Server struct {
	port        int
	todoService service.TodoService
	authService service.AuthService
	db          database.Service
	staticDir   string
}

// NewServer assembles the HTTP server: auth endpoints, session-guarded todo
// endpoints and static serving of the frontend build output.
func NewServer(todoService service.TodoService, authService service.AuthService, dbService database.Service) *http.Server {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Printf("Warning: Invalid PORT environment variable '%s'. Using default 8080. Error: %v", portStr, err)
		port = 8080
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./client/dist"
	}

	appServer := &Server{
		port:        port,
		todoService: todoService,
		authService: authService,
		db:          dbService,
		staticDir:   staticDir,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
