package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/todo-webapp/internal/database"
	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/repository"
	"github.com/Tomlord1122/todo-webapp/internal/server"
	"github.com/Tomlord1122/todo-webapp/internal/service"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 5 seconds to finish.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")
	done <- true
}

func main() {
	// 1. Database
	dbService, err := database.New(database.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	gormDB := dbService.GetDB()

	// Schema migration at startup; run via a separate migration step in
	// production deployments.
	log.Println("Running database auto-migration...")
	if err := gormDB.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.Todo{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}
	log.Println("Database auto-migration complete.")

	// 2. Repositories
	todoRepo := repository.NewGormTodoRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 3. Services
	todoService := service.NewTodoService(todoRepo)
	authService := service.NewAuthService(userRepo)

	// 4. HTTP server
	chiServer := server.NewServer(todoService, authService, dbService)

	// Periodically purge expired sessions so the table does not grow
	// unbounded. Stops when the process exits.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			purged, err := userRepo.DeleteExpiredSessions(context.Background(), time.Now())
			if err != nil {
				log.Printf("Error purging expired sessions: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("Purged %d expired session(s)", purged)
			}
		}
	}()

	done := make(chan bool, 1)
	go gracefulShutdown(chiServer, dbService, done)

	log.Printf("Starting server on %s", chiServer.Addr)
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
