package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/repository"
)

// ErrTodoNotFound covers every miss on a single-todo operation: the id does
// not exist, or it exists but belongs to another user. The two causes are
// deliberately indistinguishable so responses never leak whether someone
// else's todo exists.
var ErrTodoNotFound = errors.New("todo not found")

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTodoRequest is a partial update. Pointer fields distinguish "field
// omitted" from "field set to its zero value" (e.g. completed=false).
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoResponse is the wire representation of a todo.
type TodoResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	UserID      string  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// TodoService contains the business rules for managing a user's todos. Every
// operation takes the authenticated user's id; it is never read from the
// request body.
type TodoService interface {
	CreateTodo(ctx context.Context, userID string, req CreateTodoRequest) (*TodoResponse, error)
	GetTodos(ctx context.Context, userID string) ([]TodoResponse, error)
	UpdateTodo(ctx context.Context, id, userID string, req UpdateTodoRequest) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, id, userID string) (*TodoResponse, error)
}

type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a todo service backed by repo.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

func (s *todoService) CreateTodo(ctx context.Context, userID string, req CreateTodoRequest) (*TodoResponse, error) {
	v := newValidator()
	v.check(req.Title != "", "title", "must be a non-empty string")
	if err := v.err(); err != nil {
		return nil, err
	}

	newTodo := &domain.Todo{
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		UserID:      userID,
	}

	if err := s.repo.Insert(ctx, newTodo); err != nil {
		log.Printf("Error creating todo in repository: %v", err)
		return nil, errors.New("failed to create todo item")
	}

	return toTodoResponse(newTodo), nil
}

func (s *todoService) GetTodos(ctx context.Context, userID string) ([]TodoResponse, error) {
	todos, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		log.Printf("Error fetching todos for user %s: %v", userID, err)
		return nil, errors.New("failed to retrieve todo items")
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *toTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id, userID string, req UpdateTodoRequest) (*TodoResponse, error) {
	v := newValidator()
	if req.Title != nil {
		v.check(*req.Title != "", "title", "must be a non-empty string")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	// Only fields present in the request make it into the patch; the
	// repository applies them in one ownership-scoped statement.
	patch := make(map[string]any)
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Completed != nil {
		patch["completed"] = *req.Completed
	}

	updated, err := s.repo.UpdateByID(ctx, id, userID, patch)
	if err != nil {
		log.Printf("Error updating todo %s: %v", id, err)
		return nil, errors.New("failed to update todo item")
	}
	if updated == nil {
		return nil, ErrTodoNotFound
	}

	return toTodoResponse(updated), nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id, userID string) (*TodoResponse, error) {
	deleted, err := s.repo.DeleteByID(ctx, id, userID)
	if err != nil {
		log.Printf("Error deleting todo %s: %v", id, err)
		return nil, errors.New("failed to delete todo item")
	}
	if deleted == nil {
		return nil, ErrTodoNotFound
	}

	return toTodoResponse(deleted), nil
}

func toTodoResponse(todo *domain.Todo) *TodoResponse {
	return &TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		UserID:      todo.UserID,
		CreatedAt:   todo.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   todo.UpdatedAt.Format(time.RFC3339),
	}
}
