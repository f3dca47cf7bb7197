package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/service"
)

// fakeTodoRepo is an in-memory stand-in for the GORM repository, applying
// patches the same way the SQL layer does: only rows matching both id and
// user id are touched.
type fakeTodoRepo struct {
	todos     map[string]domain.Todo
	insertErr error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[string]domain.Todo)}
}

func (f *fakeTodoRepo) Insert(_ context.Context, todo *domain.Todo) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeTodoRepo) FindByUserID(_ context.Context, userID string) ([]domain.Todo, error) {
	result := make([]domain.Todo, 0)
	for _, todo := range f.todos {
		if todo.UserID == userID {
			result = append(result, todo)
		}
	}
	return result, nil
}

func (f *fakeTodoRepo) UpdateByID(_ context.Context, id, userID string, patch map[string]any) (*domain.Todo, error) {
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, nil
	}
	if title, ok := patch["title"]; ok {
		todo.Title = title.(string)
	}
	if desc, ok := patch["description"]; ok {
		d := desc.(string)
		todo.Description = &d
	}
	if completed, ok := patch["completed"]; ok {
		todo.Completed = completed.(bool)
	}
	todo.UpdatedAt = time.Now()
	f.todos[id] = todo
	return &todo, nil
}

func (f *fakeTodoRepo) DeleteByID(_ context.Context, id, userID string) (*domain.Todo, error) {
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, nil
	}
	delete(f.todos, id)
	return &todo, nil
}

func TestCreateTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("rejects empty title before the repository is touched", func(t *testing.T) {
		repo := newFakeTodoRepo()
		svc := service.NewTodoService(repo)

		_, err := svc.CreateTodo(ctx, userID, service.CreateTodoRequest{Title: ""})

		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Contains(t, validationErr.Fields, "title")
		require.Empty(t, repo.todos)
	})

	t.Run("creates with defaults and echoes input", func(t *testing.T) {
		repo := newFakeTodoRepo()
		svc := service.NewTodoService(repo)

		desc := "details"
		resp, err := svc.CreateTodo(ctx, userID, service.CreateTodoRequest{
			Title:       "Test Todo",
			Description: &desc,
		})
		require.NoError(t, err)
		require.Equal(t, "Test Todo", resp.Title)
		require.NotNil(t, resp.Description)
		require.Equal(t, desc, *resp.Description)
		require.False(t, resp.Completed)
		require.Equal(t, userID, resp.UserID)
		require.NotEmpty(t, resp.ID)
	})

	t.Run("masks repository failures", func(t *testing.T) {
		repo := newFakeTodoRepo()
		repo.insertErr = errors.New("connection reset")
		svc := service.NewTodoService(repo)

		_, err := svc.CreateTodo(ctx, userID, service.CreateTodoRequest{Title: "Test Todo"})
		require.Error(t, err)
		require.NotContains(t, err.Error(), "connection reset")
	})
}

func TestGetTodos(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTodoRepo()
	svc := service.NewTodoService(repo)

	userA := uuid.NewString()
	userB := uuid.NewString()

	_, err := svc.CreateTodo(ctx, userA, service.CreateTodoRequest{Title: "Todo 1"})
	require.NoError(t, err)
	_, err = svc.CreateTodo(ctx, userA, service.CreateTodoRequest{Title: "Todo 2"})
	require.NoError(t, err)

	todosA, err := svc.GetTodos(ctx, userA)
	require.NoError(t, err)
	require.Len(t, todosA, 2)

	todosB, err := svc.GetTodos(ctx, userB)
	require.NoError(t, err)
	require.NotNil(t, todosB)
	require.Empty(t, todosB)
}

func TestUpdateTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	setup := func(t *testing.T) (*fakeTodoRepo, service.TodoService, string) {
		repo := newFakeTodoRepo()
		svc := service.NewTodoService(repo)
		created, err := svc.CreateTodo(ctx, userID, service.CreateTodoRequest{Title: "Test Todo"})
		require.NoError(t, err)
		return repo, svc, created.ID
	}

	t.Run("applies only the provided fields", func(t *testing.T) {
		_, svc, id := setup(t)

		completed := true
		resp, err := svc.UpdateTodo(ctx, id, userID, service.UpdateTodoRequest{
			Completed: &completed,
		})
		require.NoError(t, err)
		require.Equal(t, "Test Todo", resp.Title)
		require.True(t, resp.Completed)
	})

	t.Run("updates title and completed together", func(t *testing.T) {
		_, svc, id := setup(t)

		title := "Updated Title"
		completed := true
		resp, err := svc.UpdateTodo(ctx, id, userID, service.UpdateTodoRequest{
			Title:     &title,
			Completed: &completed,
		})
		require.NoError(t, err)
		require.Equal(t, "Updated Title", resp.Title)
		require.True(t, resp.Completed)
	})

	t.Run("rejects empty title without mutating", func(t *testing.T) {
		repo, svc, id := setup(t)

		empty := ""
		_, err := svc.UpdateTodo(ctx, id, userID, service.UpdateTodoRequest{Title: &empty})

		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "Test Todo", repo.todos[id].Title)
	})

	t.Run("nonexistent id is not found", func(t *testing.T) {
		_, svc, _ := setup(t)

		title := "Updated Title"
		_, err := svc.UpdateTodo(ctx, uuid.NewString(), userID, service.UpdateTodoRequest{Title: &title})
		require.ErrorIs(t, err, service.ErrTodoNotFound)
	})

	t.Run("another user's id behaves like nonexistent", func(t *testing.T) {
		repo, svc, id := setup(t)

		title := "Hijacked"
		_, err := svc.UpdateTodo(ctx, id, uuid.NewString(), service.UpdateTodoRequest{Title: &title})
		require.ErrorIs(t, err, service.ErrTodoNotFound)
		require.Equal(t, "Test Todo", repo.todos[id].Title)
	})
}

func TestDeleteTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	repo := newFakeTodoRepo()
	svc := service.NewTodoService(repo)
	created, err := svc.CreateTodo(ctx, userID, service.CreateTodoRequest{Title: "Test Todo"})
	require.NoError(t, err)

	t.Run("another user's id is not found", func(t *testing.T) {
		_, err := svc.DeleteTodo(ctx, created.ID, uuid.NewString())
		require.ErrorIs(t, err, service.ErrTodoNotFound)
	})

	t.Run("returns the deleted record", func(t *testing.T) {
		resp, err := svc.DeleteTodo(ctx, created.ID, userID)
		require.NoError(t, err)
		require.Equal(t, created.ID, resp.ID)

		todos, err := svc.GetTodos(ctx, userID)
		require.NoError(t, err)
		require.Empty(t, todos)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		_, err := svc.DeleteTodo(ctx, created.ID, userID)
		require.ErrorIs(t, err, service.ErrTodoNotFound)
	})
}
