package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
)

// TodoRepository defines the ownership-scoped todo data operations. Update
// and delete filter by both id and user id inside a single statement, so the
// authorization check and the mutation cannot race; a miss (nonexistent id,
// or a row owned by someone else) is reported as (nil, nil), never an error.
type TodoRepository interface {
	Insert(ctx context.Context, todo *domain.Todo) error
	FindByUserID(ctx context.Context, userID string) ([]domain.Todo, error)
	UpdateByID(ctx context.Context, id, userID string, patch map[string]any) (*domain.Todo, error)
	DeleteByID(ctx context.Context, id, userID string) (*domain.Todo, error)
}

type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository.
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Insert persists a new todo. The generated id, defaults and timestamps are
// populated on the passed struct. A nonexistent UserID surfaces as a
// foreign-key violation from the database.
func (r *gormTodoRepository) Insert(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(todo).Error
}

// FindByUserID returns every todo owned by userID, oldest first. A user with
// no todos (or no such user at all) yields an empty slice, not an error.
func (r *gormTodoRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&todos)
	if result.Error != nil {
		return nil, result.Error
	}
	return todos, nil
}

// UpdateByID applies patch to the row matching both id and userID and returns
// the updated row via RETURNING. An empty patch degrades to an
// ownership-scoped read.
func (r *gormTodoRepository) UpdateByID(ctx context.Context, id, userID string, patch map[string]any) (*domain.Todo, error) {
	if len(patch) == 0 {
		return r.findOwned(ctx, id, userID)
	}

	var todo domain.Todo
	result := r.db.WithContext(ctx).
		Model(&todo).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(patch)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &todo, nil
}

// DeleteByID removes the row matching both id and userID and returns the
// deleted row via RETURNING, or (nil, nil) when nothing matched.
func (r *gormTodoRepository) DeleteByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&todo)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &todo, nil
}

func (r *gormTodoRepository) findOwned(ctx context.Context, id, userID string) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &todo, nil
}

// IsForeignKeyViolation reports whether err is a Postgres foreign-key
// constraint violation (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
