package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
)

// UserRepository is the data store behind the auth service: user records and
// the DB-backed sessions issued on sign-in. Lookups that miss return
// (nil, nil) so callers can decide the failure mode themselves.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)

	CreateSession(ctx context.Context, session *domain.Session) error
	FindSessionByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user/session repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *gormUserRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *gormUserRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

// FindSessionByToken loads a session with its owning user preloaded. Expiry
// is not checked here; the auth service owns that rule.
func (r *gormUserRepository) FindSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

func (r *gormUserRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions removes every session that expired before now and
// reports how many rows were purged.
func (r *gormUserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Session{})
	return result.RowsAffected, result.Error
}
