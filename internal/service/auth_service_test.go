package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/service"
)

type fakeUserRepo struct {
	users    map[string]domain.User // keyed by id
	sessions map[string]domain.Session
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]domain.User),
		sessions: make(map[string]domain.Session),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindUserByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeUserRepo) CreateSession(_ context.Context, session *domain.Session) error {
	f.sessions[session.Token] = *session
	return nil
}

func (f *fakeUserRepo) FindSessionByToken(_ context.Context, token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	session.User = f.users[session.UserID]
	return &session, nil
}

func (f *fakeUserRepo) DeleteSessionByToken(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeUserRepo) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	for token, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, token)
			purged++
		}
	}
	return purged, nil
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with a bcrypt hash and a session", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)

		user, session, err := svc.SignUp(ctx, service.SignUpRequest{
			Email:    "test@example.com",
			Password: "password123",
			Name:     "Test User",
		})
		require.NoError(t, err)
		require.Equal(t, "test@example.com", user.Email)
		require.Equal(t, "Test User", user.Name)
		require.NotEmpty(t, session.Token)
		require.True(t, session.ExpiresAt.After(time.Now()))

		stored := repo.users[user.ID]
		require.NotEqual(t, "password123", stored.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(stored.PasswordHash), []byte("password123")))
	})

	t.Run("rejects bad input with field errors", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)

		_, _, err := svc.SignUp(ctx, service.SignUpRequest{
			Email:    "not-an-email",
			Password: "short",
		})

		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Contains(t, validationErr.Fields, "email")
		require.Contains(t, validationErr.Fields, "password")
		require.Contains(t, validationErr.Fields, "name")
		require.Empty(t, repo.users)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := service.NewAuthService(repo)

		_, _, err := svc.SignUp(ctx, service.SignUpRequest{
			Email:    "test@example.com",
			Password: "password123",
			Name:     "First",
		})
		require.NoError(t, err)

		_, _, err = svc.SignUp(ctx, service.SignUpRequest{
			Email:    "test@example.com",
			Password: "password456",
			Name:     "Second",
		})
		var validationErr *service.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Contains(t, validationErr.Fields, "email")
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo)

	_, _, err := svc.SignUp(ctx, service.SignUpRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)

	t.Run("issues a fresh session for valid credentials", func(t *testing.T) {
		user, session, err := svc.SignIn(ctx, service.SignInRequest{
			Email:    "test@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.Equal(t, "test@example.com", user.Email)
		require.NotEmpty(t, session.Token)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, _, errWrongPassword := svc.SignIn(ctx, service.SignInRequest{
			Email:    "test@example.com",
			Password: "wrong-password",
		})
		_, _, errUnknownEmail := svc.SignIn(ctx, service.SignInRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		require.ErrorIs(t, errWrongPassword, service.ErrInvalidCredentials)
		require.ErrorIs(t, errUnknownEmail, service.ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo)

	userResp, session, err := svc.SignUp(ctx, service.SignUpRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)

	t.Run("resolves a live token to its user", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, session.Token)
		require.NoError(t, err)
		require.Equal(t, userResp.ID, user.ID)
	})

	t.Run("empty and unknown tokens are unauthenticated", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		require.ErrorIs(t, err, service.ErrUnauthenticated)

		_, err = svc.Authenticate(ctx, uuid.NewString())
		require.ErrorIs(t, err, service.ErrUnauthenticated)
	})

	t.Run("expired token is rejected and purged", func(t *testing.T) {
		stale := domain.Session{
			Token:     uuid.NewString(),
			UserID:    userResp.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		repo.sessions[stale.Token] = stale

		_, err := svc.Authenticate(ctx, stale.Token)
		require.ErrorIs(t, err, service.ErrUnauthenticated)
		require.NotContains(t, repo.sessions, stale.Token)
	})

	t.Run("signed-out token is unauthenticated", func(t *testing.T) {
		require.NoError(t, svc.SignOut(ctx, session.Token))

		_, err := svc.Authenticate(ctx, session.Token)
		require.ErrorIs(t, err, service.ErrUnauthenticated)
	})
}
