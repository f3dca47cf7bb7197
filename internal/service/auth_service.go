package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/todo-webapp/internal/domain"
	"github.com/Tomlord1122/todo-webapp/internal/repository"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned on sign-in when the email is unknown
	// or the password does not match. The two cases share one error so the
	// response cannot be used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when a session token is unknown or
	// expired.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// SignUpRequest holds the credentials and profile data for a new account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignInRequest holds the credentials for an existing account.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the wire representation of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthService issues and validates DB-backed sessions. It is the only code
// that touches credentials; todo handlers just receive the resolved user.
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*UserResponse, *domain.Session, error)
	SignIn(ctx context.Context, req SignInRequest) (*UserResponse, *domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewAuthService creates an auth service backed by repo.
func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo, now: time.Now}
}

func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*UserResponse, *domain.Session, error) {
	v := newValidator()
	v.checkEmail(req.Email)
	v.checkPassword(req.Password)
	v.check(req.Name != "", "name", "must be provided")
	if err := v.err(); err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("Error looking up email %q: %v", req.Email, err)
		return nil, nil, errors.New("failed to create account")
	}
	if existing != nil {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"email": "is already registered",
		}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return nil, nil, errors.New("failed to create account")
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// The email check above races with concurrent signups; the unique
		// index is the authoritative guard.
		if repository.IsUniqueViolation(err) {
			return nil, nil, &ValidationError{Fields: map[string]string{
				"email": "is already registered",
			}}
		}
		log.Printf("Error creating user: %v", err)
		return nil, nil, errors.New("failed to create account")
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return toUserResponse(user), session, nil
}

func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*UserResponse, *domain.Session, error) {
	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("Error looking up email %q: %v", req.Email, err)
		return nil, nil, errors.New("failed to sign in")
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return toUserResponse(user), session, nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if err := s.repo.DeleteSessionByToken(ctx, token); err != nil {
		log.Printf("Error deleting session: %v", err)
		return errors.New("failed to sign out")
	}
	return nil
}

// Authenticate resolves a session token to its user. Expired sessions are
// purged on sight.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.repo.FindSessionByToken(ctx, token)
	if err != nil {
		log.Printf("Error looking up session: %v", err)
		return nil, errors.New("failed to authenticate")
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if session.Expired(s.now()) {
		if err := s.repo.DeleteSessionByToken(ctx, token); err != nil {
			log.Printf("Error purging expired session: %v", err)
		}
		return nil, ErrUnauthenticated
	}

	user := session.User
	return &user, nil
}

func (s *authService) issueSession(ctx context.Context, userID string) (*domain.Session, error) {
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		log.Printf("Error creating session: %v", err)
		return nil, errors.New("failed to create session")
	}
	return session, nil
}

func toUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
