// Package auth handles registration, login, and password storage.
package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/token"
	"github.com/santasdraw/server/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Service handles authentication operations.
type Service struct {
	db     *database.DB
	tokens *token.Service
}

// New creates a new auth service.
func New(db *database.DB, tokens *token.Service) *Service {
	return &Service{db: db, tokens: tokens}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Register creates a new user and returns it with a signed access token.
func (s *Service) Register(email, password string) (*models.User, string, error) {
	existing, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.db.CreateUser(user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	tok, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, tok, nil
}

// Login verifies credentials and returns the user with a signed access
// token.
func (s *Service) Login(email, password string) (*models.User, string, error) {
	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.db.TouchLastLogin(user.ID); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}

	tok, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, tok, nil
}

// UserFromToken resolves a bearer token to its user. Returns
// ErrUserNotFound when the token is valid but the account is gone.
func (s *Service) UserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
