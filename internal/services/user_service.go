package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"imovel-backend/internal/metrics"
	"imovel-backend/internal/models"
	"imovel-backend/internal/store"
)

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserService struct {
	users     UserStore
	tokens    *TokenManager
	passwords PasswordVerifier
	metrics   *metrics.Metrics
}

func NewUserService(users UserStore, tokens *TokenManager, passwords PasswordVerifier, m *metrics.Metrics) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   m,
	}
}

// Login checks the username/password pair and issues an access token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.Login(metrics.ResultDenied)
			return nil, ErrInvalidCredentials
		}
		s.metrics.Login(metrics.ResultError)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	legacy, err := s.passwords.Verify(user.PasswordHash, req.Password)
	if err != nil {
		s.metrics.Login(metrics.ResultDenied)
		return nil, ErrInvalidCredentials
	}
	if legacy {
		slog.WarnContext(ctx, "login matched a legacy MySQL password hash, re-hash it with bcrypt",
			"user_id", user.ID, "username", user.Username)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.metrics.Login(metrics.ResultError)
		return nil, err
	}

	s.metrics.Login(metrics.ResultOK)
	return &models.AuthResponse{
		User:  models.UserInfo{ID: user.ID, Username: user.Username},
		Token: token,
	}, nil
}

// ValidateToken returns the claims of a valid, unexpired, non-revoked token
func (s *UserService) ValidateToken(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}

func (s *UserService) Logout(claims *Claims) {
	s.tokens.Revoke(claims)
}
