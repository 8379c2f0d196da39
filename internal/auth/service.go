package auth

import (
	"context"
	"errors"
	"strings"

	"sales_dashboard/internal/analytics"

	"go.uber.org/zap"
)

const genericLoginFailure = "Login failed. Please try again."

var ErrMissingCredentials = errors.New("username and password are required")

// LoginError is what the login form shows: the backend's detail message when
// it sent one.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

type Backend interface {
	Login(ctx context.Context, username, password string) (analytics.LoginResponse, error)
	Me(ctx context.Context) (analytics.UserInfo, error)
	Logout(ctx context.Context) (analytics.LogoutResponse, error)
}

type TokenStore interface {
	SetToken(token, username string) error
	ClearToken() error
	LoggedIn() bool
	Username() string
}

type Service struct {
	backend Backend
	store   TokenStore
	logger  *zap.Logger
}

func NewService(backend *analytics.Client, store TokenStore, logger *zap.Logger) *Service {
	return New(backend, store, logger)
}

func New(backend Backend, store TokenStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		store:   store,
		logger:  logger.Named("auth"),
	}
}

// Login stores the issued token on success. On failure the store is left as
// it was.
func (s *Service) Login(ctx context.Context, username, password string) (analytics.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return analytics.LoginResponse{}, &LoginError{Message: ErrMissingCredentials.Error(), Err: ErrMissingCredentials}
	}

	resp, err := s.backend.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", username), zap.Error(err))
		return analytics.LoginResponse{}, &LoginError{Message: loginMessage(err), Err: err}
	}

	issuedTo := resp.Username
	if issuedTo == "" {
		issuedTo = username
	}
	if err := s.store.SetToken(resp.AccessToken, issuedTo); err != nil {
		return analytics.LoginResponse{}, err
	}

	s.logger.Info("login successful", zap.String("username", issuedTo), zap.Int("expires_in_minutes", resp.ExpiresIn))
	return resp, nil
}

// Logout tells the backend and always drops the local token, even when the
// backend call fails.
func (s *Service) Logout(ctx context.Context) error {
	if !s.store.LoggedIn() {
		return nil
	}
	if _, err := s.backend.Logout(ctx); err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	return s.store.ClearToken()
}

func (s *Service) LoggedIn() bool {
	return s.store.LoggedIn()
}

// Whoami asks the backend who the stored token belongs to.
func (s *Service) Whoami(ctx context.Context) (analytics.UserInfo, error) {
	if !s.store.LoggedIn() {
		return analytics.UserInfo{}, analytics.ErrNotLoggedIn
	}
	return s.backend.Me(ctx)
}

func loginMessage(err error) string {
	var apiErr *analytics.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return genericLoginFailure
}
