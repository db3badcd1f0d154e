package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/servicedesk-io/servicedesk/internal/auth"
	"github.com/servicedesk-io/servicedesk/internal/config"
	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

// AuthService coordinates registration and login flows. The core trusts the
// claims this service issues; everything beyond claim production is a
// boundary concern.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates an account. The reserved username "admin" (any casing)
// receives the Admin role; everyone else is a regular user.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", time.Time{}, util.NewValidationError("username and password are required", nil)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, util.NewValidationError("username already exists", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}

	role := domain.RoleUser
	if strings.EqualFold(username, "admin") {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates a user and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, p domain.Principal, currentPassword, newPassword string) error {
	if newPassword == "" {
		return util.NewValidationError("new password is required", nil)
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewUnauthorized("account no longer exists")
		}
		return util.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return util.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return util.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return util.NewStoreUnavailable(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
