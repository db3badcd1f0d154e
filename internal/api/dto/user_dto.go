package dto

import (
	"time"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
