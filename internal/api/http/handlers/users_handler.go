package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/api/dto"
	"github.com/servicedesk-io/servicedesk/internal/auth"
	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/service"
	apperrors "github.com/servicedesk-io/servicedesk/pkg/util"
)

// UsersHandler serves registration and login.
type UsersHandler struct {
	authService *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{authService: authService}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.authService.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(user, token, exp)})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(user, token, exp)})
}

// ChangePassword POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.authService.ChangePassword(c.UserContext(), principal, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func authResponse(user *domain.User, token string, exp time.Time) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}
}
