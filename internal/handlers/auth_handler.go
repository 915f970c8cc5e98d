package handlers

import (
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(&req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	if err := h.authService.Logout(&req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// ForgotPassword always answers 200 so the endpoint cannot be used to probe
// which emails are registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "If the address is registered, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := validation.BindBody(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResetPassword(&req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}
