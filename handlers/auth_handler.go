package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ravindrauiet/relove-backend/config"
	"github.com/ravindrauiet/relove-backend/middleware"
	"github.com/ravindrauiet/relove-backend/utils"
)

type AuthHandler struct {
	Auth *middleware.Auth
	Cfg  *config.Config
}

func NewAuthHandler(auth *middleware.Auth, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Auth: auth, Cfg: cfg}
}

// VerifyTokenRequest defines the payload for token verification
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyToken - POST /api/auth/verify-token
// Verifies an externally-issued identity token and mirrors the identity into
// a local user record, creating it on first sight.
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	var req VerifyTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	// A missing credential is an authentication failure, same as a rejected
	// one.
	if req.Token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}

	claims, err := utils.VerifyProviderToken(req.Token, h.Cfg.AuthJWTSecret, h.Cfg.AuthIssuer)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Token is invalid")
	}

	user, err := h.Auth.ResolveIdentity(c.Context(), claims)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve user")
	}

	return c.JSON(fiber.Map{"user": user})
}

// Me - GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}
	return c.JSON(fiber.Map{"user": user})
}
