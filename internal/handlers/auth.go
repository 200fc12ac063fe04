package handlers

import (
	"log/slog"
	"strings"

	"imovel-backend/internal/models"
	"imovel-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalClaims   = "claims"
)

func LoginHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidRequest})
		}
		res, err := userService.Login(c.Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// LogoutHandler revokes the token the request was authenticated with
func LogoutHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, _ := c.Locals(LocalClaims).(*services.Claims)
		userService.Logout(claims)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AuthMiddleware verifies the bearer token and stores the user in locals.
// Websocket clients that cannot set headers may pass ?access_token=.
func AuthMiddleware(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("access_token")
		}

		claims, err := userService.ValidateToken(token)
		if err != nil {
			slog.DebugContext(c.Context(), "token rejected", "path", c.Path(), "error", err)
			return err
		}

		// subject was checked by ValidateToken
		userID, _ := claims.UserID()
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalClaims, claims)

		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
