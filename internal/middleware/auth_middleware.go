package middleware

import (
	"log"
	"strings"

	"carrent/internal/apperror"
	"carrent/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the Locals key holding the *services.Claims of an admitted request.
const ClaimsKey = "user"

const bearerPrefix = "Bearer "

// Authorize is a Fiber middleware that admits requests carrying a valid
// token whose role is requiredRole. An empty requiredRole admits any valid
// token. Rejections are returned as *apperror.Error for the ErrorHandler.
func Authorize(authService *services.AuthService, requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// A header without the "Bearer " prefix counts as no token at all.
		var tokenString string
		if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, bearerPrefix) {
			tokenString = strings.TrimPrefix(authHeader, bearerPrefix)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return err
		}

		if requiredRole != "" && claims.Role.Name != requiredRole {
			log.Printf("User %d with role %s denied, %s required", claims.ID, claims.Role.Name, requiredRole)
			return apperror.NewInsufficientAccess(requiredRole, claims.Role.Name)
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(ClaimsKey, claims)

		return c.Next()
	}
}

// CurrentClaims returns the claims stored by Authorize, or nil on routes it
// does not guard.
func CurrentClaims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(ClaimsKey).(*services.Claims)
	return claims
}
