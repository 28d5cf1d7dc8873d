package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"onethy/models"
	"onethy/services"
	"onethy/utils"
)

const (
	userKey   = "user"
	tenantKey = "tenant"
)

// Protected authenticates the bearer token and stores the user and its
// tenant in the request locals.
func Protected(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return unauthorized(c, "Invalid authorization format")
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return unauthorized(c, "Authorization required")
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
			return unauthorized(c, "User not found")
		}
		if !user.IsActive {
			return unauthorized(c, "Account is not active")
		}
		if claims.TokenVersion != user.TokenVersion {
			return unauthorized(c, "Invalid token version")
		}

		SetUser(c, &user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

// SetUser records the authenticated user and its tenant on the request.
func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
	c.Locals(tenantKey, services.TenantOf(user))
}

// CurrentUser returns the user stored by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// CurrentTenant returns the tenant stored by Protected. The second value is
// false on unauthenticated routes.
func CurrentTenant(c *fiber.Ctx) (services.Tenant, bool) {
	tenant, ok := c.Locals(tenantKey).(services.Tenant)
	return tenant, ok
}
