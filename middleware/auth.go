package middleware

import (
	"conference-app/errors"
	"conference-app/model"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// IDENTITY_KEY is the fiber.Ctx local holding the verified *jwt.Token.
const IDENTITY_KEY string = "identity"

// Authorize rejects requests without a valid HS256 token signed with signingKey.
func Authorize(signingKey string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(signingKey),
		ErrorHandler: jwtError,
		ContextKey:   IDENTITY_KEY,
	})
}

// RequireAdmin must run after Authorize.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Identity(c).IsAdmin() {
			return errors.RaisePermissionsError(c, "only admin can perform this operation")
		}
		return c.Next()
	}
}

// Identity returns the caller described by the verified token, or an empty
// Identity for anonymous requests.
func Identity(c *fiber.Ctx) model.Identity {
	token, ok := c.Locals(IDENTITY_KEY).(*jwt.Token)
	if !ok || token == nil {
		return model.Identity{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}
	}

	identity := model.Identity{
		UserId: claimString(claims, "username"),
		Email:  claimString(claims, "email"),
		Role:   claimString(claims, "role"),
	}
	identity.Nickname = identity.UserId
	return identity
}

func claimString(claims jwt.MapClaims, name string) string {
	value, _ := claims[name].(string)
	return value
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return errors.RaiseError(c, fiber.StatusUnauthorized, "authorization required", "Missing or malformed JWT")
	}
	return errors.RaiseError(c, fiber.StatusUnauthorized, "authorization required", "Invalid or expired JWT")
}
