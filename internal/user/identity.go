package user

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ContextKey is where the JWT middleware stores the parsed token.
const ContextKey = "user"

// ScopeCatalog grants catalog writes such as restocking and repricing.
const ScopeCatalog = "catalog:write"

// JSON numbers at or above this lose integer precision once decoded as
// float64.
const maxExactClaim = 1 << 53

// GetUserIDFromCtx returns the opaque user identifier carried in the
// `user_id` claim of the request's JWT. Numeric claims are rendered in base 10
// so the same user always maps to the same identifier; fractional or
// imprecise numbers are rejected.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return "", err
	}

	switch v := claims["user_id"].(type) {
	case string:
		if v == "" {
			return "", fiber.ErrUnauthorized
		}
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) >= maxExactClaim {
			return "", fiber.ErrUnauthorized
		}
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fiber.ErrUnauthorized
	}
}

// RequireUserID is a handler prelude: it writes a 401 when the request carries
// no identity and reports whether the caller may continue.
func RequireUserID(c *fiber.Ctx) (string, bool, error) {
	id, err := GetUserIDFromCtx(c)
	if err != nil {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return id, true, nil
}

// RequireScope only lets requests through whose token lists scope in its
// space-separated `scope` claim. Identity is checked first.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		granted, _ := claims["scope"].(string)
		for _, s := range strings.Fields(granted) {
			if s == scope {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "missing scope " + scope})
	}
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
