package middleware

import (
	"net/url"
	"strconv"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "quill_session"

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// LoginRequired enforces authentication for protected routes. Requests
// without a valid session are redirected to the login page with a `next`
// parameter pointing back at the original URL.
func LoginRequired(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return RedirectToLogin(c)
	}
	c.Locals("userID", userID)
	return c.Next()
}

// RedirectToLogin sends the viewer to the login page, preserving the
// originally requested path in the `next` query parameter.
func RedirectToLogin(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect("/auth/login/?next="+next, fiber.StatusFound)
}

// CurrentUserID extracts the authenticated user from the session cookie
// without enforcing it. Public pages use it to adapt their rendering.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	return sessionUserID(c)
}

func sessionUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := c.Cookies(SessionCookie)
	if tokenString == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "quill" {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}
