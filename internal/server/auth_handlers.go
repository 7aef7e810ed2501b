package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SignupPage handles GET /auth/signup
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.renderPage(c, fiber.StatusOK, "signup", fiber.Map{})
}

// Signup handles POST /auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.Context()

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if username == "" || email == "" || password == "" {
		return s.renderPage(c, fiber.StatusOK, "signup", fiber.Map{
			"Error": "Username, email, and password are required",
		})
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing == nil {
		// the username carries a unique constraint too; catch it here so a
		// taken name re-renders the form instead of surfacing a DB error
		existing, err = s.userRepo.GetByUsername(ctx, username)
		if err != nil && !models.IsNotFound(err) {
			return err
		}
	}
	if existing != nil {
		return s.renderPage(c, fiber.StatusOK, "signup", fiber.Map{
			"Error": "User already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	if err := s.setSessionCookie(c, user.ID); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginPage handles GET /auth/login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.renderPage(c, fiber.StatusOK, "login", fiber.Map{
		"Next": c.Query("next"),
	})
}

// Login handles POST /auth/login. The `next` field sends the viewer back
// to whatever protected page they were bounced from.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.Context()

	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	next := c.FormValue("next")

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return s.renderPage(c, fiber.StatusOK, "login", fiber.Map{
			"Error": "Invalid credentials",
			"Next":  next,
		})
	}

	if err := s.setSessionCookie(c, user.ID); err != nil {
		return err
	}

	// Only same-site relative targets; anything else falls back to the home page.
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	return c.Redirect(next, fiber.StatusFound)
}

// Logout handles GET /auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, userID uint) error {
	token, err := s.generateToken(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// generateToken creates a session JWT for the given user ID
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "quill",
		"exp": now.Add(7 * 24 * time.Hour).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
