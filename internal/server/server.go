// Package server contains the HTTP handlers and page rendering for the
// application's web surface.
package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed templates
var templatesFS embed.FS

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	views       *html.Engine
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return newServer(cfg, db, cache.GetClient())
}

// newServer wires a Server over an existing database handle. Tests use it
// directly with sqlite and miniredis.
func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	views, err := loadViews()
	if err != nil {
		return nil, err
	}

	middleware.InitMiddleware(cfg)

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		views:       views,
		userRepo:    repository.NewUserRepository(db),
		groupRepo:   repository.NewGroupRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		followRepo:  repository.NewFollowRepository(db),
	}, nil
}

func loadViews() (*html.Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("deref", func(p *uint) uint {
		if p == nil {
			return 0
		}
		return *p
	})
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return engine, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Prometheus metrics
	prometheus := fiberprometheus.New("quill")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Index)
	app.Get("/group/:slug", s.GroupPosts)
	app.Get("/follow", middleware.LoginRequired, s.FollowIndex)
	app.Get("/create", middleware.LoginRequired, s.PostCreate)
	app.Post("/create", middleware.LoginRequired, s.PostCreateSubmit)
	app.Get("/posts/:id", s.PostDetail)
	app.Get("/posts/:id/edit", middleware.LoginRequired, s.PostEdit)
	app.Post("/posts/:id/edit", middleware.LoginRequired, s.PostEditSubmit)
	app.Post("/posts/:id/comment", middleware.LoginRequired, s.AddComment)
	app.Get("/profile/:username", s.Profile)
	app.Get("/profile/:username/follow", middleware.LoginRequired, s.ProfileFollow)
	app.Get("/profile/:username/unfollow", middleware.LoginRequired, s.ProfileUnfollow)

	auth := app.Group("/auth")
	auth.Get("/signup", s.SignupPage)
	auth.Post("/signup", s.Signup)
	auth.Get("/login", s.LoginPage)
	auth.Post("/login", s.Login)
	auth.Get("/logout", s.Logout)

	// Uploaded post images
	app.Static("/media", s.config.MediaRoot)

	// Anything unrouted gets the dedicated not-found page.
	app.Use(s.NotFound)
}

// NewApp builds a Fiber app with middleware and routes configured.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Quill",
		BodyLimit: 10 * 1024 * 1024, // 10MB upload limit
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "path", c.Path(), "error", err.Error())
			return s.renderPage(c, fiber.StatusInternalServerError, "server_error", fiber.Map{})
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}

// renderToBytes renders a named template into the base layout and returns
// the finished page body.
func (s *Server) renderToBytes(c *fiber.Ctx, name string, bind fiber.Map) ([]byte, error) {
	if _, ok := bind["Viewer"]; !ok {
		bind["Viewer"] = s.viewer(c)
	}
	var buf bytes.Buffer
	if err := s.views.Render(&buf, name, bind, "layouts/base"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPage renders a template and sends it with the given status.
func (s *Server) renderPage(c *fiber.Ctx, status int, name string, bind fiber.Map) error {
	body, err := s.renderToBytes(c, name, bind)
	if err != nil {
		return err
	}
	return s.sendHTML(c, status, body)
}

func (s *Server) sendHTML(c *fiber.Ctx, status int, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

// NotFound renders the dedicated not-found page.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.renderPage(c, fiber.StatusNotFound, "not_found", fiber.Map{})
}

// viewer resolves the authenticated user from the session, or nil for
// anonymous requests.
func (s *Server) viewer(c *fiber.Ctx) *models.User {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil
	}
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// currentUser resolves the user set by the LoginRequired middleware.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID := c.Locals("userID").(uint)
	return s.userRepo.GetByID(c.Context(), userID)
}
