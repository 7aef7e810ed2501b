package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// smallGIF is a valid one-pixel GIF used for upload tests.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04,
	0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x4c, 0x01, 0x00, 0x3b,
}

type testEnv struct {
	t     *testing.T
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
}

// newTestEnv builds a server over sqlite and miniredis with routes mounted.
// The cache client is a package global, so these tests do not run in parallel.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		JWTSecret: "test-secret-long-enough-for-sessions",
		MediaRoot: t.TempDir(),
		Env:       "test",
	}

	srv, err := newServer(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return srv.renderPage(c, fiber.StatusInternalServerError, "server_error", fiber.Map{})
		},
	})
	srv.SetupRoutes(app)

	return &testEnv{t: t, srv: srv, app: app, db: db, redis: mr}
}

func (e *testEnv) createUser(username string) *models.User {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(e.t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(e.t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createGroup(title, slug string) *models.Group {
	e.t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: title + " talk"}
	require.NoError(e.t, e.db.Create(group).Error)
	return group
}

func (e *testEnv) createPost(author *models.User, text string, createdAt time.Time, groupID *uint) *models.Post {
	e.t.Helper()
	post := &models.Post{
		Text:      text,
		AuthorID:  author.ID,
		GroupID:   groupID,
		CreatedAt: createdAt,
	}
	require.NoError(e.t, e.db.Create(post).Error)
	return post
}

// do sends the request through the app, attaching a session cookie when a
// user is given.
func (e *testEnv) do(req *http.Request, user *models.User) *http.Response {
	e.t.Helper()
	if user != nil {
		token, err := e.srv.generateToken(user.ID)
		require.NoError(e.t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) get(path string, user *models.User) *http.Response {
	return e.do(httptest.NewRequest("GET", path, nil), user)
}

func (e *testEnv) postForm(path string, values url.Values, user *models.User) *http.Response {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, user)
}

// postMultipart submits fields plus an optional file under the "image" field.
func (e *testEnv) postMultipart(path string, fields map[string]string, fileName string, fileContent []byte, user *models.User) *http.Response {
	e.t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("image", fileName)
		require.NoError(e.t, err)
		_, err = fw.Write(fileContent)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest("POST", path, buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.do(req, user)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
