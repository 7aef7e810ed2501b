package server

import (
	"net/http"
	"net/url"
	"testing"

	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm("/auth/signup", url.Values{
		"username": {"newcomer"},
		"email":    {"newcomer@example.com"},
		"password": {"hunter22"},
	}, nil)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "signup should start a session")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var user models.User
	require.NoError(t, env.db.Where("username = ?", "newcomer").First(&user).Error)
	assert.NotEqual(t, "hunter22", user.Password, "password must be stored hashed")
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("existing")

	resp := env.postForm("/auth/signup", url.Values{
		"username": {"someone"},
		"email":    {"existing@example.com"},
		"password": {"hunter22"},
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "User already exists")
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("existing")

	// a taken username with a fresh email re-renders, not a 500
	resp := env.postForm("/auth/signup", url.Values{
		"username": {"existing"},
		"email":    {"fresh@example.com"},
		"password": {"hunter22"},
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "User already exists")

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignupMissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm("/auth/signup", url.Values{"username": {"lonely"}}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "required")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("resident")

	resp := env.postForm("/auth/login", url.Values{
		"username": {"resident"},
		"password": {"password"},
	}, nil)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	require.NotNil(t, sessionCookie(resp))
}

func TestLoginRedirectsToNext(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("resident")

	resp := env.postForm("/auth/login", url.Values{
		"username": {"resident"},
		"password": {"password"},
		"next":     {"/create"},
	}, nil)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/create", resp.Header.Get("Location"))
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("resident")

	for _, next := range []string{"//evil.example", "https://evil.example", "evil"} {
		resp := env.postForm("/auth/login", url.Values{
			"username": {"resident"},
			"password": {"password"},
			"next":     {next},
		}, nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"), "next=%s", next)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("resident")

	resp := env.postForm("/auth/login", url.Values{
		"username": {"resident"},
		"password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid credentials")
	assert.Nil(t, sessionCookie(resp))

	// unknown usernames get the same answer as bad passwords
	resp = env.postForm("/auth/login", url.Values{
		"username": {"ghost"},
		"password": {"password"},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid credentials")
}

func TestLoginPageCarriesNext(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/auth/login/?next=%2Fcreate", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `value="/create"`)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("resident")

	resp := env.get("/auth/logout", user)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestSessionShowsInNav(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("resident")

	html := body(t, env.get("/profile/resident", user))
	assert.Contains(t, html, "Log out")
	assert.NotContains(t, html, "Log in")

	html = body(t, env.get("/profile/resident", nil))
	assert.Contains(t, html, "Log in")
}
