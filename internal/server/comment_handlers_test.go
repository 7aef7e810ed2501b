package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("poster")
	commenter := env.createUser("commenter")
	post := env.createPost(author, "discuss this", time.Now(), nil)

	resp := env.postForm(fmt.Sprintf("/posts/%d/comment", post.ID), url.Values{"text": {"great point"}}, commenter)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var comment models.Comment
	require.NoError(t, env.db.First(&comment).Error)
	assert.Equal(t, "great point", comment.Text)
	assert.Equal(t, commenter.ID, comment.AuthorID)
	assert.Equal(t, post.ID, comment.PostID)

	// the comment appears on the detail page
	html := body(t, env.get(fmt.Sprintf("/posts/%d", post.ID), nil))
	assert.Contains(t, html, "great point")
	assert.Contains(t, html, "commenter")
}

func TestAddCommentRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("poster")
	post := env.createPost(author, "discuss this", time.Now(), nil)

	resp := env.postForm(fmt.Sprintf("/posts/%d/comment", post.ID), url.Values{"text": {"drive-by"}}, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/?next="))

	var count int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddCommentBlankIsDropped(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser("poster")
	post := env.createPost(author, "discuss this", time.Now(), nil)

	// a blank comment redirects back without creating anything
	resp := env.postForm(fmt.Sprintf("/posts/%d/comment", post.ID), url.Values{"text": {"   "}}, author)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), resp.Header.Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddCommentUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	commenter := env.createUser("commenter")

	resp := env.postForm("/posts/42/comment", url.Values{"text": {"hello?"}}, commenter)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
