package server

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/forms"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PostCreate handles GET /create: renders the empty creation form.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return err
	}
	return s.renderPage(c, fiber.StatusOK, "create_post", fiber.Map{
		"Form":   &forms.PostForm{Errors: forms.FieldErrors{}},
		"Groups": groups,
		"IsEdit": false,
	})
}

// PostCreateSubmit handles POST /create. On success the post's author is
// the current viewer and the response redirects to the viewer's profile;
// on validation failure the form is re-rendered with field errors.
func (s *Server) PostCreateSubmit(c *fiber.Ctx) error {
	ctx := c.Context()

	viewer, err := s.currentUser(c)
	if err != nil {
		return err
	}

	form := forms.ParsePostForm(c)
	s.validateGroup(c, form)
	if !form.Validate().Valid() {
		groups, gerr := s.groupRepo.List(ctx)
		if gerr != nil {
			return gerr
		}
		return s.renderPage(c, fiber.StatusOK, "create_post", fiber.Map{
			"Form":   form,
			"Groups": groups,
			"IsEdit": false,
		})
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: viewer.ID,
		GroupID:  form.GroupID,
	}
	if form.Image != nil {
		imagePath, serr := s.saveImage(c, form.Image)
		if serr != nil {
			return serr
		}
		post.Image = imagePath
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return err
	}

	return c.Redirect("/profile/"+viewer.Username+"/", fiber.StatusFound)
}

// PostEdit handles GET /posts/:id/edit: renders the edit form, prefilled.
// Non-authors are redirected to the post detail page without an error.
func (s *Server) PostEdit(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.NotFound(c)
	}

	post, err := s.postRepo.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	userID := c.Locals("userID").(uint)
	if post.AuthorID != userID {
		return c.Redirect(fmt.Sprintf("/posts/%d/", post.ID), fiber.StatusFound)
	}

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return err
	}

	form := &forms.PostForm{
		Text:    post.Text,
		GroupID: post.GroupID,
		Errors:  forms.FieldErrors{},
	}
	return s.renderPage(c, fiber.StatusOK, "create_post", fiber.Map{
		"Form":   form,
		"Groups": groups,
		"Post":   post,
		"IsEdit": true,
	})
}

// PostEditSubmit handles POST /posts/:id/edit.
func (s *Server) PostEditSubmit(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil {
		return s.NotFound(c)
	}

	post, err := s.postRepo.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	// Only the author may edit; everyone else is silently bounced back.
	userID := c.Locals("userID").(uint)
	if post.AuthorID != userID {
		return c.Redirect(fmt.Sprintf("/posts/%d/", post.ID), fiber.StatusFound)
	}

	form := forms.ParsePostForm(c)
	s.validateGroup(c, form)
	if !form.Validate().Valid() {
		groups, gerr := s.groupRepo.List(ctx)
		if gerr != nil {
			return gerr
		}
		return s.renderPage(c, fiber.StatusOK, "create_post", fiber.Map{
			"Form":   form,
			"Groups": groups,
			"Post":   post,
			"IsEdit": true,
		})
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	if form.Image != nil {
		imagePath, serr := s.saveImage(c, form.Image)
		if serr != nil {
			return serr
		}
		post.Image = imagePath
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return err
	}

	return c.Redirect(fmt.Sprintf("/posts/%d/", post.ID), fiber.StatusFound)
}

// validateGroup checks that a selected group exists, recording a field
// error instead of failing the request.
func (s *Server) validateGroup(c *fiber.Ctx, form *forms.PostForm) {
	if form.GroupID == nil {
		return
	}
	if _, err := s.groupRepo.GetByID(c.Context(), *form.GroupID); err != nil {
		form.Errors["group"] = "Select a valid group"
		form.GroupID = nil
	}
}

// saveImage stores an uploaded file under the media root and returns the
// relative path recorded on the post (posts/<filename>). A name that is
// already taken gets a numeric suffix so an upload never overwrites an
// earlier post's image.
func (s *Server) saveImage(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	name := filepath.Base(file.Filename)
	dir := filepath.Join(s.config.MediaRoot, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	target := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		target = filepath.Join(dir, name)
	}

	if err := c.SaveFile(file, target); err != nil {
		return "", err
	}
	return "posts/" + name, nil
}
