// Package forms validates user-submitted fields for post and comment
// creation. A validator maps raw field values to either a clean record or
// a set of field errors; nothing here touches storage.
package forms

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// FieldErrors maps a field name to its validation message. An empty map
// means the form is valid.
type FieldErrors map[string]string

// Valid reports whether no field failed validation.
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// PostForm carries the raw fields of a post create/edit submission.
type PostForm struct {
	Text    string
	GroupID *uint
	Image   *multipart.FileHeader

	Errors FieldErrors
}

// ParsePostForm extracts post fields from a multipart or urlencoded body.
// The image is optional; an absent file is not an error.
func ParsePostForm(c *fiber.Ctx) *PostForm {
	form := &PostForm{
		Text:   strings.TrimSpace(c.FormValue("text")),
		Errors: FieldErrors{},
	}

	if raw := strings.TrimSpace(c.FormValue("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			form.Errors["group"] = "Select a valid group"
		} else {
			groupID := uint(id)
			form.GroupID = &groupID
		}
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		form.Image = file
	}

	return form
}

// Validate applies field-level rules and returns the accumulated errors.
func (f *PostForm) Validate() FieldErrors {
	if f.Text == "" {
		f.Errors["text"] = "Text is required"
	}
	return f.Errors
}

// CommentForm carries the raw fields of a comment submission.
type CommentForm struct {
	Text string

	Errors FieldErrors
}

// ParseCommentForm extracts comment fields from the request body.
func ParseCommentForm(c *fiber.Ctx) *CommentForm {
	return &CommentForm{
		Text:   strings.TrimSpace(c.FormValue("text")),
		Errors: FieldErrors{},
	}
}

// Validate applies field-level rules and returns the accumulated errors.
func (f *CommentForm) Validate() FieldErrors {
	if f.Text == "" {
		f.Errors["text"] = "Text is required"
	}
	return f.Errors
}
