package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET /profile/:username/follow. Following yourself
// or an author you already follow is silently ignored; either way the
// viewer lands back on their own profile.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	ctx := c.Context()

	viewer, err := s.currentUser(c)
	if err != nil {
		return err
	}

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	if viewer.ID != author.ID {
		exists, err := s.followRepo.Exists(ctx, viewer.ID, author.ID)
		if err != nil {
			return err
		}
		if !exists {
			follow := &models.Follow{UserID: viewer.ID, AuthorID: author.ID}
			if err := s.followRepo.Create(ctx, follow); err != nil {
				return err
			}
		}
	}

	return c.Redirect("/profile/"+viewer.Username+"/", fiber.StatusFound)
}

// ProfileUnfollow handles GET /profile/:username/unfollow. Removing a
// non-existent edge is a no-op; the viewer lands on the author's profile.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	if err := s.followRepo.Delete(ctx, userID, author.ID); err != nil {
		return err
	}

	return c.Redirect("/profile/"+author.Username+"/", fiber.StatusFound)
}
