package server

import (
	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The fully rendered page is cached per page number
// and per viewer (the layout carries viewer-specific navigation, so a
// shared key would cross-serve personalized markup); within the cache TTL
// new posts do not appear until the cache expires or is cleared.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.Context()

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return err
	}
	page := pagination.Paginate(total, c.Query("page"))

	viewer := s.viewer(c)
	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}

	key := cache.IndexPageKey(page.Number, viewerID)
	if body, ok := cache.GetPage(ctx, key); ok {
		return s.sendHTML(c, fiber.StatusOK, body)
	}

	posts, err := s.postRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return err
	}

	body, err := s.renderToBytes(c, "index", fiber.Map{
		"Title":  "Latest updates on the site",
		"Posts":  posts,
		"Page":   page,
		"Viewer": viewer,
	})
	if err != nil {
		return err
	}
	cache.SetPage(ctx, key, body)
	return s.sendHTML(c, fiber.StatusOK, body)
}

// GroupPosts handles GET /group/:slug
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	ctx := c.Context()

	group, err := s.groupRepo.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	total, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	page := pagination.Paginate(total, c.Query("page"))

	posts, err := s.postRepo.ListByGroup(ctx, group.ID, page.Limit, page.Offset)
	if err != nil {
		return err
	}

	return s.renderPage(c, fiber.StatusOK, "group_list", fiber.Map{
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()

	author, err := s.userRepo.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		if models.IsNotFound(err) {
			return s.NotFound(c)
		}
		return err
	}

	postsCount, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return err
	}
	page := pagination.Paginate(postsCount, c.Query("page"))

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, page.Limit, page.Offset)
	if err != nil {
		return err
	}

	bind := fiber.Map{
		"Author":     author,
		"Posts":      posts,
		"Page":       page,
		"PostsCount": postsCount,
		"Following":  false,
	}
	if viewer := s.viewer(c); viewer != nil {
		following, err := s.followRepo.Exists(ctx, viewer.ID, author.ID)
		if err != nil {
			return err
		}
		bind["Following"] = following
		bind["Viewer"] = viewer
	}

	return s.renderPage(c, fiber.StatusOK, "profile", bind)
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
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

	postsCount, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return err
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return err
	}

	return s.renderPage(c, fiber.StatusOK, "post_detail", fiber.Map{
		"Post":       post,
		"PostsCount": postsCount,
		"Comments":   comments,
	})
}

// FollowIndex handles GET /follow: posts authored by anyone the viewer
// follows. An empty subscription list renders an empty feed.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	total, err := s.postRepo.CountByFollowed(ctx, userID)
	if err != nil {
		return err
	}
	page := pagination.Paginate(total, c.Query("page"))

	posts, err := s.postRepo.ListByFollowed(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return err
	}

	return s.renderPage(c, fiber.StatusOK, "follow", fiber.Map{
		"Posts": posts,
		"Page":  page,
	})
}
