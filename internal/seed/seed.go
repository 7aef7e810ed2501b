// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data gets created.
type Options struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
	// MaxDays spreads post timestamps over this many days in the past.
	MaxDays int
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:    12,
		Groups:   4,
		Posts:    80,
		Comments: 150,
		Follows:  25,
		MaxDays:  90,
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a fake identity and a usable password
// hash ("password" everywhere, this is demo data).
func (f *Factory) CreateUser() (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), f.rand.Intn(10000)),
		Email:    gofakeit.Email(),
		Password: string(hash),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup persists a community with a unique slug.
func (f *Factory) CreateGroup(n int) (*models.Group, error) {
	group := &models.Group{
		Title:       gofakeit.BuzzWord(),
		Slug:        fmt.Sprintf("%s-%d", gofakeit.Word(), n),
		Description: gofakeit.Sentence(8),
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// CreatePost persists a post by the given author, optionally into a group,
// with a realistic created_at spread into the past.
func (f *Factory) CreatePost(author *models.User, group *models.Group) (*models.Post, error) {
	post := &models.Post{
		Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
		AuthorID: author.ID,
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	minsBack := f.rand.Intn(24 * 60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the given post.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(10),
		AuthorID: author.ID,
		PostID:   post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run populates the database per the factory options. Duplicate follow
// pairs and self-follows are skipped, mirroring the handler rules.
func (f *Factory) Run() error {
	users := make([]*models.User, 0, f.opts.Users)
	for i := 0; i < f.opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	groups := make([]*models.Group, 0, f.opts.Groups)
	for i := 0; i < f.opts.Groups; i++ {
		group, err := f.CreateGroup(i)
		if err != nil {
			return fmt.Errorf("seed group: %w", err)
		}
		groups = append(groups, group)
	}

	posts := make([]*models.Post, 0, f.opts.Posts)
	for i := 0; i < f.opts.Posts; i++ {
		author := users[f.rand.Intn(len(users))]
		var group *models.Group
		if len(groups) > 0 && f.rand.Intn(3) > 0 {
			group = groups[f.rand.Intn(len(groups))]
		}
		post, err := f.CreatePost(author, group)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}

	for i := 0; i < f.opts.Comments && len(posts) > 0; i++ {
		author := users[f.rand.Intn(len(users))]
		post := posts[f.rand.Intn(len(posts))]
		if _, err := f.CreateComment(author, post); err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
	}

	seen := map[[2]uint]bool{}
	for i := 0; i < f.opts.Follows; i++ {
		follower := users[f.rand.Intn(len(users))]
		author := users[f.rand.Intn(len(users))]
		pair := [2]uint{follower.ID, author.ID}
		if follower.ID == author.ID || seen[pair] {
			continue
		}
		seen[pair] = true
		follow := &models.Follow{UserID: follower.ID, AuthorID: author.ID}
		if err := f.db.Create(follow).Error; err != nil {
			return fmt.Errorf("seed follow: %w", err)
		}
	}

	return nil
}
