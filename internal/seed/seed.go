// Package seed populates the database with realistic development data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password assigned to every seeded user.
const TestPassword = "password123"

// groups created by every seeding run; posts attach to them at random.
var builtinGroups = []models.Group{
	{Title: "Travel Notes", Slug: "travel", Description: "Trip reports and travel writing"},
	{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen experiments"},
	{Title: "Tech", Slug: "tech", Description: "Programming and technology posts"},
	{Title: "Books", Slug: "books", Description: "Reading notes and reviews"},
	{Title: "Photography", Slug: "photo", Description: "Photo essays and gear talk"},
}

// Seeder populates the database with generated content.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder over the given database handle.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes all seeded content. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")

	for _, table := range []string{"follows", "comments", "posts", "groups", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// SeedGroups creates the built-in topic groups, skipping ones that exist.
func (s *Seeder) SeedGroups() ([]models.Group, error) {
	groups := make([]models.Group, 0, len(builtinGroups))
	for _, g := range builtinGroups {
		group := g
		err := s.db.Where(models.Group{Slug: group.Slug}).FirstOrCreate(&group).Error
		if err != nil {
			return nil, fmt.Errorf("seeding group %s: %w", group.Slug, err)
		}
		groups = append(groups, group)
	}
	log.Printf("Seeded %d groups", len(groups))
	return groups, nil
}

// SeedUsers creates n users with generated names and a shared test password.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		// Suffix guarantees uniqueness across generated names
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: string(hash),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seeding user %s: %w", username, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users (password: %s)", len(users), TestPassword)
	return users, nil
}

// SeedPosts creates n posts spread over the last 30 days. Roughly half the
// posts land in a random group; the rest stay ungrouped.
func (s *Seeder) SeedPosts(users []models.User, groups []models.Group, n int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("cannot seed posts without users")
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{
			Text:      gofakeit.Paragraph(1, 3, 12, " "),
			AuthorID:  users[rand.Intn(len(users))].ID,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now()),
		}
		if len(groups) > 0 && rand.Intn(2) == 0 {
			post.GroupID = &groups[rand.Intn(len(groups))].ID
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

// SeedComments creates n comments on random posts by random users.
func (s *Seeder) SeedComments(users []models.User, posts []models.Post, n int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for i := 0; i < n; i++ {
		comment := models.Comment{
			Text:     gofakeit.Sentence(10),
			AuthorID: users[rand.Intn(len(users))].ID,
			PostID:   posts[rand.Intn(len(posts))].ID,
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("seeding comment: %w", err)
		}
	}
	log.Printf("Seeded %d comments", n)
	return nil
}

// SeedFollows subscribes each user to a handful of random authors, skipping
// self-follows and duplicate pairs.
func (s *Seeder) SeedFollows(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	created := 0
	for _, user := range users {
		for i := 0; i < 3; i++ {
			author := users[rand.Intn(len(users))]
			if author.ID == user.ID {
				continue
			}
			follow := models.Follow{UserID: user.ID, AuthorID: author.ID}
			err := s.db.Where(models.Follow{UserID: user.ID, AuthorID: author.ID}).
				FirstOrCreate(&follow).Error
			if err != nil {
				return fmt.Errorf("seeding follow: %w", err)
			}
			created++
		}
	}
	log.Printf("Seeded %d follows", created)
	return nil
}

// Run executes a full seeding pass.
func (s *Seeder) Run(numUsers, numPosts, numComments int) error {
	groups, err := s.SeedGroups()
	if err != nil {
		return err
	}
	users, err := s.SeedUsers(numUsers)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(users, groups, numPosts)
	if err != nil {
		return err
	}
	if err := s.SeedComments(users, posts, numComments); err != nil {
		return err
	}
	return s.SeedFollows(users)
}
