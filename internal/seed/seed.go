package seed

import (
	"fmt"
	"log"

	"haven/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPosts       int
	MaxCommentsPer int
	NumSubscribers int
	ShouldClean    bool
	IncludeDrafts  bool
}

// DefaultOptions returns a small but representative demo data set.
func DefaultOptions() Options {
	return Options{
		NumPosts:       12,
		MaxCommentsPer: 6,
		NumSubscribers: 25,
		IncludeDrafts:  true,
	}
}

// Seed populates the database with demo content.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d posts and %d subscribers...", opts.NumPosts, opts.NumSubscribers)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db)

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		post := f.BuildPost()
		// Slugs collide across random titles often enough to matter.
		post.Slug = fmt.Sprintf("%s-%d", post.Slug, i+1)
		posts = append(posts, post)
	}
	if opts.IncludeDrafts && len(posts) > 2 {
		for _, p := range posts[len(posts)-2:] {
			p.Status = models.PostStatusDraft
			p.PublishedAt = nil
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	commentCount := 0
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		for i := 0; i < f.r.Intn(opts.MaxCommentsPer+1); i++ {
			if _, err := f.CreateComment(post); err != nil {
				return fmt.Errorf("seed comments: %w", err)
			}
			commentCount++
		}
	}

	for i := 0; i < opts.NumSubscribers; i++ {
		if _, err := f.CreateSubscriber(); err != nil {
			return fmt.Errorf("seed subscribers: %w", err)
		}
	}

	log.Printf("✅ Seeded %d posts, %d comments, %d subscribers", len(posts), commentCount, opts.NumSubscribers)
	return nil
}

// clearData removes seedable content in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.Comment{},
		&models.Post{},
		&models.Subscriber{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
