// Package seed provides helpers to create demo content for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"haven/internal/models"
	"haven/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var tagPool = []string{
	"safety", "resources", "wellness", "legal", "housing",
	"finances", "community", "recovery", "parenting",
}

var commentAuthors = []string{
	"Anonymous", "A reader", "Grateful", "J.", "M.", "Survivor",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// BuildPost constructs a post without persisting it. Derived fields are
// computed the same way the editor does on save.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(gofakeit.Sentence(f.r.Intn(4)+4), ".")

	paras := make([]string, 0, 4)
	for i := 0; i < f.r.Intn(3)+2; i++ {
		paras = append(paras, "<p>"+gofakeit.Paragraph(1, 4, 10, " ")+"</p>")
	}
	content := strings.Join(paras, "\n")

	post := &models.Post{
		Title:         title,
		Slug:          service.Slugify(title),
		Content:       content,
		Excerpt:       service.Excerpt(content),
		ReadTime:      service.ReadTime(content),
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		Author:        "Admin",
		Status:        models.PostStatusPublished,
		Featured:      f.r.Intn(5) == 0,
		Tags:          f.pickTags(),
	}

	// realistic created_at spread over the last three months
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	publishedAt := post.CreatedAt
	post.PublishedAt = &publishedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment persists a comment on the given post. Roughly two thirds are
// pre-approved so the moderation queue has something left in it.
func (f *Factory) CreateComment(post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		Content:   gofakeit.Sentence(f.r.Intn(12) + 4),
		Author:    commentAuthors[f.r.Intn(len(commentAuthors))],
		Likes:     f.r.Intn(12),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.r.Intn(72)) * time.Hour),
	}
	if f.r.Intn(3) != 0 {
		approvedAt := comment.CreatedAt.Add(time.Duration(f.r.Intn(24)) * time.Hour)
		comment.Approved = true
		comment.ApprovedAt = &approvedAt
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateSubscriber persists a newsletter subscriber with a unique email.
func (f *Factory) CreateSubscriber(overrides ...func(*models.Subscriber)) (*models.Subscriber, error) {
	sub := &models.Subscriber{
		Email:      strings.ToLower(fmt.Sprintf("%s%d@%s", gofakeit.Username(), gofakeit.Number(10, 9999), gofakeit.DomainName())),
		Subscribed: true,
		Source:     "website",
	}

	for _, override := range overrides {
		override(sub)
	}

	if err := f.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (f *Factory) pickTags() []string {
	n := f.r.Intn(3) + 1
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		tag := tagPool[f.r.Intn(len(tagPool))]
		if !seen[tag] {
			seen[tag] = true
			picked = append(picked, tag)
		}
	}
	return picked
}
