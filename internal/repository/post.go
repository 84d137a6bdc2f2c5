// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"haven/internal/cache"
	"haven/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a published-post listing. Category matches against tags;
// Search is a case-insensitive substring match over title, excerpt, tags and content.
type PostFilter struct {
	Category     string
	Search       string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetPublishedByID(ctx context.Context, id uint) (*models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPublished(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Save(post).Error
	if err == nil {
		cache.InvalidatePost(ctx, post.ID, post.Slug)
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID, post.Slug)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetPublishedByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostSlugKey(slug), &post, cache.PostTTL, func() error {
		return readDB(r.db).WithContext(ctx).
			Where("slug = ? AND status = ?", slug, models.PostStatusPublished).
			First(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post

	q := readDB(r.db).WithContext(ctx).
		Where("status = ?", models.PostStatusPublished)

	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}
	if filter.Category != "" {
		// Tags are stored as a JSON array; a lowered substring match against the
		// serialized column keeps the query portable across postgres and sqlite.
		q = q.Where("LOWER(tags) LIKE ?", "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(tags) LIKE ? OR LOWER(content) LIKE ?",
			needle, needle, needle, needle,
		)
	}

	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}
