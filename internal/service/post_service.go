// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"haven/internal/middleware"
	"haven/internal/models"
	"haven/internal/repository"
)

// PostService manages the post lifecycle and derives the stored slug,
// excerpt and read time from the title and content on every save.
type PostService struct {
	posts repository.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// SavePostInput carries the author-editable fields of a post. Slug and read
// time are never accepted from the caller; they are derived. An empty Excerpt
// is derived from the content.
type SavePostInput struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Excerpt       string            `json:"excerpt"`
	FeaturedImage string            `json:"featured_image"`
	Author        string            `json:"author"`
	Status        models.PostStatus `json:"status"`
	Featured      bool              `json:"featured"`
	Tags          []string          `json:"tags"`
}

// excerpt returns the author-supplied excerpt, falling back to one derived
// from the content.
func (in *SavePostInput) excerpt() string {
	if ex := strings.TrimSpace(in.Excerpt); ex != "" {
		return ex
	}
	return Excerpt(in.Content)
}

func (in *SavePostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(in.Status) {
		return models.NewValidationError("status must be draft, published or scheduled")
	}
	return nil
}

// CreatePost stores a new post. A post created directly in the published
// state gets its publication time stamped now; posts created as drafts never
// receive one retroactively.
func (s *PostService) CreatePost(ctx context.Context, input SavePostInput) (*models.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	post := &models.Post{
		Title:         strings.TrimSpace(input.Title),
		Slug:          Slugify(input.Title),
		Excerpt:       input.excerpt(),
		Content:       input.Content,
		FeaturedImage: input.FeaturedImage,
		Author:        input.Author,
		Status:        input.Status,
		Featured:      input.Featured,
		Tags:          input.Tags,
		ReadTime:      ReadTime(input.Content),
	}
	if post.Author == "" {
		post.Author = "Admin"
	}
	if post.Status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "post created",
		"post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return post, nil
}

// UpdatePost rewrites an existing post from input, re-deriving the slug, read
// time and any unsupplied excerpt. The original publication time is preserved
// as-is.
func (s *PostService) UpdatePost(ctx context.Context, id uint, input SavePostInput) (*models.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.Title = strings.TrimSpace(input.Title)
	post.Slug = Slugify(input.Title)
	post.Excerpt = input.excerpt()
	post.Content = input.Content
	post.FeaturedImage = input.FeaturedImage
	post.Status = input.Status
	post.Featured = input.Featured
	post.Tags = input.Tags
	post.ReadTime = ReadTime(input.Content)
	if input.Author != "" {
		post.Author = input.Author
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// DeletePost permanently removes a post. Comments go with it via the
// database-level cascade.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("post", id)
		}
		return models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}

// GetPost fetches a post regardless of status, for the admin console.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// GetPublicPost resolves a public post reference, which is normally a slug.
// When no published post carries the slug and the reference is numeric, it is
// retried as a post ID so that legacy ID-based links keep working.
func (s *PostService) GetPublicPost(ctx context.Context, ref string) (*models.Post, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewValidationError("post reference is required")
	}
	post, err := s.posts.GetPublishedBySlug(ctx, ref)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}
	if id, convErr := strconv.ParseUint(ref, 10, 32); convErr == nil {
		post, err = s.posts.GetPublishedByID(ctx, uint(id))
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewInternalError(err)
		}
	}
	return nil, models.NewNotFoundError("post", ref)
}

// ListPublished returns published posts for the public site.
func (s *PostService) ListPublished(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	posts, err := s.posts.ListPublished(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListAll returns every post for the admin console, newest first.
func (s *PostService) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts, err := s.posts.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
