// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"haven/internal/models"

	"gorm.io/gorm"
)

// CommentModerationFilter selects which comments a moderation listing returns.
type CommentModerationFilter string

const (
	CommentFilterAll      CommentModerationFilter = "all"
	CommentFilterPending  CommentModerationFilter = "pending"
	CommentFilterApproved CommentModerationFilter = "approved"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListApprovedByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListForModeration(ctx context.Context, filter CommentModerationFilter) ([]*models.Comment, error)
	Approve(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	CountPending(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListApprovedByPost(
	ctx context.Context,
	postID uint,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := readDB(r.db).WithContext(ctx).
		Where("post_id = ? AND approved = ?", postID, true).
		Order("created_at desc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListForModeration(
	ctx context.Context,
	filter CommentModerationFilter,
) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx)
	switch filter {
	case CommentFilterPending:
		q = q.Where("approved = ?", false)
	case CommentFilterApproved:
		q = q.Where("approved = ?", true)
	}
	var comments []*models.Comment
	err := q.Order("created_at desc").Find(&comments).Error
	return comments, err
}

// Approve flips the approval flag and stamps the approval time. An already
// approved comment is left untouched; there is no path back to unapproved.
func (r *commentRepository) Approve(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"approved": true, "approved_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("approved = ?", false).
		Count(&count).Error
	return count, err
}
