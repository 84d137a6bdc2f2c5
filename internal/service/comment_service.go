package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"haven/internal/middleware"
	"haven/internal/models"
	"haven/internal/repository"
)

// FeedPublisher pushes a full replacement snapshot of a post's approved
// comments to live feed subscribers. A nil publisher disables the live feed.
type FeedPublisher interface {
	PublishFeedSnapshot(ctx context.Context, postID uint, comments []*models.Comment) error
}

// CommentService handles visitor comment submission and the moderation
// pipeline. Every mutation that changes a post's approved set republishes the
// feed snapshot for that post.
type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	publisher FeedPublisher
}

// NewCommentService creates a new CommentService. publisher may be nil.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	publisher FeedPublisher,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, publisher: publisher}
}

// SubmitCommentInput carries a visitor comment submission.
type SubmitCommentInput struct {
	PostID  uint   `json:"post_id"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Submit stores a new comment in the unapproved state. The comment does not
// appear in any public listing or feed until a moderator approves it.
func (s *CommentService) Submit(ctx context.Context, input SubmitCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("comment content is required")
	}
	if _, err := s.posts.GetPublishedByID(ctx, input.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", input.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = "Anonymous"
	}
	comment := &models.Comment{
		PostID:   input.PostID,
		Content:  strings.TrimSpace(input.Content),
		Author:   author,
		Approved: false,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "comment submitted",
		"comment_id", comment.ID, "post_id", comment.PostID)
	return comment, nil
}

// ListApproved returns a post's approved comments, newest first.
func (s *CommentService) ListApproved(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments, err := s.comments.ListApprovedByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListForModeration returns comments for the moderation queue.
func (s *CommentService) ListForModeration(
	ctx context.Context,
	filter repository.CommentModerationFilter,
) ([]*models.Comment, error) {
	comments, err := s.comments.ListForModeration(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Approve makes a comment publicly visible and stamps the approval time,
// then republishes the post's feed snapshot.
func (s *CommentService) Approve(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	now := time.Now()
	if err := s.comments.Approve(ctx, id, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	comment.Approved = true
	comment.ApprovedAt = &now
	s.publishSnapshot(ctx, comment.PostID)
	return comment, nil
}

// BulkApproveResult reports the outcome of a bulk approval per comment ID.
type BulkApproveResult struct {
	Approved []uint `json:"approved"`
	Failed   []uint `json:"failed"`
}

// BulkApprove approves each comment independently. There is no transaction
// around the batch; a failure on one ID leaves the others approved. Feed
// snapshots are republished once per affected post.
func (s *CommentService) BulkApprove(ctx context.Context, ids []uint) (*BulkApproveResult, error) {
	if len(ids) == 0 {
		return nil, models.NewValidationError("no comment ids given")
	}
	result := &BulkApproveResult{}
	affected := make(map[uint]struct{})
	now := time.Now()
	for _, id := range ids {
		comment, err := s.comments.GetByID(ctx, id)
		if err == nil {
			err = s.comments.Approve(ctx, id, now)
		}
		if err != nil {
			middleware.Logger.WarnContext(ctx, "bulk approve failed for comment",
				"comment_id", id, "error", err)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Approved = append(result.Approved, id)
		affected[comment.PostID] = struct{}{}
	}
	for postID := range affected {
		s.publishSnapshot(ctx, postID)
	}
	return result, nil
}

// Reject removes a comment permanently. Rejection and deletion are the same
// operation; nothing about the comment is retained. Rejecting an already
// approved comment republishes the post's feed snapshot without it.
func (s *CommentService) Reject(ctx context.Context, id uint) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("comment", id)
		}
		return models.NewInternalError(err)
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("comment", id)
		}
		return models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "comment rejected",
		"comment_id", id, "post_id", comment.PostID, "was_approved", comment.Approved)
	if comment.Approved {
		s.publishSnapshot(ctx, comment.PostID)
	}
	return nil
}

// PendingCount returns the number of comments awaiting moderation.
func (s *CommentService) PendingCount(ctx context.Context) (int64, error) {
	count, err := s.comments.CountPending(ctx)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// publishSnapshot pushes the post's current approved comments to the live
// feed. Failures are logged and swallowed; moderation outcomes never depend
// on feed delivery.
func (s *CommentService) publishSnapshot(ctx context.Context, postID uint) {
	if s.publisher == nil {
		return
	}
	comments, err := s.comments.ListApprovedByPost(ctx, postID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to load comments for feed snapshot",
			"post_id", postID, "error", err)
		return
	}
	if err := s.publisher.PublishFeedSnapshot(ctx, postID, comments); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to publish feed snapshot",
			"post_id", postID, "error", err)
	}
}
