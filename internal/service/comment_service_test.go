package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"haven/internal/models"
	"haven/internal/repository"
)

type stubCommentRepo struct {
	createFn       func(ctx context.Context, comment *models.Comment) error
	getByIDFn      func(ctx context.Context, id uint) (*models.Comment, error)
	listApprovedFn func(ctx context.Context, postID uint) ([]*models.Comment, error)
	listModFn      func(ctx context.Context, filter repository.CommentModerationFilter) ([]*models.Comment, error)
	approveFn      func(ctx context.Context, id uint, at time.Time) error
	deleteFn       func(ctx context.Context, id uint) error
	countPendingFn func(ctx context.Context) (int64, error)
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn != nil {
		return s.createFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCommentRepo) ListApprovedByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if s.listApprovedFn != nil {
		return s.listApprovedFn(ctx, postID)
	}
	return nil, nil
}

func (s *stubCommentRepo) ListForModeration(ctx context.Context, filter repository.CommentModerationFilter) ([]*models.Comment, error) {
	if s.listModFn != nil {
		return s.listModFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubCommentRepo) Approve(ctx context.Context, id uint, at time.Time) error {
	if s.approveFn != nil {
		return s.approveFn(ctx, id, at)
	}
	return nil
}

func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubCommentRepo) CountPending(ctx context.Context) (int64, error) {
	if s.countPendingFn != nil {
		return s.countPendingFn(ctx)
	}
	return 0, nil
}

type capturePublisher struct {
	calls []uint
}

func (p *capturePublisher) PublishFeedSnapshot(_ context.Context, postID uint, _ []*models.Comment) error {
	p.calls = append(p.calls, postID)
	return nil
}

func publishedPostRepo() *stubPostRepo {
	return &stubPostRepo{
		getPublishedByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Status: models.PostStatusPublished}, nil
		},
	}
}

func TestSubmitCommentStartsUnapproved(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	comments := &stubCommentRepo{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 10
			created = c
			return nil
		},
	}
	svc := NewCommentService(comments, publishedPostRepo(), nil)

	comment, err := svc.Submit(context.Background(), SubmitCommentInput{
		PostID:  5,
		Content: "  great post  ",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, comment.Approved)
	assert.Nil(t, comment.ApprovedAt)
	assert.Equal(t, "Anonymous", comment.Author)
	assert.Equal(t, "great post", comment.Content)
}

func TestSubmitCommentValidation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(&stubCommentRepo{}, publishedPostRepo(), nil)

	_, err := svc.Submit(context.Background(), SubmitCommentInput{PostID: 1, Content: "   "})
	assertValidationError(t, err)
}

func TestSubmitCommentUnknownPost(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(&stubCommentRepo{}, &stubPostRepo{}, nil)

	_, err := svc.Submit(context.Background(), SubmitCommentInput{PostID: 99, Content: "hi"})
	assertNotFoundError(t, err)
}

func TestApproveCommentPublishesSnapshot(t *testing.T) {
	t.Parallel()

	pending := &models.Comment{ID: 3, PostID: 8, Content: "hello", Approved: false}
	var stampedAt time.Time
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			require.Equal(t, uint(3), id)
			return pending, nil
		},
		approveFn: func(_ context.Context, _ uint, at time.Time) error {
			stampedAt = at
			return nil
		},
	}
	pub := &capturePublisher{}
	svc := NewCommentService(comments, publishedPostRepo(), pub)

	comment, err := svc.Approve(context.Background(), 3)
	require.NoError(t, err)

	assert.True(t, comment.Approved)
	require.NotNil(t, comment.ApprovedAt)
	assert.Equal(t, stampedAt, *comment.ApprovedAt)
	assert.Equal(t, []uint{8}, pub.calls)
}

func TestBulkApproveIsBestEffort(t *testing.T) {
	t.Parallel()

	store := map[uint]*models.Comment{
		1: {ID: 1, PostID: 4},
		2: {ID: 2, PostID: 4},
		4: {ID: 4, PostID: 9},
	}
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			if c, ok := store[id]; ok {
				return c, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	pub := &capturePublisher{}
	svc := NewCommentService(comments, publishedPostRepo(), pub)

	result, err := svc.BulkApprove(context.Background(), []uint{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 2, 4}, result.Approved)
	assert.Equal(t, []uint{3}, result.Failed)
	// One snapshot per affected post, not per comment.
	assert.ElementsMatch(t, []uint{4, 9}, pub.calls)
}

func TestBulkApproveEmptyInput(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(&stubCommentRepo{}, publishedPostRepo(), nil)
	_, err := svc.BulkApprove(context.Background(), nil)
	assertValidationError(t, err)
}

func TestRejectComment(t *testing.T) {
	t.Parallel()

	t.Run("approved comment republishes the feed", func(t *testing.T) {
		t.Parallel()
		comments := &stubCommentRepo{
			getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
				return &models.Comment{ID: id, PostID: 6, Approved: true}, nil
			},
		}
		pub := &capturePublisher{}
		svc := NewCommentService(comments, publishedPostRepo(), pub)

		require.NoError(t, svc.Reject(context.Background(), 11))
		assert.Equal(t, []uint{6}, pub.calls)
	})

	t.Run("pending comment does not touch the feed", func(t *testing.T) {
		t.Parallel()
		comments := &stubCommentRepo{
			getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
				return &models.Comment{ID: id, PostID: 6, Approved: false}, nil
			},
		}
		pub := &capturePublisher{}
		svc := NewCommentService(comments, publishedPostRepo(), pub)

		require.NoError(t, svc.Reject(context.Background(), 12))
		assert.Empty(t, pub.calls)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(&stubCommentRepo{}, publishedPostRepo(), nil)
		assertNotFoundError(t, svc.Reject(context.Background(), 99))
	})
}

func TestPendingCount(t *testing.T) {
	t.Parallel()

	comments := &stubCommentRepo{
		countPendingFn: func(_ context.Context) (int64, error) { return 7, nil },
	}
	svc := NewCommentService(comments, publishedPostRepo(), nil)

	count, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
