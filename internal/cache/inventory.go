package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix     = "post:%d"
	PostSlugKeyPrefix = "post:slug:%s"
	PostsListKey      = "posts:published"
	DraftKeyPrefix    = "draft:%s"
)

const (
	PostTTL  = 30 * time.Minute
	ListTTL  = 5 * time.Minute
	DraftTTL = 24 * time.Hour
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostSlugKey(slug string) string {
	return fmt.Sprintf(PostSlugKeyPrefix, slug)
}

func DraftKey(sessionID string) string {
	return fmt.Sprintf(DraftKeyPrefix, sessionID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops both the id and slug keyed entries for a post.
func InvalidatePost(ctx context.Context, postID uint, slug string) {
	Invalidate(ctx, PostKey(postID))
	if slug != "" {
		Invalidate(ctx, PostSlugKey(slug))
	}
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
