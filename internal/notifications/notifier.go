package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"

	"haven/internal/models"
	"haven/internal/observability"
)

const feedChannelPrefix = "comments:post:"

// Notifier publishes comment feed snapshots into Redis channels. With a nil
// Redis client every publish is a no-op, which turns the live feed off
// without affecting moderation.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// FeedSnapshot is the wire form of a feed update: the complete approved
// comment list for the post. Clients replace their local list wholesale, so
// delivery order between snapshots never corrupts state.
type FeedSnapshot struct {
	Type     string            `json:"type"`
	PostID   uint              `json:"post_id"`
	Comments []*models.Comment `json:"comments"`
}

// PublishFeedSnapshot pushes the full approved-comment list for a post to
// its feed channel.
func (n *Notifier) PublishFeedSnapshot(ctx context.Context, postID uint, comments []*models.Comment) error {
	if n.rdb == nil {
		return nil
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	payload, err := json.Marshal(FeedSnapshot{
		Type:     "comments_snapshot",
		PostID:   postID,
		Comments: comments,
	})
	if err != nil {
		return fmt.Errorf("marshal feed snapshot: %w", err)
	}
	if err := n.rdb.Publish(ctx, FeedChannel(postID), payload).Err(); err != nil {
		return err
	}
	observability.FeedSnapshotsTotal.WithLabelValues(postLabel(postID)).Inc()
	return nil
}

// SnapshotPayload renders a feed snapshot without publishing it, for the
// initial push when a viewer connects.
func SnapshotPayload(postID uint, comments []*models.Comment) ([]byte, error) {
	if comments == nil {
		comments = []*models.Comment{}
	}
	return json.Marshal(FeedSnapshot{
		Type:     "comments_snapshot",
		PostID:   postID,
		Comments: comments,
	})
}

// StartPatternSubscriber subscribes to every comment feed channel and calls
// onMessage for each incoming snapshot. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, feedChannelPrefix+"*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// FeedChannel derives the Redis channel name for a post's comment feed.
func FeedChannel(postID uint) string {
	return feedChannelPrefix + strconv.FormatUint(uint64(postID), 10)
}
