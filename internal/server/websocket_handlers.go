package server

import (
	"context"
	"log"
	"strconv"

	"haven/internal/featureflags"
	"haven/internal/models"
	"haven/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// CommentFeedHandler handles GET /api/ws/comments/:postID - the public live
// comment feed for one post. On connect the viewer gets the current approved
// snapshot; afterwards every moderation change pushes a full replacement.
func (s *Server) CommentFeedHandler() fiber.Handler {
	handler := websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		postIDVal := conn.Locals("feedPostID")
		if postIDVal == nil {
			_ = conn.Close()
			return
		}
		postID := postIDVal.(uint)

		// The feed only exists for published posts.
		if _, err := s.postRepo.GetPublishedByID(ctx, postID); err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"post not found"}`))
			_ = conn.Close()
			return
		}

		if s.feedHub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live feed unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.feedHub.Register(postID, conn)
		if err != nil {
			log.Printf("WebSocket feed: failed to register viewer for post %d: %v", postID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// Initial snapshot so the viewer starts from current state.
		if comments, err := s.commentRepo.ListApprovedByPost(ctx, postID); err == nil {
			if payload, perr := notifications.SnapshotPayload(postID, comments); perr == nil {
				client.TrySend(payload)
			}
		}

		go client.WritePump()
		client.ReadPump()
	})

	// Reject non-websocket requests and bad post IDs before the connection
	// is hijacked.
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id, err := strconv.ParseUint(c.Params("postID"), 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid post ID"))
		}
		if !s.flags.Enabled(featureflags.FeatureLiveFeed, uint(id)) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewValidationError("Live feed is temporarily off"))
		}
		c.Locals("feedPostID", uint(id))
		return handler(c)
	}
}
