package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"haven/internal/cache"
	"haven/internal/editor"
	"haven/internal/models"
)

// DraftSession is a server-side editing session for a post body. The
// document, the selection, and at most one suspended command persist in
// Redis between requests, keyed by the session ID.
type DraftSession struct {
	ID             string               `json:"id"`
	Document       *editor.Document     `json:"document"`
	Selection      editor.Selection     `json:"selection"`
	PendingCommand *editor.Command      `json:"pending_command,omitempty"`
	PendingRequest *editor.InputRequest `json:"pending_request,omitempty"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// DraftSnapshot is the rendered state returned after every draft operation.
type DraftSnapshot struct {
	SessionID string               `json:"session_id"`
	HTML      string               `json:"html"`
	PlainText string               `json:"plain_text"`
	HasLinks  bool                 `json:"has_links"`
	Input     *editor.InputRequest `json:"input,omitempty"`
}

// DraftService stores editing sessions in Redis with a 24 hour TTL. A draft
// that sits untouched for a day simply expires.
type DraftService struct{}

// NewDraftService creates a new DraftService.
func NewDraftService() *DraftService {
	return &DraftService{}
}

// Create opens a new empty editing session.
func (s *DraftService) Create(ctx context.Context) (*DraftSnapshot, error) {
	sess := &DraftSession{
		ID:       uuid.NewString(),
		Document: editor.NewDocument(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.snapshot(sess, nil), nil
}

// Load restores an existing session from HTML-independent stored state.
func (s *DraftService) Load(ctx context.Context, sessionID string) (*DraftSnapshot, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess, sess.PendingRequest), nil
}

// Select moves the session's selection.
func (s *DraftService) Select(ctx context.Context, sessionID string, block, start, end int) (*DraftSnapshot, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ed := editor.NewFromDocument(sess.Document)
	if err := ed.Select(block, start, end); err != nil {
		return nil, err
	}
	sess.Selection = ed.Selection()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.snapshot(sess, sess.PendingRequest), nil
}

// Exec applies one editing command to the session. When the command needs a
// value, the snapshot carries an input request and the command is parked
// until Provide resolves it; issuing another command abandons it.
func (s *DraftService) Exec(ctx context.Context, sessionID string, cmd editor.Command) (*DraftSnapshot, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ed := editor.NewFromDocument(sess.Document)
	if err := ed.Select(sess.Selection.Block, sess.Selection.Start, sess.Selection.End); err != nil {
		// Stored selection no longer fits the document; reset to origin.
		_ = ed.Select(0, 0, 0)
	}
	req, err := ed.Exec(cmd)
	if err != nil {
		return nil, err
	}
	sess.Document = ed.Document()
	sess.Selection = ed.Selection()
	if req != nil {
		sess.PendingCommand = &cmd
		sess.PendingRequest = req
	} else {
		sess.PendingCommand = nil
		sess.PendingRequest = nil
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.snapshot(sess, req), nil
}

// Provide answers the session's outstanding input request by re-running the
// parked command with the supplied value. An empty value cancels it.
func (s *DraftService) Provide(ctx context.Context, sessionID, value string) (*DraftSnapshot, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PendingCommand == nil {
		return nil, models.NewValidationError("no input requested")
	}
	cmd := *sess.PendingCommand
	sess.PendingCommand = nil
	sess.PendingRequest = nil
	if value == "" {
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
		return s.snapshot(sess, nil), nil
	}
	cmd.Value = value
	ed := editor.NewFromDocument(sess.Document)
	if err := ed.Select(sess.Selection.Block, sess.Selection.Start, sess.Selection.End); err != nil {
		_ = ed.Select(0, 0, 0)
	}
	if _, err := ed.Exec(cmd); err != nil {
		return nil, err
	}
	sess.Document = ed.Document()
	sess.Selection = ed.Selection()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.snapshot(sess, nil), nil
}

// Discard drops the session.
func (s *DraftService) Discard(ctx context.Context, sessionID string) error {
	client := cache.GetClient()
	if client == nil {
		return models.NewInternalError(errors.New("draft storage unavailable"))
	}
	if err := client.Del(ctx, cache.DraftKey(sessionID)).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *DraftService) snapshot(sess *DraftSession, req *editor.InputRequest) *DraftSnapshot {
	doc := sess.Document
	return &DraftSnapshot{
		SessionID: sess.ID,
		HTML:      doc.HTML(),
		PlainText: doc.PlainText(),
		HasLinks:  doc.ContainsLink(),
		Input:     req,
	}
}

func (s *DraftService) load(ctx context.Context, sessionID string) (*DraftSession, error) {
	client := cache.GetClient()
	if client == nil {
		return nil, models.NewInternalError(errors.New("draft storage unavailable"))
	}
	data, err := client.Get(ctx, cache.DraftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.NewNotFoundError("draft session", sessionID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var sess DraftSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, models.NewInternalError(err)
	}
	if sess.Document == nil {
		sess.Document = editor.NewDocument()
	}
	return &sess, nil
}

func (s *DraftService) save(ctx context.Context, sess *DraftSession) error {
	client := cache.GetClient()
	if client == nil {
		return models.NewInternalError(errors.New("draft storage unavailable"))
	}
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := client.Set(ctx, cache.DraftKey(sess.ID), data, cache.DraftTTL).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
