package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"haven/internal/middleware"
	"haven/internal/models"
	"haven/internal/repository"
	"haven/internal/validation"
)

// SubscriberService manages newsletter signups and the admin-side roster.
type SubscriberService struct {
	subscribers repository.SubscriberRepository
}

// NewSubscriberService creates a new SubscriberService.
func NewSubscriberService(subscribers repository.SubscriberRepository) *SubscriberService {
	return &SubscriberService{subscribers: subscribers}
}

// SubscribeInput carries a newsletter signup.
type SubscribeInput struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// Subscribe records a signup. Emails are stored lowercased; signing up an
// address that already exists is not an error and returns the existing row.
func (s *SubscriberService) Subscribe(ctx context.Context, input SubscribeInput) (*models.Subscriber, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !validation.ValidEmail(email) {
		return nil, models.NewValidationError("a valid email address is required")
	}
	if existing, err := s.subscribers.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "website"
	}
	sub := &models.Subscriber{Email: email, Subscribed: true, Source: source}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "subscriber added",
		"subscriber_id", sub.ID, "source", sub.Source)
	return sub, nil
}

// List returns subscribers for the admin console.
func (s *SubscriberService) List(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	subs, err := s.subscribers.List(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}

// Remove deletes a subscriber permanently.
func (s *SubscriberService) Remove(ctx context.Context, id uint) error {
	if err := s.subscribers.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("subscriber", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ExportEmails renders the active subscriber list as a newline-joined email
// export, oldest signup first.
func (s *SubscriberService) ExportEmails(ctx context.Context) (string, error) {
	emails, err := s.subscribers.Emails(ctx)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return strings.Join(emails, "\n"), nil
}
