// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"haven/internal/models"

	"gorm.io/gorm"
)

// SubscriberRepository defines interface for newsletter subscriber operations
type SubscriberRepository interface {
	Create(ctx context.Context, sub *models.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	List(ctx context.Context, limit, offset int) ([]*models.Subscriber, error)
	Delete(ctx context.Context, id uint) error
	Emails(ctx context.Context) ([]string, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new SubscriberRepository
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Create(ctx context.Context, sub *models.Subscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriberRepository) List(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	var subs []*models.Subscriber
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error
	return subs, err
}

func (r *subscriberRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Subscriber{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Emails returns subscriber emails in signup order for CSV export.
func (r *subscriberRepository) Emails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("subscribed = ?", true).
		Order("created_at ASC").
		Pluck("email", &emails).Error
	return emails, err
}
