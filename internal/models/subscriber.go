// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Subscriber is a newsletter signup captured from the public site.
// Email is stored lowercased; Source tags the acquisition channel.
type Subscriber struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Subscribed bool      `gorm:"not null;default:true" json:"subscribed"`
	Source     string    `gorm:"not null;default:website" json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}
