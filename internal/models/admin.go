// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Admin is an administrator account for the authoring console. The public
// site has no user accounts; admins are the only principals in the system.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
