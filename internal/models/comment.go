// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment is a visitor-submitted comment on a post. Comments are born
// unapproved and only show up in the public feed once a moderator approves
// them. Rejection deletes the row outright; there is no rejected state.
type Comment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PostID     uint       `gorm:"not null;index" json:"post_id"`
	Post       Post       `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Author     string     `gorm:"not null;default:Anonymous" json:"author"`
	Approved   bool       `gorm:"not null;default:false;index" json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Likes      int        `gorm:"not null;default:0" json:"likes"`
	CreatedAt  time.Time  `json:"created_at"`
}
