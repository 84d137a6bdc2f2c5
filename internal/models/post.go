// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostStatus gates public visibility of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
)

// ValidPostStatus reports whether s is one of the known lifecycle states.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true
	default:
		return false
	}
}

// Post is an article on the Haven publishing platform. Content is the canonical
// rich HTML body emitted by the editor; Slug, Excerpt and ReadTime are derived
// at save time and stored denormalized.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Slug          string     `gorm:"index;not null" json:"slug"`
	Excerpt       string     `gorm:"type:text" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	FeaturedImage string     `json:"featured_image"`
	Author        string     `gorm:"not null;default:Admin" json:"author"`
	Status        PostStatus `gorm:"type:varchar(16);not null;index;default:draft" json:"status"`
	Featured      bool       `gorm:"not null;default:false" json:"featured"`
	Tags          []string   `gorm:"serializer:json" json:"tags"`
	ReadTime      int        `gorm:"not null;default:1" json:"read_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	// PublishedAt is only stamped when the post is published at creation time.
	// A draft promoted to published later keeps a null PublishedAt.
	PublishedAt *time.Time `json:"published_at"`
}

// Public reports whether the post is visible to unauthenticated readers.
func (p *Post) Public() bool {
	return p.Status == PostStatusPublished
}
