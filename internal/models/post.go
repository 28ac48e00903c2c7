// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a feed post. It is owned by its creator.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	CreatorID uint      `gorm:"not null;index" json:"-"`
	Creator   User      `gorm:"foreignKey:CreatorID" json:"creator"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID uint) bool {
	return p != nil && userID != 0 && p.CreatorID == userID
}

// CreatorSummary is the minimal creator info returned after creating a post.
type CreatorSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Lookup failure messages shared by the repositories and services.
const (
	MsgPostNotFound = "Could not find post."
	MsgUserNotFound = "Could not find user."
)
