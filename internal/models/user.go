package models

import (
	"time"
)

// DefaultUserStatus is assigned to new accounts.
const DefaultUserStatus = "I am new!"

// User represents an account that can author posts.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Posts is the user's post list in insertion order.
	Posts []Post `gorm:"foreignKey:CreatorID" json:"posts,omitempty"`
}

// Summary returns the public id/name pair for the user.
func (u *User) Summary() CreatorSummary {
	return CreatorSummary{ID: u.ID, Name: u.Name}
}
