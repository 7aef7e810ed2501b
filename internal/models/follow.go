package models

import "time"

// Follow is a directed subscription edge from a reader to an author.
// The (user, author) pair is unique; self-follows are rejected at the
// handler level rather than with a database constraint.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"author_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
