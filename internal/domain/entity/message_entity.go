package entity

import "time"

// Message is an anonymous note left on a user's public profile
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
