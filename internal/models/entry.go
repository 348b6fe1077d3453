package models

import "time"

// Entry is a single journal record. Content is stored verbatim; structured
// entry types (flowform, roteform) keep their serialized JSON here.
type Entry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
