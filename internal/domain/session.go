// Package domain defines the core types shared across the chat backend.
package domain

import "time"

// Session is a persisted conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
