// Package mindtypes defines session and conversation types for MindfulU.
// This file contains the user and chat message types.
package mindtypes

import "time"

// User represents the authenticated student for the current session.
// Exactly one or no user is active at any time.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// ChatMessage represents a single message in the companion conversation.
// Messages are append-only and kept in submission order.
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	IsUser    bool      `json:"isUser" yaml:"is_user"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
