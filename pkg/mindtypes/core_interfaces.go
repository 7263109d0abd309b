// Package mindtypes defines core architectural interfaces for MindfulU.
// This file contains the service contracts the orchestrator calls through and
// the collaborators injected for time and identity.
package mindtypes

import (
	"context"
	"time"
)

// Service defines the interface for MindfulU services managed by the registry.
type Service interface {
	Name() string
	Initialize() error
}

// AnalysisService turns a journal entry into structured insight.
// Implementations must be side-effect free.
type AnalysisService interface {
	Analyze(ctx context.Context, text string, mood int) (Analysis, error)
}

// ConversationService produces the companion's reply to a chat message.
type ConversationService interface {
	Respond(ctx context.Context, message string) (string, error)
}

// AuthService authenticates a user from an email and password.
// It returns an *AuthError when the credentials are refused.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (User, error)
}

// Clock supplies the current time and timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// IDGenerator produces identifiers unique for the lifetime of a session.
type IDGenerator interface {
	NewID() string
}
