package mindtypes

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppStateClone tests that clones never share mutable data with the original
func TestAppStateClone(t *testing.T) {
	t.Run("nil user and error stay nil", func(t *testing.T) {
		clone := NewAppState().Clone()
		assert.Nil(t, clone.User)
		assert.Nil(t, clone.Error)
		assert.Empty(t, clone.JournalEntries)
		assert.Empty(t, clone.ChatHistory)
	})

	t.Run("deep copies nested data", func(t *testing.T) {
		errMsg := "boom"
		state := AppState{
			User: &User{ID: "u1", Name: "pat", Email: "pat@school.edu"},
			JournalEntries: []JournalEntry{{
				ID:   "e1",
				Text: "stressed",
				Mood: 3,
				Analysis: &Analysis{
					Sentiment:       "stressed",
					Keywords:        []string{"stress"},
					Recommendations: []string{"breathe"},
				},
			}},
			ChatHistory: []ChatMessage{{ID: "m1", Text: "hi", IsUser: true, Timestamp: time.Unix(0, 0)}},
			IsLoading:   true,
			Error:       &errMsg,
		}

		clone := state.Clone()
		require.Equal(t, state, clone)

		clone.User.Name = "changed"
		clone.JournalEntries[0].Analysis.Keywords[0] = "changed"
		clone.ChatHistory[0].Text = "changed"
		*clone.Error = "changed"

		assert.Equal(t, "pat", state.User.Name)
		assert.Equal(t, "stress", state.JournalEntries[0].Analysis.Keywords[0])
		assert.Equal(t, "hi", state.ChatHistory[0].Text)
		assert.Equal(t, "boom", *state.Error)
	})
}

func TestValidMood(t *testing.T) {
	tests := []struct {
		mood int
		want bool
	}{
		{0, false},
		{1, true},
		{7, true},
		{10, true},
		{11, false},
		{-3, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("mood_%d", tt.mood), func(t *testing.T) {
			assert.Equal(t, tt.want, ValidMood(tt.mood))
		})
	}
}

// TestErrorTypes tests the typed errors and their use with errors.As
func TestErrorTypes(t *testing.T) {
	t.Run("ValidationError with field", func(t *testing.T) {
		err := NewValidationError("text", "entry is empty")
		assert.Equal(t, "text: entry is empty", err.Error())
	})

	t.Run("ValidationError without field", func(t *testing.T) {
		err := &ValidationError{Message: "message is empty"}
		assert.Equal(t, "message is empty", err.Error())
	})

	t.Run("wrapped errors unwrap to their type", func(t *testing.T) {
		wrapped := fmt.Errorf("sign in: %w", &AuthError{Message: "email and password are required"})

		var authErr *AuthError
		require.True(t, errors.As(wrapped, &authErr))
		assert.Equal(t, "authentication failed: email and password are required", authErr.Error())

		var validationErr *ValidationError
		assert.False(t, errors.As(wrapped, &validationErr))
	})
}
