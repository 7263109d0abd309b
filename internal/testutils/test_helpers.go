package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"mindfulu/pkg/mindtypes"

	"github.com/stretchr/testify/require"
)

// TestUser returns the user produced by signing in as pat@school.edu.
func TestUser() mindtypes.User {
	return mindtypes.User{
		ID:    "00000001-0000-4000-8000-000000000001",
		Name:  "pat",
		Email: "pat@school.edu",
	}
}

// Entry builds a journal entry with the given id, text and mood.
func Entry(id, text string, mood int) mindtypes.JournalEntry {
	return mindtypes.JournalEntry{
		ID:        id,
		Text:      text,
		Mood:      mood,
		Timestamp: BaseTime,
	}
}

// Message builds a chat message with the given id and text.
func Message(id, text string, isUser bool) mindtypes.ChatMessage {
	return mindtypes.ChatMessage{
		ID:        id,
		Text:      text,
		IsUser:    isUser,
		Timestamp: BaseTime,
	}
}

// CreateTempDir creates a temporary directory removed at test cleanup.
func CreateTempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// ReadFile reads a file relative to dir and fails the test on error.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

// WriteFile writes content to a file relative to dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
