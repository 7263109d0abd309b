// Package mindtypes defines the application state aggregate for MindfulU.
package mindtypes

// AppState is the single mutable aggregate owned by the store.
// JournalEntries are ordered newest first, ChatHistory oldest first.
type AppState struct {
	User           *User          `json:"user" yaml:"user"`
	JournalEntries []JournalEntry `json:"journalEntries" yaml:"journal_entries"`
	ChatHistory    []ChatMessage  `json:"chatHistory" yaml:"chat_history"`
	IsLoading      bool           `json:"isLoading" yaml:"is_loading"`
	Error          *string        `json:"error" yaml:"error"`
}

// NewAppState returns the initial state: no user, empty sequences, no flags.
func NewAppState() AppState {
	return AppState{
		JournalEntries: []JournalEntry{},
		ChatHistory:    []ChatMessage{},
	}
}

// Clone returns a deep copy of the state so callers can never reach the store's slices.
func (s AppState) Clone() AppState {
	clone := AppState{
		IsLoading:      s.IsLoading,
		JournalEntries: make([]JournalEntry, len(s.JournalEntries)),
		ChatHistory:    make([]ChatMessage, len(s.ChatHistory)),
	}
	if s.User != nil {
		u := *s.User
		clone.User = &u
	}
	if s.Error != nil {
		e := *s.Error
		clone.Error = &e
	}
	for i, entry := range s.JournalEntries {
		clone.JournalEntries[i] = entry.Clone()
	}
	copy(clone.ChatHistory, s.ChatHistory)
	return clone
}

// SignedIn reports whether a user is present in the state.
func (s AppState) SignedIn() bool {
	return s.User != nil
}
