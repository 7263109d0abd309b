package store

import "mindfulu/pkg/mindtypes"

// ActionType names a state transition accepted by the store.
type ActionType string

// Action types understood by Reduce.
const (
	ActionSetUser         ActionType = "SET_USER"
	ActionLogout          ActionType = "LOGOUT"
	ActionAddJournalEntry ActionType = "ADD_JOURNAL_ENTRY"
	ActionAddChatMessage  ActionType = "ADD_CHAT_MESSAGE"
	ActionSetLoading      ActionType = "SET_LOADING"
	ActionSetError        ActionType = "SET_ERROR"
)

// Action is a tagged command describing one atomic state transition.
type Action interface {
	Type() ActionType
}

// SetUser replaces the current user.
type SetUser struct {
	User mindtypes.User
}

// Type implements Action.
func (SetUser) Type() ActionType { return ActionSetUser }

// Logout removes the user and clears the journal and chat history.
type Logout struct{}

// Type implements Action.
func (Logout) Type() ActionType { return ActionLogout }

// AddJournalEntry prepends an entry to the journal.
type AddJournalEntry struct {
	Entry mindtypes.JournalEntry
}

// Type implements Action.
func (AddJournalEntry) Type() ActionType { return ActionAddJournalEntry }

// AddChatMessage appends a message to the chat history.
type AddChatMessage struct {
	Message mindtypes.ChatMessage
}

// Type implements Action.
func (AddChatMessage) Type() ActionType { return ActionAddChatMessage }

// SetLoading replaces the loading flag.
type SetLoading struct {
	Loading bool
}

// Type implements Action.
func (SetLoading) Type() ActionType { return ActionSetLoading }

// SetError replaces the error message. A nil Message clears it.
type SetError struct {
	Message *string
}

// Type implements Action.
func (SetError) Type() ActionType { return ActionSetError }

// ErrorMessage is a helper for building a SetError with a message.
func ErrorMessage(msg string) SetError {
	return SetError{Message: &msg}
}
