package store

import "mindfulu/pkg/mindtypes"

// Reduce maps the current state and an action to the next state.
//
// Reduce is pure and total: the same (state, action) pair always yields the same
// result, nothing reads a clock, and unknown actions return the state unchanged.
// Slices that change are freshly allocated, so the input state is never modified.
func Reduce(state mindtypes.AppState, action Action) mindtypes.AppState {
	switch a := action.(type) {
	case SetUser:
		user := a.User
		state.User = &user
	case *SetUser:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	case Logout, *Logout:
		state.User = nil
		state.JournalEntries = []mindtypes.JournalEntry{}
		state.ChatHistory = []mindtypes.ChatMessage{}
	case AddJournalEntry:
		entries := make([]mindtypes.JournalEntry, 0, len(state.JournalEntries)+1)
		entries = append(entries, a.Entry.Clone())
		entries = append(entries, state.JournalEntries...)
		state.JournalEntries = entries
	case *AddJournalEntry:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	case AddChatMessage:
		history := make([]mindtypes.ChatMessage, 0, len(state.ChatHistory)+1)
		history = append(history, state.ChatHistory...)
		history = append(history, a.Message)
		state.ChatHistory = history
	case *AddChatMessage:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	case SetLoading:
		state.IsLoading = a.Loading
	case *SetLoading:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	case SetError:
		if a.Message == nil {
			state.Error = nil
		} else {
			msg := *a.Message
			state.Error = &msg
		}
	case *SetError:
		if a == nil {
			return state
		}
		return Reduce(state, *a)
	}
	return state
}
