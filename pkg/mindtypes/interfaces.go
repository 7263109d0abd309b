// Package mindtypes defines core interfaces and data structures used throughout MindfulU.
//
// This package contains the fundamental types that the store, the rule engines and
// the interaction orchestrator share. It has no dependencies on internal packages so
// that every layer can import it.
//
// # Architecture Overview
//
// MindfulU follows a three-layer architecture:
//
//   - Store Layer: Holds ALL session state (user, journal, chat, flags) behind a reducer
//   - Service Layer: Stateless engines that classify text and authenticate users
//   - Orchestration Layer: Translates user intents into engine calls and store dispatches
//
// # Package Organization
//
// ## Core Interfaces (core_interfaces.go)
//
//   - Service: Registry-managed services with a name and an initializer
//   - AnalysisService, ConversationService, AuthService: engine boundaries
//   - Clock, IDGenerator: injected collaborators for deterministic tests
//
// ## Session Types (session_types.go)
//
//   - User: The authenticated student
//   - ChatMessage: A single message in the companion conversation
//
// ## Journal Types (journal_types.go)
//
//   - JournalEntry: A mood-scored journal entry
//   - Analysis: Sentiment, keywords and recommendations derived from an entry
//
// ## State Types (state_types.go)
//
//   - AppState: The single aggregate owned by the store
//
// ## Error Types (errors.go)
//
//   - ValidationError, AuthError: typed errors returned to the immediate caller
package mindtypes
