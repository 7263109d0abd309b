// Package store provides the reducer-style application state store for MindfulU.
// The store owns the single AppState aggregate and applies actions through Reduce
// under an exclusive writer lock.
package store

import (
	"sync"

	"mindfulu/internal/logger"
	"mindfulu/pkg/mindtypes"

	"github.com/charmbracelet/log"
)

// Listener observes every dispatched action together with the state before and after it.
// Listeners run in dispatch order and must not dispatch themselves.
type Listener func(action Action, prev, next mindtypes.AppState)

// Option configures a Store.
type Option func(*Store)

// WithInitialState seeds the store with a state other than the empty one.
func WithInitialState(state mindtypes.AppState) Option {
	return func(s *Store) {
		s.state = state.Clone()
	}
}

// WithListener registers a listener at construction time.
func WithListener(l Listener) Option {
	return func(s *Store) {
		s.addListener(l)
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds the application state. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state mindtypes.AppState

	// notifyMu keeps listener invocations in dispatch order.
	notifyMu  sync.Mutex
	listeners map[int]Listener
	order     []int
	nextID    int

	logger *log.Logger
}

// New creates a store holding the initial empty state.
func New(opts ...Option) *Store {
	s := &Store{
		state:     mindtypes.NewAppState(),
		listeners: make(map[int]Listener),
		logger:    logger.NewStyledLogger("Store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies action to the state and returns a copy of the resulting state.
func (s *Store) Dispatch(action Action) mindtypes.AppState {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	listeners := s.snapshotListeners()

	// Take the notify lock before releasing the state lock so that listeners
	// see actions in the same order the reducer applied them.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if action != nil {
		s.logger.Debug("Dispatched", "action", action.Type(),
			"entries", len(next.JournalEntries), "messages", len(next.ChatHistory))
	}

	if len(listeners) > 0 {
		prevCopy := prev.Clone()
		nextCopy := next.Clone()
		for _, l := range listeners {
			l(action, prevCopy, nextCopy)
		}
	}

	return next.Clone()
}

// State returns a copy of the current state.
func (s *Store) State() mindtypes.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.addListener(l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// addListener must be called with mu held or before the store is shared.
func (s *Store) addListener(l Listener) int {
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	return id
}

func (s *Store) snapshotListeners() []Listener {
	result := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.listeners[id])
	}
	return result
}
