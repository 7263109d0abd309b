// Package orchestration turns student interactions (sign in, journal, chat,
// sign out) into validated engine calls and store dispatches.
//
// Each interaction kind owns one slot. A slot holds at most one outstanding
// Task; starting a new interaction of the same kind cancels the previous one.
// A cancelled task never dispatches: the cancellation check and the final
// dispatch both happen under the orchestrator lock.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mindfulu/internal/logger"
	"mindfulu/internal/metrics"
	"mindfulu/internal/store"
	"mindfulu/pkg/mindtypes"

	"github.com/charmbracelet/log"
)

// ErrCancelled is the result of a task that was superseded, signed out or closed.
var ErrCancelled = errors.New("interaction cancelled")

// ErrClosed is returned by interactions started after Close.
var ErrClosed = errors.New("orchestrator is closed")

// Slot names an interaction kind.
type Slot string

// Interaction slots.
const (
	SlotChat    Slot = "chat"
	SlotJournal Slot = "journal"
	SlotAuth    Slot = "auth"
)

// Phase is the state of a slot's state machine.
type Phase int

// Slot phases. Chat moves Idle → Pending → Idle, journal Idle → Analyzing → Idle
// and sign-in Idle → Authenticating → Idle.
const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseAnalyzing
	PhaseAuthenticating
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseAuthenticating:
		return "authenticating"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Delays are the simulated latencies applied before each completion.
type Delays struct {
	Chat    time.Duration
	Journal time.Duration
	SignIn  time.Duration
}

// Options are the collaborators of an Orchestrator.
type Options struct {
	Analysis     mindtypes.AnalysisService
	Conversation mindtypes.ConversationService
	Auth         mindtypes.AuthService
	Clock        mindtypes.Clock
	IDs          mindtypes.IDGenerator
	Delays       Delays
	// Metrics is optional.
	Metrics *metrics.Collector
	// Logger defaults to a styled "Orchestrator" logger.
	Logger *log.Logger
}

// Draft is the journal input buffer.
type Draft struct {
	Text string `json:"text"`
	Mood int    `json:"mood"`
}

func emptyDraft() Draft {
	return Draft{Mood: mindtypes.DefaultMood}
}

// completion builds the action a task dispatches when its delay has elapsed.
type completion func(ctx context.Context) (store.Action, error)

// Orchestrator coordinates interactions against one store.
//
// Store listeners must not call back into the Orchestrator: dispatches happen
// while the orchestrator lock is held.
type Orchestrator struct {
	store        *store.Store
	analysis     mindtypes.AnalysisService
	conversation mindtypes.ConversationService
	auth         mindtypes.AuthService
	clock        mindtypes.Clock
	ids          mindtypes.IDGenerator
	delays       Delays
	metrics      *metrics.Collector
	logger       *log.Logger

	mu      sync.Mutex
	tasks   map[Slot]*Task
	phases  map[Slot]Phase
	pending int
	draft   Draft
	closed  bool
	nextID  int

	wg sync.WaitGroup
}

// New creates an Orchestrator over s.
func New(s *store.Store, opts Options) (*Orchestrator, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Analysis == nil || opts.Conversation == nil || opts.Auth == nil {
		return nil, fmt.Errorf("analysis, conversation and auth services are required")
	}
	if opts.Clock == nil || opts.IDs == nil {
		return nil, fmt.Errorf("clock and id generator are required")
	}

	l := opts.Logger
	if l == nil {
		l = logger.NewStyledLogger("Orchestrator")
	}

	return &Orchestrator{
		store:        s,
		analysis:     opts.Analysis,
		conversation: opts.Conversation,
		auth:         opts.Auth,
		clock:        opts.Clock,
		ids:          opts.IDs,
		delays:       opts.Delays,
		metrics:      opts.Metrics,
		logger:       l,
		tasks:        make(map[Slot]*Task),
		phases:       make(map[Slot]Phase),
		draft:        emptyDraft(),
	}, nil
}

// Store returns the store the orchestrator dispatches into.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// State returns a copy of the current application state.
func (o *Orchestrator) State() mindtypes.AppState {
	return o.store.State()
}

// SendMessage appends the student's message and schedules the companion reply.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (*Task, error) {
	if strings.TrimSpace(text) == "" {
		o.metrics.ObserveRejected(string(SlotChat))
		return nil, mindtypes.NewValidationError("message", "message is empty")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}

	o.dispatch(store.AddChatMessage{Message: mindtypes.ChatMessage{
		ID:        o.ids.NewID(),
		Text:      text,
		IsUser:    true,
		Timestamp: o.clock.Now(),
	}})

	return o.start(ctx, SlotChat, PhasePending, o.delays.Chat, func(ctx context.Context) (store.Action, error) {
		reply, err := o.conversation.Respond(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("companion reply failed: %w", err)
		}
		return store.AddChatMessage{Message: mindtypes.ChatMessage{
			ID:        o.ids.NewID(),
			Text:      reply,
			IsUser:    false,
			Timestamp: o.clock.Now(),
		}}, nil
	}), nil
}

// SaveEntry analyzes a journal entry and schedules adding it to the journal.
// The draft buffer is left alone.
func (o *Orchestrator) SaveEntry(ctx context.Context, text string, mood int) (*Task, error) {
	return o.saveEntry(ctx, text, mood, nil)
}

// saveEntry schedules an entry. A non-nil saved is the draft the entry came
// from; the buffer is cleared on completion only if it still holds it.
func (o *Orchestrator) saveEntry(ctx context.Context, text string, mood int, saved *Draft) (*Task, error) {
	if strings.TrimSpace(text) == "" {
		o.metrics.ObserveRejected(string(SlotJournal))
		return nil, mindtypes.NewValidationError("text", "entry is empty")
	}
	if !mindtypes.ValidMood(mood) {
		o.metrics.ObserveRejected(string(SlotJournal))
		return nil, mindtypes.NewValidationError("mood",
			fmt.Sprintf("mood must be between %d and %d, got %d", mindtypes.MinMood, mindtypes.MaxMood, mood))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}

	analysis, err := o.analysis.Analyze(ctx, text, mood)
	if err != nil {
		err = fmt.Errorf("analysis failed: %w", err)
		o.dispatch(store.ErrorMessage(err.Error()))
		return nil, err
	}

	entry := mindtypes.JournalEntry{
		ID:        o.ids.NewID(),
		Text:      text,
		Mood:      mood,
		Timestamp: o.clock.Now(),
		Analysis:  &analysis,
	}

	t := o.start(ctx, SlotJournal, PhaseAnalyzing, o.delays.Journal, func(context.Context) (store.Action, error) {
		return store.AddJournalEntry{Entry: entry}, nil
	})
	t.draft = saved
	return t, nil
}

// UpdateDraft replaces the journal input buffer.
func (o *Orchestrator) UpdateDraft(text string, mood int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft = Draft{Text: text, Mood: mood}
}

// Draft returns the journal input buffer.
func (o *Orchestrator) Draft() Draft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// SaveDraft saves the journal input buffer as an entry.
// The buffer is cleared when the entry lands in the journal, unless it was
// edited in the meantime.
func (o *Orchestrator) SaveDraft(ctx context.Context) (*Task, error) {
	d := o.Draft()
	return o.saveEntry(ctx, d.Text, d.Mood, &d)
}

// SignIn authenticates the student and schedules setting the user.
func (o *Orchestrator) SignIn(ctx context.Context, email, password string) (*Task, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		o.metrics.ObserveRejected(string(SlotAuth))
		return nil, &mindtypes.AuthError{Message: "email and password are required"}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}

	return o.start(ctx, SlotAuth, PhaseAuthenticating, o.delays.SignIn, func(ctx context.Context) (store.Action, error) {
		user, err := o.auth.Authenticate(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("sign in failed: %w", err)
		}
		return store.SetUser{User: user}, nil
	}), nil
}

// SignOut cancels every outstanding interaction and logs the user out.
func (o *Orchestrator) SignOut() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelAll()
	o.draft = emptyDraft()
	o.dispatch(store.Logout{})
}

// ClearError dismisses the current error message.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatch(store.SetError{})
}

// Phase returns the current phase of slot.
func (o *Orchestrator) Phase(slot Slot) Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phases[slot]
}

// Typing reports whether a companion reply is pending.
func (o *Orchestrator) Typing() bool {
	return o.Phase(SlotChat) == PhasePending
}

// Close cancels every outstanding interaction and waits for their goroutines.
// Interactions started afterwards fail with ErrClosed.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		o.cancelAll()
	}
	o.mu.Unlock()

	o.wg.Wait()
}

// start registers a task in slot, superseding any outstanding one, and runs it.
// Must be called with mu held.
func (o *Orchestrator) start(ctx context.Context, slot Slot, phase Phase, delay time.Duration, complete completion) *Task {
	o.nextID++
	t := newTask(ctx, o.nextID, slot)

	prev := o.tasks[slot]
	o.tasks[slot] = t
	o.phases[slot] = phase
	o.pending++
	if o.pending == 1 {
		o.dispatch(store.SetLoading{Loading: true})
	}
	if prev != nil {
		o.cancelTask(prev)
	}

	o.logger.Debug("Task started", "task", t.id, "slot", slot, "phase", phase)

	o.wg.Add(1)
	go o.run(t, delay, complete)
	return t
}

func (o *Orchestrator) run(t *Task, delay time.Duration, complete completion) {
	defer o.wg.Done()
	defer close(t.done)

	started := o.clock.Now()

	select {
	case <-t.ctx.Done():
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.tasks[t.slot] == t {
			o.cancelTask(t)
			t.err = fmt.Errorf("%w: %w", ErrCancelled, context.Cause(t.ctx))
		}
		return
	case <-o.clock.After(delay):
	}

	action, err := complete(t.ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.tasks[t.slot] != t {
		// Superseded or cancelled while completing; the canceller settled it.
		return
	}
	if t.ctx.Err() != nil {
		o.cancelTask(t)
		t.err = fmt.Errorf("%w: %w", ErrCancelled, context.Cause(t.ctx))
		return
	}

	if err != nil {
		t.err = err
		o.logger.Warn("Task failed", "task", t.id, "slot", t.slot, "error", err)
		o.dispatch(store.ErrorMessage(err.Error()))
	} else {
		o.dispatch(action)
		if t.draft != nil && o.draft == *t.draft {
			o.draft = emptyDraft()
		}
	}

	o.settle(t)
	o.metrics.ObserveInteraction(string(t.slot), o.clock.Now().Sub(started))
	o.logger.Debug("Task finished", "task", t.id, "slot", t.slot)
}

// cancelTask cancels t and removes it from its slot if it is still there.
// Must be called with mu held.
func (o *Orchestrator) cancelTask(t *Task) {
	t.cancel()
	if t.err == nil {
		t.err = ErrCancelled
	}
	o.metrics.ObserveCancelled(string(t.slot))
	o.logger.Debug("Task cancelled", "task", t.id, "slot", t.slot)
	o.settle(t)
}

// settle releases t's slot and clears the loading flag after the last task.
// Must be called with mu held.
func (o *Orchestrator) settle(t *Task) {
	if o.tasks[t.slot] == t {
		delete(o.tasks, t.slot)
		o.phases[t.slot] = PhaseIdle
	}
	o.pending--
	if o.pending == 0 {
		o.dispatch(store.SetLoading{Loading: false})
	}
}

// cancelAll cancels every outstanding task. Must be called with mu held.
func (o *Orchestrator) cancelAll() {
	slots := make([]string, 0, len(o.tasks))
	for slot := range o.tasks {
		slots = append(slots, string(slot))
	}
	sort.Strings(slots)
	for _, slot := range slots {
		o.cancelTask(o.tasks[Slot(slot)])
	}
}

// dispatch applies action to the store. Must be called with mu held.
func (o *Orchestrator) dispatch(action store.Action) {
	o.store.Dispatch(action)
}
