package orchestration

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"mindfulu/internal/metrics"
	"mindfulu/internal/services"
	"mindfulu/internal/store"
	"mindfulu/internal/testutils"
	"mindfulu/pkg/mindtypes"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testDelays = Delays{
	Chat:    1500 * time.Millisecond,
	Journal: 2000 * time.Millisecond,
	SignIn:  1000 * time.Millisecond,
}

type fixture struct {
	orch    *Orchestrator
	store   *store.Store
	metrics *metrics.Collector
	actions []store.ActionType
}

func newFixture(t *testing.T, clock mindtypes.Clock, mutate ...func(*Options)) *fixture {
	t.Helper()

	f := &fixture{metrics: metrics.NewCollector("")}
	f.store = store.New(
		store.WithLogger(log.New(io.Discard)),
		store.WithListener(func(action store.Action, _, _ mindtypes.AppState) {
			f.actions = append(f.actions, action.Type())
		}),
	)

	ids := testutils.NewSequenceIDs()
	opts := Options{
		Analysis:     services.NewAnalysisService(),
		Conversation: services.NewConversationService(),
		Auth:         services.NewAuthService(ids),
		Clock:        clock,
		IDs:          ids,
		Delays:       testDelays,
		Metrics:      f.metrics,
		Logger:       log.New(io.Discard),
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	orch, err := New(f.store, opts)
	require.NoError(t, err)
	t.Cleanup(orch.Close)
	f.orch = orch
	return f
}

// actionLog returns the recorded action types. Only call it once every task
// has settled.
func (f *fixture) actionLog() []store.ActionType {
	return append([]store.ActionType(nil), f.actions...)
}

func wait(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return task.Wait(ctx)
}

type failingConversation struct{}

func (failingConversation) Respond(context.Context, string) (string, error) {
	return "", errors.New("boom")
}

type failingAuth struct{}

func (failingAuth) Authenticate(context.Context, string, string) (mindtypes.User, error) {
	return mindtypes.User{}, &mindtypes.AuthError{Message: "account locked"}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	s := store.New(store.WithLogger(log.New(io.Discard)))
	ids := testutils.NewSequenceIDs()
	full := Options{
		Analysis:     services.NewAnalysisService(),
		Conversation: services.NewConversationService(),
		Auth:         services.NewAuthService(ids),
		Clock:        testutils.NewStepClock(),
		IDs:          ids,
	}

	_, err := New(nil, full)
	assert.Error(t, err)

	noAuth := full
	noAuth.Auth = nil
	_, err = New(s, noAuth)
	assert.Error(t, err)

	noClock := full
	noClock.Clock = nil
	_, err = New(s, noClock)
	assert.Error(t, err)

	orch, err := New(s, full)
	require.NoError(t, err)
	orch.Close()
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "pending", PhasePending.String())
	assert.Equal(t, "analyzing", PhaseAnalyzing.String())
	assert.Equal(t, "authenticating", PhaseAuthenticating.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}

// TestOrchestrator_EndToEnd signs in, journals and chats like a student would.
func TestOrchestrator_EndToEnd(t *testing.T) {
	clock := testutils.NewStepClock()
	f := newFixture(t, clock)
	ctx := context.Background()

	task, err := f.orch.SignIn(ctx, "pat@school.edu", "x")
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	state := f.orch.State()
	require.NotNil(t, state.User)
	assert.Equal(t, testutils.TestUser(), *state.User)

	task, err = f.orch.SaveEntry(ctx, "I'm anxious about exams", 4)
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	task, err = f.orch.SendMessage(ctx, "I feel lonely")
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	state = f.orch.State()
	require.Len(t, state.JournalEntries, 1)
	entry := state.JournalEntries[0]
	assert.Equal(t, "I'm anxious about exams", entry.Text)
	assert.Equal(t, 4, entry.Mood)
	require.NotNil(t, entry.Analysis)
	assert.Equal(t, "stressed", entry.Analysis.Sentiment)
	assert.Equal(t, []string{"anxious", "exam"}, entry.Analysis.Keywords)

	require.Len(t, state.ChatHistory, 2)
	assert.True(t, state.ChatHistory[0].IsUser)
	assert.Equal(t, "I feel lonely", state.ChatHistory[0].Text)
	assert.False(t, state.ChatHistory[1].IsUser)
	assert.Equal(t, services.ReplyLoneliness, state.ChatHistory[1].Text)

	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Error)
	assert.Equal(t, []time.Duration{testDelays.SignIn, testDelays.Journal, testDelays.Chat}, clock.Waits())

	assert.Equal(t, []store.ActionType{
		store.ActionSetLoading, store.ActionSetUser, store.ActionSetLoading,
		store.ActionSetLoading, store.ActionAddJournalEntry, store.ActionSetLoading,
		store.ActionAddChatMessage, store.ActionSetLoading, store.ActionAddChatMessage, store.ActionSetLoading,
	}, f.actionLog())
}

func TestOrchestrator_JournalEntriesNewestFirst(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock())
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		task, err := f.orch.SaveEntry(ctx, text, 5)
		require.NoError(t, err)
		require.NoError(t, wait(t, task))
	}

	entries := f.orch.State().JournalEntries
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Text)
	assert.Equal(t, "second", entries[1].Text)
	assert.Equal(t, "first", entries[2].Text)
}

func TestOrchestrator_Validation(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock())
	ctx := context.Background()
	before := f.orch.State()

	tests := []struct {
		name  string
		run   func() (*Task, error)
		field string
	}{
		{"empty message", func() (*Task, error) { return f.orch.SendMessage(ctx, "") }, "message"},
		{"whitespace message", func() (*Task, error) { return f.orch.SendMessage(ctx, " \t\n") }, "message"},
		{"empty entry", func() (*Task, error) { return f.orch.SaveEntry(ctx, "   ", 5) }, "text"},
		{"mood too low", func() (*Task, error) { return f.orch.SaveEntry(ctx, "ok", 0) }, "mood"},
		{"mood too high", func() (*Task, error) { return f.orch.SaveEntry(ctx, "ok", 11) }, "mood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.run()
			assert.Nil(t, task)
			var validationErr *mindtypes.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	_, err := f.orch.SaveEntry(ctx, "", 5)
	assert.EqualError(t, err, "text: entry is empty")

	assert.Equal(t, before, f.orch.State())
	assert.Empty(t, f.actionLog(), "rejected submissions dispatch nothing")

	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(`
# HELP mindfulu_orchestrator_rejected_total Total number of submissions rejected by validation
# TYPE mindfulu_orchestrator_rejected_total counter
mindfulu_orchestrator_rejected_total{slot="chat"} 2
mindfulu_orchestrator_rejected_total{slot="journal"} 4
`), "mindfulu_orchestrator_rejected_total"))
}

func TestOrchestrator_SignInValidation(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock())

	for _, creds := range [][2]string{{"", "x"}, {"  ", "x"}, {"pat@school.edu", ""}} {
		task, err := f.orch.SignIn(context.Background(), creds[0], creds[1])
		assert.Nil(t, task)
		var authErr *mindtypes.AuthError
		assert.True(t, errors.As(err, &authErr), "credentials %q", creds)
	}
	assert.Nil(t, f.orch.State().User)
}

func TestOrchestrator_ChatPhases(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)

	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotChat))
	assert.False(t, f.orch.Typing())

	task, err := f.orch.SendMessage(context.Background(), "I can't sleep")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	assert.True(t, f.orch.Typing())
	assert.Equal(t, PhasePending, f.orch.Phase(SlotChat))
	state := f.orch.State()
	assert.True(t, state.IsLoading)
	require.Len(t, state.ChatHistory, 1, "user message is dispatched immediately")
	assert.Nil(t, task.Err())

	clock.Release()
	require.NoError(t, wait(t, task))

	assert.False(t, f.orch.Typing())
	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotChat))
	state = f.orch.State()
	assert.False(t, state.IsLoading)
	require.Len(t, state.ChatHistory, 2)
	assert.Equal(t, services.ReplySleep, state.ChatHistory[1].Text)
	assert.Equal(t, []time.Duration{testDelays.Chat}, clock.Waits())
}

func TestOrchestrator_JournalAndAuthPhases(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)
	ctx := context.Background()

	entryTask, err := f.orch.SaveEntry(ctx, "so tired", 3)
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))
	signInTask, err := f.orch.SignIn(ctx, "pat@school.edu", "x")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	assert.Equal(t, PhaseAnalyzing, f.orch.Phase(SlotJournal))
	assert.Equal(t, PhaseAuthenticating, f.orch.Phase(SlotAuth))
	assert.Empty(t, f.orch.State().JournalEntries, "entry lands after the delay")

	clock.Release()
	require.NoError(t, wait(t, entryTask))
	require.NoError(t, wait(t, signInTask))

	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotJournal))
	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotAuth))
	state := f.orch.State()
	assert.False(t, state.IsLoading)
	assert.Len(t, state.JournalEntries, 1)
	assert.NotNil(t, state.User)

	loading := 0
	for _, a := range f.actionLog() {
		if a == store.ActionSetLoading {
			loading++
		}
	}
	assert.Equal(t, 2, loading, "loading is raised once and cleared once for overlapping tasks")
}

func TestOrchestrator_NewChatSupersedesPending(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)
	ctx := context.Background()

	first, err := f.orch.SendMessage(ctx, "I have an exam tomorrow")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	second, err := f.orch.SendMessage(ctx, "I feel lonely")
	require.NoError(t, err)

	err = wait(t, first)
	assert.True(t, errors.Is(err, ErrCancelled))
	require.True(t, clock.AwaitTimer(5*time.Second))
	assert.True(t, f.orch.Typing())

	clock.Release()
	require.NoError(t, wait(t, second))

	state := f.orch.State()
	require.Len(t, state.ChatHistory, 3)
	assert.Equal(t, "I have an exam tomorrow", state.ChatHistory[0].Text)
	assert.Equal(t, "I feel lonely", state.ChatHistory[1].Text)
	assert.Equal(t, services.ReplyLoneliness, state.ChatHistory[2].Text)
	assert.False(t, state.IsLoading)

	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(`
# HELP mindfulu_orchestrator_cancelled_total Total number of interactions cancelled before completion
# TYPE mindfulu_orchestrator_cancelled_total counter
mindfulu_orchestrator_cancelled_total{slot="chat"} 1
`), "mindfulu_orchestrator_cancelled_total"))
}

func TestOrchestrator_SignOutCancelsOutstanding(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)
	ctx := context.Background()

	signIn, err := f.orch.SignIn(ctx, "pat@school.edu", "x")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))
	clock.Release()
	require.NoError(t, wait(t, signIn))

	f.orch.UpdateDraft("half written", 2)
	entry, err := f.orch.SaveEntry(ctx, "stressed out", 2)
	require.NoError(t, err)
	chat, err := f.orch.SendMessage(ctx, "hello")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))
	require.True(t, clock.AwaitTimer(5*time.Second))

	f.orch.SignOut()

	assert.True(t, errors.Is(wait(t, entry), ErrCancelled))
	assert.True(t, errors.Is(wait(t, chat), ErrCancelled))

	clock.Release()

	state := f.orch.State()
	assert.Nil(t, state.User)
	assert.Empty(t, state.JournalEntries)
	assert.Empty(t, state.ChatHistory)
	assert.False(t, state.IsLoading)
	assert.Equal(t, Draft{Mood: mindtypes.DefaultMood}, f.orch.Draft())
	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotChat))
	assert.Equal(t, PhaseIdle, f.orch.Phase(SlotJournal))
}

func TestOrchestrator_CallerCancellation(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := f.orch.SendMessage(ctx, "I feel lonely")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	cancel()
	err = wait(t, task)
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))

	state := f.orch.State()
	assert.Len(t, state.ChatHistory, 1, "cancelled reply is never dispatched")
	assert.False(t, state.IsLoading)
	assert.False(t, f.orch.Typing())
}

func TestOrchestrator_ServiceErrorSetsError(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock(), func(o *Options) {
		o.Conversation = failingConversation{}
		o.Auth = failingAuth{}
	})
	ctx := context.Background()

	task, err := f.orch.SendMessage(ctx, "hello")
	require.NoError(t, err)
	err = wait(t, task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCancelled))

	state := f.orch.State()
	require.NotNil(t, state.Error)
	assert.Equal(t, "companion reply failed: boom", *state.Error)
	assert.Len(t, state.ChatHistory, 1)
	assert.False(t, state.IsLoading)

	task, err = f.orch.SignIn(ctx, "pat@school.edu", "x")
	require.NoError(t, err)
	err = wait(t, task)
	var authErr *mindtypes.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "sign in failed: authentication failed: account locked", *f.orch.State().Error)
	assert.Nil(t, f.orch.State().User)

	f.orch.ClearError()
	assert.Nil(t, f.orch.State().Error)
}

func TestOrchestrator_Draft(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock())

	assert.Equal(t, Draft{Mood: mindtypes.DefaultMood}, f.orch.Draft())

	f.orch.UpdateDraft("Great meditation session", 9)
	assert.Equal(t, Draft{Text: "Great meditation session", Mood: 9}, f.orch.Draft())

	task, err := f.orch.SaveDraft(context.Background())
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	assert.Equal(t, Draft{Mood: mindtypes.DefaultMood}, f.orch.Draft(), "draft clears once saved")
	entries := f.orch.State().JournalEntries
	require.Len(t, entries, 1)
	assert.Equal(t, "positive", entries[0].Analysis.Sentiment)

	f.orch.UpdateDraft("", 5)
	_, err = f.orch.SaveDraft(context.Background())
	assert.Error(t, err)
}

func TestOrchestrator_SaveEntryKeepsDraft(t *testing.T) {
	f := newFixture(t, testutils.NewStepClock())

	f.orch.UpdateDraft("half-written thoughts about my week", 3)
	task, err := f.orch.SaveEntry(context.Background(), "quick note: feeling calm", 8)
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	assert.Equal(t, Draft{Text: "half-written thoughts about my week", Mood: 3}, f.orch.Draft())
	assert.Len(t, f.orch.State().JournalEntries, 1)
}

func TestOrchestrator_DraftEditedWhileAnalyzing(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)

	f.orch.UpdateDraft("Long day at the library", 5)
	task, err := f.orch.SaveDraft(context.Background())
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	f.orch.UpdateDraft("Tomorrow I want to", 6)
	clock.Release()
	require.NoError(t, wait(t, task))

	assert.Equal(t, Draft{Text: "Tomorrow I want to", Mood: 6}, f.orch.Draft())
	entries := f.orch.State().JournalEntries
	require.Len(t, entries, 1)
	assert.Equal(t, "Long day at the library", entries[0].Text)
}

func TestOrchestrator_Close(t *testing.T) {
	clock := testutils.NewManualClock()
	f := newFixture(t, clock)

	task, err := f.orch.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	require.True(t, clock.AwaitTimer(5*time.Second))

	f.orch.Close()
	assert.True(t, errors.Is(task.Err(), ErrCancelled))
	assert.False(t, f.orch.State().IsLoading)

	_, err = f.orch.SendMessage(context.Background(), "again")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.orch.SaveEntry(context.Background(), "again", 5)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.orch.SignIn(context.Background(), "pat@school.edu", "x")
	assert.ErrorIs(t, err, ErrClosed)

	// Closing twice is harmless.
	f.orch.Close()
}
