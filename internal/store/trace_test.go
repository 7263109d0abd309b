package store

import (
	"bytes"
	"testing"

	"mindfulu/internal/testutils"
	"mindfulu/pkg/mindtypes"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestStateDiff(t *testing.T) {
	t.Run("identical states produce no diff", func(t *testing.T) {
		state := populatedState()
		assert.Empty(t, StateDiff(state, state.Clone()))
	})

	t.Run("added message shows as insertion", func(t *testing.T) {
		prev := mindtypes.NewAppState()
		next := Reduce(prev, AddChatMessage{Message: testutils.Message("m1", "hello companion", true)})

		diff := StateDiff(prev, next)
		assert.Contains(t, diff, "+")
		assert.Contains(t, diff, "hello companion")
	})

	t.Run("logout shows removals", func(t *testing.T) {
		prev := populatedState()
		next := Reduce(prev, Logout{})

		diff := StateDiff(prev, next)
		assert.Contains(t, diff, "-")
		assert.Contains(t, diff, "pat@school.edu")
	})
}

func TestTraceListener(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf)

	t.Run("silent above debug", func(t *testing.T) {
		l.SetLevel(log.InfoLevel)
		s := New(WithListener(TraceListener(l)))
		s.Dispatch(SetLoading{Loading: true})
		assert.Empty(t, buf.String())
	})

	t.Run("logs transitions at debug", func(t *testing.T) {
		buf.Reset()
		l.SetLevel(log.DebugLevel)
		s := New(WithListener(TraceListener(l)))
		s.Dispatch(SetLoading{Loading: true})

		out := buf.String()
		assert.Contains(t, out, "State transition")
		assert.Contains(t, out, "SET_LOADING")
		assert.Contains(t, out, "is_loading: true")
	})

	t.Run("nil logger is ignored", func(t *testing.T) {
		listener := TraceListener(nil)
		listener(Logout{}, mindtypes.NewAppState(), mindtypes.NewAppState())
	})
}
