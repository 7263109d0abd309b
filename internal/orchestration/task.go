package orchestration

import "context"

// Task is the handle of one scheduled interaction completion.
type Task struct {
	id     int
	slot   Slot
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// draft is the buffer a journal task was saved from, if any.
	draft *Draft

	// err is written under the orchestrator lock before done is closed.
	err error
}

func newTask(parent context.Context, id int, slot Slot) *Task {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		id:     id,
		slot:   slot,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Slot returns the interaction slot the task belongs to.
func (t *Task) Slot() Slot {
	return t.slot
}

// Done is closed once the task has dispatched, failed or been cancelled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task settles or ctx is done. It returns the task's
// error: nil on success, an error wrapping ErrCancelled if the task was
// cancelled, or the service error that was dispatched as SetError.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task's error once Done is closed, and nil before that.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
