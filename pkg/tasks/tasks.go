// Package tasks implements the minimal tasks/* subsystem (spec's augmented
// async operations): a method handler that would otherwise block for a long
// time can hand its work to a Manager instead, returning immediately while
// tasks/list, tasks/get, tasks/cancel and tasks/result let the caller poll
// or cancel it later.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// Run is the work a task wraps: it should observe ctx.Done() and return
// promptly if cancelled. Returning a *protocol.ProtocolError marks the task
// Failed; otherwise the returned payload becomes the task's TaskResult.
type Run func(ctx context.Context) (result any, protoErr *protocol.ProtocolError)

// timestampLayout is spec §4.1's "offset-aware ISO-8601 at microsecond or
// finer precision" requirement for CreatedAt/UpdatedAt; time.RFC3339 alone
// only gives second precision.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

type entry struct {
	task   protocol.Task
	cancel context.CancelFunc
	result any
	err    *protocol.ProtocolError
}

// Manager tracks every task this process has started, regardless of which
// method (tools/call, resources/read, ...) created it.
type Manager struct {
	mu    sync.Mutex
	tasks map[string]*entry
}

func NewManager() *Manager {
	return &Manager{tasks: make(map[string]*entry)}
}

// Start launches run on its own goroutine and returns the task's initial
// (Working) snapshot. The caller typically embeds the returned Task in a
// method-specific "this is a task, not an inline result" wrapper.
func (m *Manager) Start(ctx context.Context, run Run) protocol.Task {
	id := uuid.NewString()
	now := time.Now().UTC().Format(timestampLayout)
	taskCtx, cancel := context.WithCancel(ctx)

	e := &entry{
		task: protocol.Task{
			TaskID:    id,
			Status:    protocol.TaskWorking,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.tasks[id] = e
	m.mu.Unlock()

	go func() {
		result, protoErr := run(taskCtx)
		m.finish(id, taskCtx, result, protoErr)
	}()

	return e.task
}

func (m *Manager) finish(id string, ctx context.Context, result any, protoErr *protocol.ProtocolError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return
	}
	e.task.UpdatedAt = time.Now().UTC().Format(timestampLayout)
	switch {
	case ctx.Err() != nil && e.task.Status == protocol.TaskWorking:
		e.task.Status = protocol.TaskCancelled
	case protoErr != nil:
		e.task.Status = protocol.TaskFailed
		e.task.StatusMsg = protoErr.Msg
		e.err = protoErr
	default:
		e.task.Status = protocol.TaskCompleted
		e.result = result
	}
}

// List returns every tracked task, newest first is not guaranteed; callers
// needing order should sort on CreatedAt.
func (m *Manager) List() []protocol.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.Task, 0, len(m.tasks))
	for _, e := range m.tasks {
		out = append(out, e.task)
	}
	return out
}

func (m *Manager) Get(id string) (protocol.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tasks[id]
	if !ok {
		return protocol.Task{}, false
	}
	return e.task, true
}

// Cancel requests the task's context be cancelled. It does not itself mark
// the task Cancelled -- the running goroutine does that once it observes
// ctx.Done and returns, so the recorded status always reflects whatever the
// work actually managed to do before stopping.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	e, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	e.cancel()
	return true
}

// Result returns the task's terminal payload. ok is false if the task is
// unknown or still Working.
func (m *Manager) Result(id string) (result any, protoErr *protocol.ProtocolError, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.tasks[id]
	if !found || e.task.Status == protocol.TaskWorking {
		return nil, nil, false
	}
	return e.result, e.err, true
}
