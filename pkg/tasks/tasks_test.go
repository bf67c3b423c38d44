package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartCompletes(t *testing.T) {
	m := tasks.NewManager()
	task := m.Start(context.Background(), func(ctx context.Context) (any, *protocol.ProtocolError) {
		return "done", nil
	})
	assert.Equal(t, protocol.TaskWorking, task.Status)

	require.Eventually(t, func() bool {
		got, ok := m.Get(task.TaskID)
		return ok && got.Status == protocol.TaskCompleted
	}, time.Second, 5*time.Millisecond)

	result, protoErr, ok := m.Result(task.TaskID)
	require.True(t, ok)
	assert.Nil(t, protoErr)
	assert.Equal(t, "done", result)
}

func TestManager_StartFails(t *testing.T) {
	m := tasks.NewManager()
	task := m.Start(context.Background(), func(ctx context.Context) (any, *protocol.ProtocolError) {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "boom")
	})

	require.Eventually(t, func() bool {
		got, _ := m.Get(task.TaskID)
		return got.Status == protocol.TaskFailed
	}, time.Second, 5*time.Millisecond)

	_, protoErr, ok := m.Result(task.TaskID)
	require.True(t, ok)
	require.NotNil(t, protoErr)
	assert.Equal(t, "boom", protoErr.Msg)
}

func TestManager_CancelStopsRunningTask(t *testing.T) {
	m := tasks.NewManager()
	started := make(chan struct{})
	task := m.Start(context.Background(), func(ctx context.Context) (any, *protocol.ProtocolError) {
		close(started)
		<-ctx.Done()
		return nil, nil
	})

	<-started
	require.True(t, m.Cancel(task.TaskID))

	require.Eventually(t, func() bool {
		got, _ := m.Get(task.TaskID)
		return got.Status == protocol.TaskCancelled
	}, time.Second, 5*time.Millisecond)
}

func TestManager_CancelUnknownTaskReturnsFalse(t *testing.T) {
	m := tasks.NewManager()
	assert.False(t, m.Cancel("does-not-exist"))
}

func TestManager_ListIncludesAllTasks(t *testing.T) {
	m := tasks.NewManager()
	m.Start(context.Background(), func(ctx context.Context) (any, *protocol.ProtocolError) { return nil, nil })
	m.Start(context.Background(), func(ctx context.Context) (any, *protocol.ProtocolError) { return nil, nil })

	require.Eventually(t, func() bool {
		return len(m.List()) == 2
	}, time.Second, 5*time.Millisecond)
}
