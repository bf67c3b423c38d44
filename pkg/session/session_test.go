package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeTransport is an in-memory Transport pair, enough to drive a Session
// under test without a real stdio or HTTP connection.
type pipeTransport struct {
	id   string
	in   chan protocol.Message
	out  chan protocol.Message
	mu   sync.Mutex
	done bool
}

func newPipePair() (*pipeTransport, *pipeTransport) {
	a := make(chan protocol.Message, 64)
	b := make(chan protocol.Message, 64)
	left := &pipeTransport{in: a, out: b}
	right := &pipeTransport{in: b, out: a}
	return left, right
}

func (t *pipeTransport) Messages() <-chan protocol.Message { return t.in }

func (t *pipeTransport) Send(ctx context.Context, msg protocol.Message) error {
	t.mu.Lock()
	closed := t.done
	t.mu.Unlock()
	if closed {
		return assert.AnError
	}
	select {
	case t.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *pipeTransport) SessionID() string { return t.id }
func (t *pipeTransport) Err() error        { return nil }
func (t *pipeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.done = true
		close(t.in)
	}
	return nil
}

func TestSession_CallAndReply(t *testing.T) {
	clientT, serverT := newPipePair()
	client := session.New(clientT)
	server := session.New(serverT)

	server.SetRequestHandler(func(ctx context.Context, req *protocol.Request) (json.RawMessage, *protocol.ProtocolError, bool) {
		assert.Equal(t, "ping", req.Method)
		return json.RawMessage(`{"pong":true}`), nil, false
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go server.Run(ctx)

	result, err := client.Call(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong":true}`, string(result))
}

func TestSession_UnhandledMethodRepliesMethodNotFound(t *testing.T) {
	clientT, serverT := newPipePair()
	client := session.New(clientT)
	server := session.New(serverT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go server.Run(ctx)

	_, err := client.Call(context.Background(), "nonexistent", nil)
	require.Error(t, err)
	errMsg, ok := err.(*protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, protocol.ErrMethodNotFound, errMsg.Code)
}

// TestSession_CancellationStopsHandler covers spec §8 scenario 4: cancelling
// an outbound request notifies the peer, and the peer's handler observes
// ctx cancellation and never replies.
func TestSession_CancellationStopsHandler(t *testing.T) {
	clientT, serverT := newPipePair()
	client := session.New(clientT)
	server := session.New(serverT)

	handlerStarted := make(chan struct{})
	handlerCancelled := make(chan struct{})
	server.SetRequestHandler(func(ctx context.Context, req *protocol.Request) (json.RawMessage, *protocol.ProtocolError, bool) {
		close(handlerStarted)
		<-ctx.Done()
		close(handlerCancelled)
		return nil, nil, true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go server.Run(ctx)

	callCtx, callCancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_, err := client.Call(callCtx, "tools/call", nil)
		assert.Error(t, err)
		close(done)
	}()

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}

	callCancel()

	select {
	case <-handlerCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never cancelled")
	}
	<-done
}

func TestSession_CloseFailsOutstandingRequests(t *testing.T) {
	clientT, serverT := newPipePair()
	client := session.New(clientT)
	server := session.New(serverT)
	_ = server

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	done := make(chan struct{})
	go func() {
		_, err := client.Call(context.Background(), "tools/list", nil)
		assert.Error(t, err)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("outstanding call never resolved after Close")
	}
}

func TestSession_NotificationRouting(t *testing.T) {
	clientT, serverT := newPipePair()
	client := session.New(clientT)
	server := session.New(serverT)

	received := make(chan json.RawMessage, 1)
	server.RegisterNotificationHandler("notifications/progress", func(ctx context.Context, params json.RawMessage) {
		received <- params
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go server.Run(ctx)

	require.NoError(t, client.Notify(context.Background(), "notifications/progress", map[string]int{"progress": 1}))

	select {
	case params := <-received:
		assert.JSONEq(t, `{"progress":1}`, string(params))
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
}
