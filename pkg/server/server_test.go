package server_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/server"
	"github.com/richard-senior/mcp/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeTransport is an in-memory transport.Transport pair for driving a
// server.Server end to end without stdio or a real socket.
type pipeTransport struct {
	in   chan protocol.Message
	out  chan protocol.Message
	mu   sync.Mutex
	done bool
}

func newPipePair() (*pipeTransport, *pipeTransport) {
	a := make(chan protocol.Message, 64)
	b := make(chan protocol.Message, 64)
	return &pipeTransport{in: a, out: b}, &pipeTransport{in: b, out: a}
}

func (t *pipeTransport) Messages() <-chan protocol.Message { return t.in }
func (t *pipeTransport) Send(ctx context.Context, msg protocol.Message) error {
	select {
	case t.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
func (t *pipeTransport) SessionID() string { return "" }
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

var _ transport.Transport = (*pipeTransport)(nil)

func newTestServer(t *testing.T) (*server.Server, *pipeTransport) {
	t.Helper()
	clientT, serverT := newPipePair()
	srv, err := server.New(serverT, server.Options{
		Implementation: protocol.Implementation{Name: "test-server", Version: "0.0.1"},
		SQLitePath:     filepath.Join(t.TempDir(), "mcp.db"),
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Start(ctx)
	return srv, clientT
}

// callRaw is a bare session.Session-free helper: we drive the raw
// transport directly so we can assert on exact wire frames, the way spec
// §8 scenario 1 describes the literal initialize exchange.
func callRaw(t *testing.T, ct *pipeTransport, id int64, method string, params string) *protocol.Response {
	t.Helper()
	req := &protocol.Request{ID: protocol.NewIntID(id), Method: method, Params: []byte(params)}
	require.NoError(t, ct.Send(context.Background(), req))
	select {
	case msg := <-ct.Messages():
		resp, ok := msg.(*protocol.Response)
		require.True(t, ok, "expected *protocol.Response, got %T", msg)
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("no reply received")
		return nil
	}
}

// TestServer_HandshakeHappyPath covers spec §8 scenario 1: initialize then
// notifications/initialized brings the session to Ready.
func TestServer_HandshakeHappyPath(t *testing.T) {
	_, ct := newTestServer(t)

	resp := callRaw(t, ct, 1, protocol.MethodInitialize, `{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test-client","version":"1.0"}}`)
	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, protocol.LatestProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, "test-server", result.ServerInfo.Name)

	notif := &protocol.Notification{Method: protocol.NotificationInitialized, Params: []byte(`{}`)}
	require.NoError(t, ct.Send(context.Background(), notif))

	time.Sleep(50 * time.Millisecond)

	resp = callRaw(t, ct, 2, protocol.MethodToolsList, `{}`)
	var list protocol.ListToolsResult
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	assert.NotEmpty(t, list.Tools)
}

// TestServer_RejectsMethodBeforeReady covers the handshake gate: issuing a
// feature method before the handshake completes fails with server-not-init.
func TestServer_RejectsMethodBeforeReady(t *testing.T) {
	_, ct := newTestServer(t)

	req := &protocol.Request{ID: protocol.NewIntID(1), Method: protocol.MethodToolsList, Params: []byte(`{}`)}
	require.NoError(t, ct.Send(context.Background(), req))

	select {
	case msg := <-ct.Messages():
		errMsg, ok := msg.(*protocol.ErrorMessage)
		require.True(t, ok, "expected *protocol.ErrorMessage, got %T", msg)
		assert.Equal(t, protocol.ErrServerNotInit, errMsg.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply received")
	}
}

func TestServer_PingAnsweredAnyPhase(t *testing.T) {
	_, ct := newTestServer(t)
	resp := callRaw(t, ct, 1, protocol.MethodPing, `{}`)
	assert.JSONEq(t, `{}`, string(resp.Result))
}
