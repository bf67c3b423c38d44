package client_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/richard-senior/mcp/pkg/client"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/server"
	"github.com/richard-senior/mcp/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnectedPair wires a real server.Server against a real client.Client
// over a pair of io.Pipe-backed stdio transports, so Connect exercises the
// full wire handshake rather than a mock.
func newConnectedPair(t *testing.T) (*client.Client, *server.Server) {
	t.Helper()
	serverR, clientW := io.Pipe()
	clientR, serverW := io.Pipe()

	serverT := transport.NewStdioTransport(serverR, serverW)
	clientT := transport.NewStdioTransport(clientR, clientW)

	srv, err := server.New(serverT, server.Options{
		Implementation: protocol.Implementation{Name: "test-server", Version: "1.0.0"},
		SQLitePath:     filepath.Join(t.TempDir(), "mcp.db"),
	})
	require.NoError(t, err)

	c := client.New(clientT, client.Options{
		Implementation: protocol.Implementation{Name: "test-client", Version: "1.0.0"},
		Capabilities:   protocol.ClientCapabilities{Roots: &protocol.RootsCapability{}, Elicitation: &protocol.ElicitationCapability{}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Start(ctx)
	go c.Run(ctx)

	return c, srv
}

func TestClient_ConnectHandshake(t *testing.T) {
	c, _ := newConnectedPair(t)
	require.NoError(t, c.Connect(context.Background()))

	impl, caps := c.RemoteInfo()
	assert.Equal(t, "test-server", impl.Name)
	assert.NotNil(t, caps.Tools)
}

func TestClient_RootsListServedByHandler(t *testing.T) {
	c, srv := newConnectedPair(t)
	c.SetRootsHandler(func(ctx context.Context) ([]protocol.Root, *protocol.ProtocolError) {
		return []protocol.Root{{URI: "file:///workspace", Name: "workspace"}}, nil
	})
	require.NoError(t, c.Connect(context.Background()))

	roots, err := srv.ListRoots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "file:///workspace", roots[0].URI)
}

func TestClient_ElicitFormMode(t *testing.T) {
	c, srv := newConnectedPair(t)
	c.SetElicitationHandler(func(ctx context.Context, params *protocol.ElicitParams) (*protocol.ElicitResult, *protocol.ProtocolError) {
		assert.False(t, params.IsURLMode())
		return &protocol.ElicitResult{Action: protocol.ElicitAccept}, nil
	})
	require.NoError(t, c.Connect(context.Background()))

	result, err := srv.Elicit(context.Background(), &protocol.ElicitParams{
		Message:         "confirm?",
		RequestedSchema: map[string]protocol.PrimitiveSchemaDefinition{"ok": &protocol.BooleanSchema{}},
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.ElicitAccept, result.Action)
}

// TestClient_ElicitRejectsURLWhenOnlyFormAdvertised covers spec §4.4/§8
// scenario 5: a URL-mode elicitation/create against a form-only client is
// rejected by the server's own pre-check before it reaches the client.
func TestClient_ElicitRejectsURLWhenOnlyFormAdvertised(t *testing.T) {
	serverR, clientW := io.Pipe()
	clientR, serverW := io.Pipe()
	serverT := transport.NewStdioTransport(serverR, serverW)
	clientT := transport.NewStdioTransport(clientR, clientW)

	srv, err := server.New(serverT, server.Options{
		Implementation: protocol.Implementation{Name: "test-server", Version: "1.0.0"},
		SQLitePath:     filepath.Join(t.TempDir(), "mcp.db"),
	})
	require.NoError(t, err)

	c := client.New(clientT, client.Options{
		Implementation: protocol.Implementation{Name: "test-client", Version: "1.0.0"},
		Capabilities:   protocol.ClientCapabilities{Elicitation: &protocol.ElicitationCapability{Form: true}},
	})
	called := false
	c.SetElicitationHandler(func(ctx context.Context, params *protocol.ElicitParams) (*protocol.ElicitResult, *protocol.ProtocolError) {
		called = true
		return &protocol.ElicitResult{Action: protocol.ElicitAccept}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Start(ctx)
	go c.Run(ctx)
	require.NoError(t, c.Connect(context.Background()))

	_, err = srv.Elicit(context.Background(), &protocol.ElicitParams{Message: "confirm?", URL: "https://example.com/consent"})
	require.Error(t, err)
	assert.False(t, called, "handler must not run when the server's own pre-check already rejected the call")
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c, _ := newConnectedPair(t)
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
