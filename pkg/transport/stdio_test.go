package transport_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopCloserWriter lets the transport's writer side be a plain bytes.Buffer
// without satisfying io.Closer, exercising the "w isn't a Closer" path of
// Close.
type nopCloserWriter struct{ *bytes.Buffer }

func TestStdioTransport_DecodesNewlineFramedMessages(t *testing.T) {
	input := bytes.NewBufferString(
		"{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"ping\",\"params\":{}}\n" +
			"{\"jsonrpc\":\"2.0\",\"method\":\"notifications/initialized\"}\n",
	)
	out := &nopCloserWriter{&bytes.Buffer{}}
	tr := transport.NewStdioTransport(input, out)
	defer tr.Close()

	first := mustRecv(t, tr)
	req, ok := first.(*protocol.Request)
	require.True(t, ok)
	assert.Equal(t, "ping", req.Method)

	second := mustRecv(t, tr)
	notif, ok := second.(*protocol.Notification)
	require.True(t, ok)
	assert.Equal(t, "notifications/initialized", notif.Method)
}

func TestStdioTransport_SkipsUnparsableLines(t *testing.T) {
	input := bytes.NewBufferString(
		"not json at all\n" +
			"{\"jsonrpc\":\"2.0\",\"id\":2,\"method\":\"ping\",\"params\":{}}\n",
	)
	out := &nopCloserWriter{&bytes.Buffer{}}
	tr := transport.NewStdioTransport(input, out)
	defer tr.Close()

	msg := mustRecv(t, tr)
	req, ok := msg.(*protocol.Request)
	require.True(t, ok)
	assert.Equal(t, "ping", req.Method)
}

func TestStdioTransport_DiscardsPartialLineAtEOF(t *testing.T) {
	input := bytes.NewBufferString(
		"{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"ping\",\"params\":{}}\n" +
			"{\"jsonrpc\":\"2.0\",\"id\":2,\"method\":\"ping\",\"params\":{}}",
	)
	out := &nopCloserWriter{&bytes.Buffer{}}
	tr := transport.NewStdioTransport(input, out)
	defer tr.Close()

	first := mustRecv(t, tr)
	req, ok := first.(*protocol.Request)
	require.True(t, ok)
	assert.True(t, req.ID.Equal(protocol.NewIntID(1)))

	// The second frame was never newline-terminated before EOF; it must
	// not be delivered, and the channel closes once the reader drains.
	select {
	case msg, ok := <-tr.Messages():
		if ok {
			t.Fatalf("expected no further messages, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transport to close")
	}
}

func TestStdioTransport_SendEncodesNewlineDelimited(t *testing.T) {
	out := &nopCloserWriter{&bytes.Buffer{}}
	tr := transport.NewStdioTransport(bytes.NewBufferString(""), out)
	defer tr.Close()

	req := &protocol.Request{ID: protocol.NewIntID(1), Method: "ping", Params: []byte(`{}`)}
	require.NoError(t, tr.Send(context.Background(), req))
	assert.True(t, bytes.HasSuffix(out.Bytes(), []byte("\n")))
	assert.Contains(t, out.String(), `"method":"ping"`)
}

func TestStdioTransport_SessionIDAlwaysEmpty(t *testing.T) {
	tr := transport.NewStdioTransport(bytes.NewBufferString(""), &nopCloserWriter{&bytes.Buffer{}})
	defer tr.Close()
	assert.Equal(t, "", tr.SessionID())
}

func TestStdioTransport_SendAfterCloseFails(t *testing.T) {
	tr := transport.NewStdioTransport(bytes.NewBufferString(""), &nopCloserWriter{&bytes.Buffer{}})
	require.NoError(t, tr.Close())

	err := tr.Send(context.Background(), &protocol.Request{ID: protocol.NewIntID(1), Method: "ping"})
	assert.ErrorIs(t, err, transport.ErrTransportClosed)
}

func mustRecv(t *testing.T, tr *transport.StdioTransport) protocol.Message {
	t.Helper()
	select {
	case msg, ok := <-tr.Messages():
		require.True(t, ok, "transport closed before delivering a message")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

var _ io.Writer = (*nopCloserWriter)(nil)
