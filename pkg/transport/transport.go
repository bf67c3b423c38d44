// Package transport implements the framed delivery of JSON-RPC messages
// that the session core rides on top of (spec §4.2): a pull-style reader
// of parsed messages in arrival order, an async send, a session
// identifier for multi-session transports, and an orderly disposal path.
package transport

import (
	"context"

	"github.com/richard-senior/mcp/pkg/protocol"
)

// Transport is the contract both the stdio and streamable-HTTP variants
// satisfy. A single Transport value represents one session's worth of
// framing; for stdio that's the whole process, for HTTP it's one
// Mcp-Session-Id.
type Transport interface {
	// Messages returns the channel of inbound messages in arrival order.
	// The channel is closed when the peer disconnects, and by Close on the
	// HTTP transports; StdioTransport closes it only when its read loop
	// ends, which a blocked read does not do on Close. Callers must drain
	// it before concluding the session has ended cleanly rather than
	// erroring out.
	Messages() <-chan protocol.Message

	// Send serializes and transmits msg, returning once the bytes are
	// accepted by the underlying channel. It does not wait for the peer
	// to acknowledge receipt.
	Send(ctx context.Context, msg protocol.Message) error

	// SessionID identifies the session for multi-session transports
	// (HTTP); stdio transports return "".
	SessionID() string

	// Err returns the error that caused Messages() to close, if any.
	// Call after the channel closes; a nil return after closure means a
	// clean shutdown via Close.
	Err() error

	// Close releases underlying resources and fails any subsequent Send.
	// See Messages for when the channel itself is closed.
	Close() error
}
