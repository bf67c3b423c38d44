// Package client implements the client side of an MCP session: the
// initialize handshake, typed call wrappers for every client->server
// method, and the dispatch table for the server->client methods (sampling,
// elicitation, roots) a host must answer.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/session"
	"github.com/richard-senior/mcp/pkg/transport"
)

// Options configures a Client at construction time. ProtocolVersions and
// RequestTimeout are spec §6's "Configuration surface" entries the
// session core owns; empty/zero take session.Options' own defaults.
type Options struct {
	Implementation   protocol.Implementation
	Capabilities     protocol.ClientCapabilities
	ProtocolVersions []string
	RequestTimeout   time.Duration
}

// SamplingHandler answers a server-issued sampling/createMessage request.
type SamplingHandler func(ctx context.Context, params *protocol.CreateMessageParams) (*protocol.CreateMessageResult, *protocol.ProtocolError)

// ElicitationHandler answers a server-issued elicitation/create request.
type ElicitationHandler func(ctx context.Context, params *protocol.ElicitParams) (*protocol.ElicitResult, *protocol.ProtocolError)

// RootsHandler answers a server-issued roots/list request.
type RootsHandler func(ctx context.Context) ([]protocol.Root, *protocol.ProtocolError)

// Client wraps a *session.Session with the client half of the MCP
// handshake plus every method inventory entry a client may call or must
// answer.
type Client struct {
	sess *session.Session
	impl protocol.Implementation
	caps protocol.ClientCapabilities

	mu         sync.RWMutex
	remoteCaps protocol.ServerCapabilities
	remoteImpl protocol.Implementation
	negotiated string

	sampling    SamplingHandler
	elicitation ElicitationHandler
	roots       RootsHandler
}

// New wires a Client around t; call Connect to run the handshake before
// issuing any other request.
func New(t transport.Transport, opts Options) *Client {
	c := &Client{
		sess: session.New(t, session.Options{
			ProtocolVersions: opts.ProtocolVersions,
			RequestTimeout:   opts.RequestTimeout,
		}),
		impl: opts.Implementation,
		caps: opts.Capabilities,
	}
	c.sess.SetRequestHandler(c.dispatch)
	return c
}

// Run drives the session's inbound loop; call it from its own goroutine
// alongside Connect.
func (c *Client) Run(ctx context.Context) error { return c.sess.Run(ctx) }

func (c *Client) Close() error { return c.sess.Close() }

// SessionID is the transport's multi-session identifier, or "" for stdio.
func (c *Client) SessionID() string { return c.sess.SessionID() }

// SetSamplingHandler registers the handler answering sampling/createMessage.
// With a nil handler (the default) sampling/createMessage is answered with
// method-not-found; the advertised capabilities are those in
// Options.Capabilities either way.
func (c *Client) SetSamplingHandler(h SamplingHandler) { c.sampling = h }

// SetElicitationHandler registers the handler answering elicitation/create.
func (c *Client) SetElicitationHandler(h ElicitationHandler) { c.elicitation = h }

// SetRootsHandler registers the handler answering roots/list.
func (c *Client) SetRootsHandler(h RootsHandler) { c.roots = h }

// Connect runs the client side of the handshake (spec §4.4): send
// initialize, wait for the server's reply, then send
// notifications/initialized. After Connect returns nil, feature requests
// are permitted.
func (c *Client) Connect(ctx context.Context) error {
	c.sess.SetPhase(session.PhaseInitializing)

	versions := c.sess.ProtocolVersions()
	params := &protocol.InitializeParams{
		ProtocolVersion: versions[0],
		Capabilities:    c.caps,
		ClientInfo:      c.impl,
	}
	raw, err := c.sess.Call(ctx, protocol.MethodInitialize, params)
	if err != nil {
		return fmt.Errorf("client: initialize: %w", err)
	}

	var result protocol.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("client: decoding initialize result: %w", err)
	}

	c.mu.Lock()
	c.remoteCaps = result.Capabilities
	c.remoteImpl = result.ServerInfo
	c.negotiated = result.ProtocolVersion
	c.mu.Unlock()

	c.sess.SetPhase(session.PhaseAwaitingAck)

	if !protocol.SupportsVersion(result.ProtocolVersion, versions) {
		_ = c.sess.Close()
		return fmt.Errorf("client: protocol version mismatch: server offered %q, this client supports %v; disconnecting without acknowledging",
			result.ProtocolVersion, versions)
	}

	if err := c.sess.Notify(ctx, protocol.NotificationInitialized, &protocol.InitializedParams{}); err != nil {
		return fmt.Errorf("client: sending notifications/initialized: %w", err)
	}
	c.sess.SetPhase(session.PhaseReady)
	logger.Info("client session ready", result.ServerInfo.Name, result.ServerInfo.Version)
	return nil
}

// RemoteInfo returns the server's advertised identity and capabilities,
// valid only after Connect succeeds.
func (c *Client) RemoteInfo() (protocol.Implementation, protocol.ServerCapabilities) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remoteImpl, c.remoteCaps
}

// dispatch is the session.RequestHandler for requests the server issues
// against this client: sampling, elicitation, roots, plus ping. Per spec
// §4.4, cancellation of initialize is a protocol error -- there is no
// client-receivable initialize, so no special case is needed here.
func (c *Client) dispatch(ctx context.Context, req *protocol.Request) (json.RawMessage, *protocol.ProtocolError, bool) {
	if req.Method == protocol.MethodPing {
		return json.RawMessage(`{}`), nil, false
	}

	if c.sess.Phase() != session.PhaseReady {
		return nil, protocol.NewProtocolError(protocol.ErrServerNotInit, "client session not initialized"), false
	}

	if gated, ok := protocol.ClientMethodGated(req.Method, &c.caps); gated && !ok {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+req.Method), false
	}

	switch req.Method {
	case protocol.MethodSamplingCreateMessage:
		return c.handleSampling(ctx, req.Params)
	case protocol.MethodElicitationCreate:
		return c.handleElicitation(ctx, req.Params)
	case protocol.MethodRootsList:
		return c.handleRootsList(ctx, req.Params)
	default:
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+req.Method), false
	}
}

func (c *Client) handleSampling(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError, bool) {
	if c.sampling == nil {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+protocol.MethodSamplingCreateMessage), false
	}
	var params protocol.CreateMessageParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error()), false
	}
	result, perr := c.sampling(ctx, &params)
	if perr != nil {
		return nil, perr, false
	}
	return encode(result)
}

// handleElicitation applies the form/url sub-gating spec §4.4 requires: a
// blank elicitation capability defaults to form-only for backward
// compatibility with peers predating the url mode.
func (c *Client) handleElicitation(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError, bool) {
	if c.elicitation == nil {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+protocol.MethodElicitationCreate), false
	}
	var params protocol.ElicitParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error()), false
	}

	isURLMode := params.IsURLMode()
	if isURLMode && !c.caps.ElicitationSupports(false, true) {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "Client does not support URL mode elicitation requests"), false
	}
	if !isURLMode && !c.caps.ElicitationSupports(true, false) {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "Client does not support form mode elicitation requests"), false
	}

	result, perr := c.elicitation(ctx, &params)
	if perr != nil {
		return nil, perr, false
	}
	return encode(result)
}

func (c *Client) handleRootsList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError, bool) {
	if c.roots == nil {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+protocol.MethodRootsList), false
	}
	roots, perr := c.roots(ctx)
	if perr != nil {
		return nil, perr, false
	}
	return encode(&protocol.ListRootsResult{Roots: roots})
}

func encode(v any) (json.RawMessage, *protocol.ProtocolError, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to encode result: "+err.Error()), false
	}
	return data, nil, false
}
