// Package session implements the bidirectional JSON-RPC session core
// shared by both peer roles (spec §4.3): outstanding-request correlation,
// notification routing, in-flight cancellation scopes, and the single
// inbound reader / single outbound writer discipline the concurrency
// model requires (spec §5). pkg/server and pkg/client each wrap a
// *Session with their role-specific handshake and typed call surface.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
)

// Phase is the handshake state a session tracks for its remote peer
// (spec §4.4's state machine).
type Phase int

const (
	PhaseNew Phase = iota
	PhaseInitializing
	PhaseAwaitingAck
	PhaseReady
	PhaseDraining
	PhaseClosed
)

// RequestHandler services one inbound Request. It returns either a result
// to encode into a Response, or a *protocol.ProtocolError to encode into
// an Error message. Returning suppress=true (because ctx was cancelled
// mid-handler) tells the session to send nothing at all (spec §4.3's
// "a handler that completes after cancellation may still produce a
// response -- that response is suppressed").
type RequestHandler func(ctx context.Context, req *protocol.Request) (result json.RawMessage, protoErr *protocol.ProtocolError, suppress bool)

// NotificationHandler services one inbound Notification. It runs on its
// own goroutine, off the reader loop, per spec §4.3.
type NotificationHandler func(ctx context.Context, params json.RawMessage)

// pendingCall is the bookkeeping for one outbound request awaiting reply.
type pendingCall struct {
	resultCh chan replyOrError
}

type replyOrError struct {
	result json.RawMessage
	err    *protocol.ErrorMessage
}

// Session owns the outstanding-request table, the notification-handler
// table, and one peer relationship's lifecycle (spec §4.3, §3's
// SessionState). It is safe for concurrent use: handlers may issue
// reentrant outbound calls on the same session (spec §5).
type Session struct {
	t transport.Transport

	nextID int64

	mu          sync.Mutex
	outstanding map[any]*pendingCall
	inFlight    map[any]context.CancelFunc

	notifMu    sync.RWMutex
	notifiers  map[string]NotificationHandler
	reqHandler RequestHandler

	phaseMu sync.RWMutex
	phase   Phase

	baseCtx    context.Context
	baseCancel context.CancelFunc

	wg sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}

	protocolVersions []string
	requestTimeout   time.Duration
}

// Options configures a Session at construction time. It covers the two
// entries of spec §6's "Configuration surface" that the session core
// itself owns (protocolVersions, requestTimeout); serverInfo/clientInfo
// and capabilities live one layer up, on server.Options/client.Options,
// since the session has no opinion on identity or capability content.
type Options struct {
	// ProtocolVersions is the ordered, most-preferred-first list of
	// protocol revisions this peer will negotiate. Empty defaults to
	// protocol.DefaultProtocolVersions. Per spec §9's open-question
	// guidance, this is a table the handshake consults rather than a
	// single hardcoded version with conditional branches.
	ProtocolVersions []string
	// RequestTimeout is the default deadline applied to Call when the
	// caller's ctx carries no deadline of its own. Zero means no default
	// -- a Call with a bare context.Background() then blocks until its
	// reply, cancellation, or session close.
	RequestTimeout time.Duration
}

// New wraps t in a Session. The caller must set a RequestHandler (via
// SetRequestHandler) before calling Run if it expects to receive requests
// at all -- a session with none replies -32601 to every inbound request.
// opts is variadic so existing zero-configuration callers are unaffected;
// passing more than one Options is a programmer error and only the first
// is used.
func New(t transport.Transport, opts ...Options) *Session {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	versions := o.ProtocolVersions
	if len(versions) == 0 {
		versions = protocol.DefaultProtocolVersions
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		t:                t,
		outstanding:      make(map[any]*pendingCall),
		inFlight:         make(map[any]context.CancelFunc),
		notifiers:        make(map[string]NotificationHandler),
		baseCtx:          ctx,
		baseCancel:       cancel,
		closed:           make(chan struct{}),
		protocolVersions: versions,
		requestTimeout:   o.RequestTimeout,
	}
}

// ProtocolVersions returns the ordered list of protocol revisions this
// session will negotiate, most-preferred first.
func (s *Session) ProtocolVersions() []string {
	return append([]string(nil), s.protocolVersions...)
}

// RequestTimeout returns the configured default deadline for Call, or
// zero if none was configured.
func (s *Session) RequestTimeout() time.Duration { return s.requestTimeout }

func (s *Session) SetRequestHandler(h RequestHandler) { s.reqHandler = h }

func (s *Session) RegisterNotificationHandler(method string, h NotificationHandler) {
	s.notifMu.Lock()
	defer s.notifMu.Unlock()
	s.notifiers[method] = h
}

func (s *Session) Phase() Phase {
	s.phaseMu.RLock()
	defer s.phaseMu.RUnlock()
	return s.phase
}

func (s *Session) SetPhase(p Phase) {
	s.phaseMu.Lock()
	s.phase = p
	s.phaseMu.Unlock()
}

// SessionID is the multi-session transport's identifier, or "" for stdio.
func (s *Session) SessionID() string { return s.t.SessionID() }

// BaseContext returns the session's long-lived context: it outlives any
// single inbound request and is only cancelled by Close. Handlers that
// spawn work meant to survive the request that started it (e.g. a
// Taskable tool call handed to pkg/tasks) must derive from this instead
// of the per-request ctx passed to RequestHandler, which is cancelled as
// soon as that request's response has been sent.
func (s *Session) BaseContext() context.Context { return s.baseCtx }

// Run drives the inbound loop until the transport closes or ctx is
// cancelled. It is the session's single reader task (spec §5); call it
// from its own goroutine and use Close to tear the session down.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		case <-s.closed:
			return nil
		case msg, ok := <-s.t.Messages():
			if !ok {
				s.Close()
				if err := s.t.Err(); err != nil {
					return err
				}
				return nil
			}
			s.dispatchInbound(msg)
		}
	}
}

func (s *Session) dispatchInbound(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.Response:
		s.deliverReply(m.ID, replyOrError{result: m.Result})
	case *protocol.ErrorMessage:
		s.deliverReply(m.ID, replyOrError{err: m})
	case *protocol.Notification:
		s.handleNotification(m)
	case *protocol.Request:
		s.handleRequest(m)
	}
}

func (s *Session) deliverReply(id protocol.RequestID, re replyOrError) {
	s.mu.Lock()
	pc, ok := s.outstanding[id.Key()]
	if ok {
		delete(s.outstanding, id.Key())
	}
	s.mu.Unlock()
	if !ok {
		logger.Warn("session: dropping reply with no matching outstanding request", id.String())
		return
	}
	pc.resultCh <- re
}

func (s *Session) handleNotification(n *protocol.Notification) {
	if n.Method == protocol.NotificationCancelled {
		var params protocol.CancelledParams
		if err := json.Unmarshal(n.Params, &params); err != nil {
			logger.Warn("session: malformed notifications/cancelled", err)
			return
		}
		s.mu.Lock()
		cancel, ok := s.inFlight[params.RequestID.Key()]
		s.mu.Unlock()
		if ok {
			cancel()
		}
		return
	}

	s.notifMu.RLock()
	h, ok := s.notifiers[n.Method]
	s.notifMu.RUnlock()
	if !ok {
		logger.Debug("session: no handler registered for notification", n.Method)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		h(s.baseCtx, n.Params)
	}()
}

func (s *Session) handleRequest(req *protocol.Request) {
	if s.reqHandler == nil {
		s.sendError(s.baseCtx, req.ID, protocol.ErrMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
		return
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	ctx = protocol.WithInFlightRequestID(ctx, req.ID)
	s.mu.Lock()
	s.inFlight[req.ID.Key()] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, req.ID.Key())
			s.mu.Unlock()
			cancel()
		}()

		result, protoErr, suppress := s.reqHandler(ctx, req)
		if ctx.Err() != nil {
			// Cancelled locally (inbound notifications/cancelled) or the
			// session closed mid-handler: never send a reply.
			return
		}
		if suppress {
			return
		}

		var out protocol.Message
		if protoErr != nil {
			data, _ := json.Marshal(protoErr.Data)
			out = &protocol.ErrorMessage{ID: req.ID, Code: protoErr.Code, Msg: protoErr.Msg, Data: data}
		} else {
			out = &protocol.Response{ID: req.ID, Result: result}
		}
		if err := s.t.Send(ctx, out); err != nil {
			logger.Warn("session: failed to send response", req.Method, err)
		}
	}()
}

func (s *Session) sendError(ctx context.Context, id protocol.RequestID, code int, msg string) {
	err := s.t.Send(ctx, &protocol.ErrorMessage{ID: id, Code: code, Msg: msg})
	if err != nil {
		logger.Warn("session: failed to send error response", err)
	}
}

// Call sends method/params as a Request, allocates a fresh id unique to
// this session, and blocks until a matching Response/Error arrives, ctx
// is done (triggering a local cancel, per spec §4.3), or the session
// closes. The returned json.RawMessage is the Response's Result.
func (s *Session) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if s.requestTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
			defer cancel()
		}
	}

	id := protocol.NewIntID(atomic.AddInt64(&s.nextID, 1))

	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("session: marshal params for %s: %w", method, err)
		}
		raw = b
	}

	pc := &pendingCall{resultCh: make(chan replyOrError, 1)}
	s.mu.Lock()
	s.outstanding[id.Key()] = pc
	s.mu.Unlock()

	req := &protocol.Request{ID: id, Method: method, Params: raw}
	if err := s.t.Send(ctx, req); err != nil {
		s.mu.Lock()
		delete(s.outstanding, id.Key())
		s.mu.Unlock()
		return nil, fmt.Errorf("session: send %s: %w", method, err)
	}

	select {
	case re := <-pc.resultCh:
		if re.err != nil {
			return nil, re.err
		}
		return re.result, nil
	case <-ctx.Done():
		s.cancelOutbound(id, "context cancelled")
		return nil, fmt.Errorf("session: request %s (%s) cancelled: %w", method, id.String(), ctx.Err())
	case <-s.closed:
		return nil, fmt.Errorf("session: closed while awaiting reply to %s", method)
	}
}

// cancelOutbound implements a local cancel of an outbound request: send
// notifications/cancelled once, drop the pending slot so a late reply is
// dropped rather than delivered (idempotent with respect to further
// cancels, since the slot is already gone).
func (s *Session) cancelOutbound(id protocol.RequestID, reason string) {
	s.mu.Lock()
	_, ok := s.outstanding[id.Key()]
	delete(s.outstanding, id.Key())
	s.mu.Unlock()
	if !ok {
		return
	}
	notif := &protocol.Notification{
		Method: protocol.NotificationCancelled,
	}
	params := protocol.CancelledParams{RequestID: id, Reason: reason}
	raw, err := json.Marshal(params)
	if err != nil {
		logger.Warn("session: failed to marshal cancelled params", err)
		return
	}
	notif.Params = raw
	if err := s.t.Send(context.Background(), notif); err != nil {
		logger.Warn("session: failed to send notifications/cancelled", err)
	}
}

// Notify sends a fire-and-forget Notification; it is never correlated
// and never receives a reply.
func (s *Session) Notify(ctx context.Context, method string, params any) error {
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("session: marshal params for %s: %w", method, err)
		}
		raw = b
	}
	return s.t.Send(ctx, &protocol.Notification{Method: method, Params: raw})
}

// Close cancels all in-flight inbound handlers, fails all outstanding
// outbound requests with a session-closed error, and disposes the
// transport. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.SetPhase(PhaseClosed)
		close(s.closed)
		s.baseCancel()

		s.mu.Lock()
		for _, cancel := range s.inFlight {
			cancel()
		}
		for id, pc := range s.outstanding {
			pc.resultCh <- replyOrError{err: &protocol.ErrorMessage{
				Code: protocol.ErrInternal,
				Msg:  "session closed",
			}}
			delete(s.outstanding, id)
		}
		s.mu.Unlock()

		s.t.Close()
		s.wg.Wait()
	})
	return nil
}

// Done reports whether Close has run.
func (s *Session) Done() <-chan struct{} { return s.closed }
