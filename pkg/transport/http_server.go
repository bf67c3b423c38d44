package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// SessionIDHeader is the header carrying the Mcp-Session-Id, both in the
// server's reply to the first POST and as an echo on subsequent requests
// (spec §4.2, §6).
const SessionIDHeader = "Mcp-Session-Id"

// StreamableHTTPServer is an http.Handler implementing the MCP
// "streamable HTTP" transport: POST <base> multiplexes request bodies,
// single-JSON or SSE-streamed replies, and GET <base> opens a long-lived
// SSE channel per session for out-of-band server->client traffic (spec
// §4.2, §6). It owns the map of live sessions; OnSession is invoked once
// per freshly minted Mcp-Session-Id so the caller (pkg/server) can spin
// up a session.Session bound to the returned Transport.
type StreamableHTTPServer struct {
	mu       sync.RWMutex
	sessions map[string]*httpServerTransport

	// OnSession is called synchronously the moment a new session is
	// created (on any POST without an Mcp-Session-Id), before that POST
	// is allowed to proceed to waiting on a reply. Typically wires up
	// session.New + server dispatch in a goroutine.
	OnSession func(Transport)
}

func NewStreamableHTTPServer() *StreamableHTTPServer {
	return &StreamableHTTPServer{sessions: make(map[string]*httpServerTransport)}
}

func (s *StreamableHTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		s.handleGet(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *StreamableHTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	msg, err := protocol.DecodeMessage(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessionID := r.Header.Get(SessionIDHeader)
	var sess *httpServerTransport
	if sessionID == "" {
		sessionID = uuid.NewString()
		sess = newHTTPServerTransport(sessionID)
		s.mu.Lock()
		s.sessions[sessionID] = sess
		s.mu.Unlock()
		w.Header().Set(SessionIDHeader, sessionID)
		if s.OnSession != nil {
			s.OnSession(sess)
		}
	} else {
		s.mu.RLock()
		sess = s.sessions[sessionID]
		s.mu.RUnlock()
		if sess == nil {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
	}

	req, isRequest := msg.(*protocol.Request)
	if !isRequest {
		// Notifications and client replies to server-initiated requests
		// get no HTTP body reply; hand them to the session and return.
		if !sess.deliverInbound(r.Context(), msg) {
			http.Error(w, "session closed", http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	sink := sess.registerPending(req.ID)
	defer sess.unregisterPending(req.ID)

	if !sess.deliverInbound(r.Context(), msg) {
		http.Error(w, "session closed", http.StatusGone)
		return
	}

	s.streamReply(w, r, req.ID, sink)
}

// streamReply waits for frames tagged with reqID. The first frame decides
// the mode: if it is itself the terminal Response/Error, a single
// application/json body is written; otherwise the connection switches to
// text/event-stream and every subsequent frame (progress notifications,
// nested server->client requests the handler issued reentrantly) is
// written as an SSE "message" event until the terminal frame closes the
// stream, per spec §4.2.
func (s *StreamableHTTPServer) streamReply(w http.ResponseWriter, r *http.Request, reqID protocol.RequestID, sink <-chan protocol.Message) {
	var flusher http.Flusher
	sseStarted := false

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-sink:
			if !ok {
				return
			}
			terminal := isTerminalFor(frame, reqID)
			if !sseStarted && terminal {
				w.Header().Set("Content-Type", "application/json")
				data, err := protocol.EncodeMessage(frame)
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				w.Write(data)
				return
			}
			if !sseStarted {
				sseStarted = true
				w.Header().Set("Content-Type", "text/event-stream")
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Connection", "keep-alive")
				w.WriteHeader(http.StatusOK)
				if f, ok := w.(http.Flusher); ok {
					flusher = f
				}
			}
			writeSSEFrame(w, frame)
			if flusher != nil {
				flusher.Flush()
			}
			if terminal {
				return
			}
		}
	}
}

func isTerminalFor(msg protocol.Message, id protocol.RequestID) bool {
	switch m := msg.(type) {
	case *protocol.Response:
		return m.ID.Equal(id)
	case *protocol.ErrorMessage:
		return m.ID.Equal(id)
	default:
		return false
	}
}

func writeSSEFrame(w io.Writer, msg protocol.Message) {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		logger.Warn("http transport: failed to encode SSE frame", err)
		return
	}
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
}

func (s *StreamableHTTPServer) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionIDHeader)
	s.mu.RLock()
	sess := s.sessions[sessionID]
	s.mu.RUnlock()
	if sess == nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, unsubscribe := sess.subscribeOutOfBand()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeSSEFrame(w, msg)
			flusher.Flush()
		}
	}
}

// CloseSession tears down a session's transport and removes it from the
// server's table. Safe to call from request handling code once a client
// signals it is done.
func (s *StreamableHTTPServer) CloseSession(id string) {
	s.mu.Lock()
	sess := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

// httpServerTransport is the Transport implementation handed to
// session.New for one Mcp-Session-Id. Inbound messages arrive via
// deliverInbound (called by the POST handler); outbound messages are
// routed by Send to whichever open POST is waiting on the originating
// request id (threaded through ctx by protocol.WithInFlightRequestID), or
// broadcast to GET subscribers otherwise.
type httpServerTransport struct {
	id   string
	msgs chan protocol.Message

	mu      sync.Mutex
	pending map[any]chan protocol.Message
	oob     []chan protocol.Message

	closeOnce sync.Once
	closed    chan struct{}
	err       error
	errMu     sync.Mutex
}

func newHTTPServerTransport(id string) *httpServerTransport {
	return &httpServerTransport{
		id:      id,
		msgs:    make(chan protocol.Message, 64),
		pending: make(map[any]chan protocol.Message),
		closed:  make(chan struct{}),
	}
}

func (t *httpServerTransport) Messages() <-chan protocol.Message { return t.msgs }

func (t *httpServerTransport) deliverInbound(ctx context.Context, msg protocol.Message) bool {
	select {
	case <-t.closed:
		return false
	default:
	}
	select {
	case t.msgs <- msg:
		return true
	case <-t.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

func (t *httpServerTransport) registerPending(id protocol.RequestID) <-chan protocol.Message {
	ch := make(chan protocol.Message, 16)
	t.mu.Lock()
	t.pending[id.Key()] = ch
	t.mu.Unlock()
	return ch
}

func (t *httpServerTransport) unregisterPending(id protocol.RequestID) {
	t.mu.Lock()
	if ch, ok := t.pending[id.Key()]; ok {
		delete(t.pending, id.Key())
		close(ch)
	}
	t.mu.Unlock()
}

func (t *httpServerTransport) subscribeOutOfBand() (<-chan protocol.Message, func()) {
	ch := make(chan protocol.Message, 64)
	t.mu.Lock()
	t.oob = append(t.oob, ch)
	t.mu.Unlock()
	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, c := range t.oob {
			if c == ch {
				t.oob = append(t.oob[:i], t.oob[i+1:]...)
				close(ch)
				return
			}
		}
	}
}

func (t *httpServerTransport) Send(ctx context.Context, msg protocol.Message) error {
	select {
	case <-t.closed:
		return ErrTransportClosed
	default:
	}

	if id, ok := protocol.InFlightRequestIDFromContext(ctx); ok {
		t.mu.Lock()
		ch, found := t.pending[id.Key()]
		t.mu.Unlock()
		if found {
			select {
			case ch <- msg:
				return nil
			case <-time.After(30 * time.Second):
				return fmt.Errorf("http transport: reply stream for request %s not draining", id)
			case <-t.closed:
				return ErrTransportClosed
			}
		}
	}

	// Not scoped to an open POST (or the POST already finished, e.g. the
	// handler kept emitting after its response streamed back): fall back
	// to broadcasting on the session's out-of-band GET stream.
	t.mu.Lock()
	subs := append([]chan protocol.Message(nil), t.oob...)
	t.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-time.After(5 * time.Second):
			logger.Warn("http transport: out-of-band subscriber not draining, dropping frame")
		}
	}
	return nil
}

func (t *httpServerTransport) SessionID() string { return t.id }

func (t *httpServerTransport) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *httpServerTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
		close(t.msgs)
		t.mu.Lock()
		for _, ch := range t.oob {
			close(ch)
		}
		t.oob = nil
		for _, ch := range t.pending {
			close(ch)
		}
		t.pending = nil
		t.mu.Unlock()
	})
	return nil
}

var _ Transport = (*httpServerTransport)(nil)
