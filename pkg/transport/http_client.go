package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// HTTPClientTransport is the client-side counterpart of
// StreamableHTTPServer: each Send POSTs one JSON-RPC message to base and
// feeds whatever comes back (a single JSON reply, or an SSE-streamed
// sequence ending in the reply) into Messages(). Once the server assigns
// an Mcp-Session-Id (on the initialize POST's response), the transport
// opens the long-lived GET SSE channel the server uses to push
// out-of-band requests and notifications, multiplexing both sources onto
// the same Messages() channel (spec §4.2).
type HTTPClientTransport struct {
	base   string
	client *http.Client

	sessionID atomic.Value // string

	msgs      chan protocol.Message
	closed    chan struct{}
	closeOnce sync.Once
	getOnce   sync.Once

	errMu sync.Mutex
	err   error
}

// NewHTTPClientTransport dials a streamable-HTTP MCP server at base
// (e.g. "http://localhost:8080/mcp"). client carries every POST and the
// GET stream; a nil client means http.DefaultClient.
func NewHTTPClientTransport(base string, client *http.Client) *HTTPClientTransport {
	if client == nil {
		client = http.DefaultClient
	}
	t := &HTTPClientTransport{
		base:   base,
		client: client,
		msgs:   make(chan protocol.Message, 64),
		closed: make(chan struct{}),
	}
	t.sessionID.Store("")
	return t
}

func (t *HTTPClientTransport) Messages() <-chan protocol.Message { return t.msgs }

func (t *HTTPClientTransport) Send(ctx context.Context, msg protocol.Message) error {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("http client transport: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("http client transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sid := t.sessionID.Load().(string); sid != "" {
		req.Header.Set(SessionIDHeader, sid)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http client transport: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("http client transport: session not found on server")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http client transport: server returned %d: %s", resp.StatusCode, string(body))
	}

	if sid := resp.Header.Get(SessionIDHeader); sid != "" && t.sessionID.Load().(string) == "" {
		t.sessionID.Store(sid)
		t.startEventStream()
	}

	if resp.StatusCode == http.StatusAccepted || resp.ContentLength == 0 {
		return nil
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("http client transport: read reply: %w", err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		reply, err := protocol.DecodeMessage(body)
		if err != nil {
			return fmt.Errorf("http client transport: decode reply: %w", err)
		}
		t.deliver(reply)
	case strings.HasPrefix(ct, "text/event-stream"):
		t.consumeSSE(resp.Body)
	}
	return nil
}

func (t *HTTPClientTransport) startEventStream() {
	t.getOnce.Do(func() {
		go t.runEventStream()
	})
}

func (t *HTTPClientTransport) runEventStream() {
	req, err := http.NewRequest(http.MethodGet, t.base, nil)
	if err != nil {
		t.fail(fmt.Errorf("http client transport: build GET: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(SessionIDHeader, t.sessionID.Load().(string))

	resp, err := t.client.Do(req)
	if err != nil {
		t.fail(fmt.Errorf("http client transport: GET stream: %w", err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		t.fail(fmt.Errorf("http client transport: GET stream returned %d: %s", resp.StatusCode, string(body)))
		return
	}
	t.consumeSSE(resp.Body)
}

// consumeSSE reads "event:"/"data:" frames separated by blank lines and
// decodes each data payload as one JSON-RPC message.
func (t *HTTPClientTransport) consumeSSE(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var dataLines []string
	flush := func() {
		if len(dataLines) == 0 {
			return
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]
		msg, err := protocol.DecodeMessage([]byte(payload))
		if err != nil {
			logger.Warn("http client transport: dropping unparsable SSE frame", err)
			return
		}
		t.deliver(msg)
	}
	for scanner.Scan() {
		select {
		case <-t.closed:
			return
		default:
		}
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// ignore "event:", "id:", ":" comments and anything else.
		}
	}
	flush()
}

func (t *HTTPClientTransport) deliver(msg protocol.Message) {
	select {
	case t.msgs <- msg:
	case <-t.closed:
	}
}

func (t *HTTPClientTransport) fail(err error) {
	t.errMu.Lock()
	if t.err == nil {
		t.err = err
	}
	t.errMu.Unlock()
	logger.Error("http client transport error", err)
	t.Close()
}

func (t *HTTPClientTransport) SessionID() string { return t.sessionID.Load().(string) }

func (t *HTTPClientTransport) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *HTTPClientTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
		close(t.msgs)
	})
	return nil
}

var _ Transport = (*HTTPClientTransport)(nil)
