// Package server implements the server side of an MCP session: the
// initialize handshake, capability-gated method dispatch, and the
// registries (tools, prompts, resources, tasks) that back it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/prompts"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/resources"
	"github.com/richard-senior/mcp/pkg/session"
	"github.com/richard-senior/mcp/pkg/tasks"
	"github.com/richard-senior/mcp/pkg/tools"
	"github.com/richard-senior/mcp/pkg/transport"
	"github.com/richard-senior/mcp/pkg/util"
)

// Options configures a Server at construction time. There is no config
// file beyond the ~/.mcp directory conventions pkg/prompts and
// util.NewSQLite apply on their own.
type Options struct {
	Implementation protocol.Implementation
	Instructions   string
	// SQLitePath overrides the sqlite file backing resource subscriptions;
	// empty defaults to ~/.mcp/mcp.db.
	SQLitePath string
	// ProtocolVersions and RequestTimeout are spec §6's "Configuration
	// surface" entries the session core owns; empty/zero take
	// session.Options' own defaults.
	ProtocolVersions []string
	RequestTimeout   time.Duration
}

// methodFunc is one entry in the dispatch table: it receives the raw JSON
// params and decodes them itself; its capability gate has already been
// checked by the time it runs.
type methodFunc func(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError)

// Server wraps a *session.Session with the server half of the MCP
// handshake and its method dispatch table.
type Server struct {
	sess *session.Session
	impl protocol.Implementation
	instructions string

	handlers map[string]methodFunc

	mu         sync.RWMutex
	caps       protocol.ServerCapabilities
	remoteCaps protocol.ClientCapabilities
	remoteImpl protocol.Implementation
	negotiated string

	toolsMu  sync.RWMutex
	toolOrd  []string
	toolTbl  map[string]tools.Registration

	prompts   *prompts.Registry
	resources *resources.Registry
	subs      *resources.SubscriptionStore
	taskMgr   *tasks.Manager
	db        *util.SQLiteClient

	taskResourceMu sync.RWMutex
	taskResource   string

	logLevel protocol.LogLevel
}

// New wires a Server around t: default registries, default tools, and the
// method dispatch table are all populated before it returns. Call Start to
// begin serving.
func New(t transport.Transport, opts Options) (*Server, error) {
	db, err := util.NewSQLite(opts.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("server: failed to open sqlite store: %w", err)
	}
	subs, err := resources.NewSubscriptionStore(db)
	if err != nil {
		return nil, fmt.Errorf("server: failed to init subscription store: %w", err)
	}

	s := &Server{
		sess: session.New(t, session.Options{
			ProtocolVersions: opts.ProtocolVersions,
			RequestTimeout:   opts.RequestTimeout,
		}),
		impl:     opts.Implementation,
		instructions: opts.Instructions,
		handlers: make(map[string]methodFunc),
		toolTbl:  make(map[string]tools.Registration),
		prompts:   prompts.NewRegistry(),
		resources: resources.NewRegistry(),
		subs:      subs,
		taskMgr:   tasks.NewManager(),
		db:        db,
		logLevel:  protocol.LogInfo,
		caps: protocol.ServerCapabilities{
			Logging:     &protocol.LoggingCapability{},
			Prompts:     &protocol.PromptsCapability{},
			Resources:   &protocol.ResourcesCapability{Subscribe: true},
			Tools:       &protocol.ToolsCapability{},
			Completions: &protocol.CompletionsCapability{},
			Tasks:       &protocol.TasksCapability{List: true, Cancel: true},
		},
	}

	s.registerDefaultResources()
	for _, reg := range tools.Default() {
		s.RegisterTool(reg)
	}

	s.handlers[protocol.MethodToolsList] = s.handleToolsList
	s.handlers[protocol.MethodToolsCall] = s.handleToolsCall
	s.handlers[protocol.MethodPromptsList] = s.handlePromptsList
	s.handlers[protocol.MethodPromptsGet] = s.handlePromptsGet
	s.handlers[protocol.MethodResourcesList] = s.handleResourcesList
	s.handlers[protocol.MethodResourcesTemplatesList] = s.handleResourceTemplatesList
	s.handlers[protocol.MethodResourcesRead] = s.handleResourcesRead
	s.handlers[protocol.MethodResourcesSubscribe] = s.handleResourcesSubscribe
	s.handlers[protocol.MethodResourcesUnsubscribe] = s.handleResourcesUnsubscribe
	s.handlers[protocol.MethodCompletionComplete] = s.handleCompletionComplete
	s.handlers[protocol.MethodLoggingSetLevel] = s.handleLoggingSetLevel
	s.handlers[protocol.MethodTasksList] = s.handleTasksList
	s.handlers[protocol.MethodTasksGet] = s.handleTasksGet
	s.handlers[protocol.MethodTasksCancel] = s.handleTasksCancel
	s.handlers[protocol.MethodTasksResult] = s.handleTasksResult

	s.sess.SetRequestHandler(s.dispatch)
	s.sess.RegisterNotificationHandler(protocol.NotificationInitialized, s.handleInitialized)

	return s, nil
}

// Start drives the session until its transport closes or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logger.Info("starting MCP server", s.impl.Name, s.impl.Version)
	return s.sess.Run(ctx)
}

func (s *Server) Close() error {
	if sessID := s.sess.SessionID(); sessID != "" {
		if err := s.subs.UnsubscribeAll(sessID); err != nil {
			logger.Warn("failed to clear subscriptions on close", err)
		}
	}
	closeErr := s.sess.Close()
	if err := s.db.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// SessionID is the transport's multi-session identifier, or "" for stdio.
func (s *Server) SessionID() string { return s.sess.SessionID() }

// dispatch is the session.RequestHandler every inbound Request flows
// through: it special-cases initialize and ping, enforces the handshake
// state machine and capability gates, then hands off to the method table.
func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (json.RawMessage, *protocol.ProtocolError, bool) {
	switch req.Method {
	case protocol.MethodInitialize:
		result, perr := s.handleInitialize(ctx, req.Params)
		return result, perr, false
	case protocol.MethodPing:
		return json.RawMessage(`{}`), nil, false
	}

	if s.sess.Phase() != session.PhaseReady {
		return nil, protocol.NewProtocolError(protocol.ErrServerNotInit, "server not initialized"), false
	}

	s.mu.RLock()
	caps := s.caps
	s.mu.RUnlock()
	if gated, ok := protocol.ServerMethodGated(req.Method, &caps); gated && !ok {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+req.Method), false
	}

	handler, found := s.handlers[req.Method]
	if !found {
		return nil, protocol.NewProtocolError(protocol.ErrMethodNotFound, "method not found: "+req.Method), false
	}

	result, perr := handler(ctx, req.Params)
	return result, perr, false
}

// encode marshals v for a methodFunc's return, translating a marshal
// failure into the ProtocolError shape dispatch expects rather than a
// bare error.
func encode(v any) (json.RawMessage, *protocol.ProtocolError) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to encode result: "+err.Error())
	}
	return data, nil
}

func (s *Server) registerDefaultResources() {
	s.resources.Register(protocol.Resource{
		URI:         "mcp://example/documentation",
		Name:        "example_documentation",
		Description: "Example documentation resource for MCP",
		MimeType:    "text/markdown",
	}, func(uri string) (*protocol.ReadResourceResult, error) {
		text := "# MCP Documentation\n\nThis is example documentation for the Model Context Protocol."
		return &protocol.ReadResourceResult{
			Contents: []protocol.ResourceContents{
				&protocol.TextResourceContents{URI: uri, MimeType: "text/markdown", Text: text},
			},
		}, nil
	})

	s.taskResourceMu.Lock()
	s.taskResource = "no task has completed yet"
	s.taskResourceMu.Unlock()
	s.resources.Register(protocol.Resource{
		URI:         taskResourceURI,
		Name:        "last_task_result",
		Description: "Outcome of the most recently finished Taskable tool call",
		MimeType:    "text/plain",
	}, func(uri string) (*protocol.ReadResourceResult, error) {
		s.taskResourceMu.RLock()
		text := s.taskResource
		s.taskResourceMu.RUnlock()
		return &protocol.ReadResourceResult{
			Contents: []protocol.ResourceContents{
				&protocol.TextResourceContents{URI: uri, MimeType: "text/plain", Text: text},
			},
		}, nil
	})
}
