package server

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/session"
)

// handleInitialize runs the server side of the handshake: it rejects a
// second initialize, negotiates a protocol version, records the client's
// capabilities and implementation, and moves the session to
// PhaseAwaitingAck. Phase only reaches PhaseReady once the client's
// notifications/initialized arrives (handleInitialized).
func (s *Server) handleInitialize(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	if s.sess.Phase() != session.PhaseNew {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidRequest, "server already initialized")
	}
	s.sess.SetPhase(session.PhaseInitializing)

	var params protocol.InitializeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid initialize params: "+err.Error())
	}

	version := protocol.NegotiateVersion(params.ProtocolVersion, s.sess.ProtocolVersions())
	if version != params.ProtocolVersion {
		logger.Warn("client requested unsupported protocol version, negotiating", params.ProtocolVersion, version)
	}

	s.mu.Lock()
	s.remoteCaps = params.Capabilities
	s.remoteImpl = params.ClientInfo
	s.negotiated = version
	caps := s.caps
	s.mu.Unlock()

	logger.Info("initialize from client", params.ClientInfo.Name, params.ClientInfo.Version)
	s.sess.SetPhase(session.PhaseAwaitingAck)

	result := &protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    caps,
		ServerInfo:      s.impl,
		Instructions:    s.instructions,
	}
	return encode(result)
}

// handleInitialized completes the handshake once the client acknowledges
// the negotiated capabilities; any request arriving before this closes the
// dispatch table (ErrServerNotInit).
func (s *Server) handleInitialized(ctx context.Context, raw json.RawMessage) {
	if s.sess.Phase() != session.PhaseAwaitingAck {
		logger.Warn("notifications/initialized received outside handshake, ignoring")
		return
	}
	s.sess.SetPhase(session.PhaseReady)
	logger.Info("session ready", s.remoteImpl.Name)
}
