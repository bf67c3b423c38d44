package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richard-senior/mcp/pkg/protocol"
)

// These helpers issue the three server->client requests MCP defines
// (sampling, elicitation, roots). Each checks the client's capability,
// learned during the handshake, before sending rather than leaving the
// rejection to the client: a server that never receives a sampling
// capability has no business asking, and failing fast locally avoids a
// round trip that could only ever come back as method-not-found.

func (s *Server) remoteCapabilities() protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteCaps
}

// Sample asks the client's LLM to complete a message. Callers are
// typically tool handlers that need the model's help mid-execution.
func (s *Server) Sample(ctx context.Context, params *protocol.CreateMessageParams) (*protocol.CreateMessageResult, error) {
	caps := s.remoteCapabilities()
	if gated, ok := protocol.ClientMethodGated(protocol.MethodSamplingCreateMessage, &caps); gated && !ok {
		return nil, fmt.Errorf("server: client did not advertise sampling capability")
	}
	raw, err := s.sess.Call(ctx, protocol.MethodSamplingCreateMessage, params)
	if err != nil {
		return nil, err
	}
	var result protocol.CreateMessageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("server: decoding sampling result: %w", err)
	}
	return &result, nil
}

// Elicit asks the client to collect a small structured form, or consent to
// navigate to a URL, from its user. It fails locally rather than round
// tripping when the client's capability record rules out the requested
// front-end (spec §4.4, §8 scenario 5): a client advertising only "form"
// never receives a URL-mode request, and vice versa.
func (s *Server) Elicit(ctx context.Context, params *protocol.ElicitParams) (*protocol.ElicitResult, error) {
	caps := s.remoteCapabilities()
	if gated, ok := protocol.ClientMethodGated(protocol.MethodElicitationCreate, &caps); gated && !ok {
		return nil, fmt.Errorf("server: client did not advertise elicitation capability")
	}
	if params.IsURLMode() && !caps.ElicitationSupports(false, true) {
		return nil, fmt.Errorf("server: client does not support URL mode elicitation requests")
	}
	if !params.IsURLMode() && !caps.ElicitationSupports(true, false) {
		return nil, fmt.Errorf("server: client does not support form mode elicitation requests")
	}
	raw, err := s.sess.Call(ctx, protocol.MethodElicitationCreate, params)
	if err != nil {
		return nil, err
	}
	var result protocol.ElicitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("server: decoding elicitation result: %w", err)
	}
	return &result, nil
}

// ListRoots asks the client which filesystem/URI roots it exposes.
func (s *Server) ListRoots(ctx context.Context) ([]protocol.Root, error) {
	caps := s.remoteCapabilities()
	if gated, ok := protocol.ClientMethodGated(protocol.MethodRootsList, &caps); gated && !ok {
		return nil, fmt.Errorf("server: client did not advertise roots capability")
	}
	raw, err := s.sess.Call(ctx, protocol.MethodRootsList, &protocol.ListRootsParams{})
	if err != nil {
		return nil, err
	}
	var result protocol.ListRootsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("server: decoding roots result: %w", err)
	}
	return result.Roots, nil
}
