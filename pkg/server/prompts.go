package server

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/mcp/pkg/protocol"
)

func (s *Server) handlePromptsList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	list, err := s.prompts.List()
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to list prompts: "+err.Error())
	}
	return encode(&protocol.ListPromptsResult{Prompts: list})
}

func (s *Server) handlePromptsGet(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.GetPromptParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	result, err := s.prompts.Get(params.Name, params.Arguments)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unknown prompt: "+params.Name)
	}
	return encode(result)
}
