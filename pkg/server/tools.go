package server

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/tools"
)

// RegisterTool adds reg to the tools table, replacing any existing
// registration under the same name. Order of first registration is
// preserved in tools/list.
func (s *Server) RegisterTool(reg tools.Registration) {
	s.toolsMu.Lock()
	defer s.toolsMu.Unlock()
	if _, exists := s.toolTbl[reg.Tool.Name]; !exists {
		s.toolOrd = append(s.toolOrd, reg.Tool.Name)
	}
	s.toolTbl[reg.Tool.Name] = reg
}

func (s *Server) handleToolsList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()
	list := make([]protocol.Tool, 0, len(s.toolOrd))
	for _, name := range s.toolOrd {
		list = append(list, s.toolTbl[name].Tool)
	}
	return encode(&protocol.ListToolsResult{Tools: list})
}

func (s *Server) handleToolsCall(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}

	s.toolsMu.RLock()
	reg, found := s.toolTbl[params.Name]
	s.toolsMu.RUnlock()
	if !found {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unknown tool: "+params.Name)
	}

	if reg.Taskable {
		// Taskable work must outlive the tools/call request that launched
		// it -- the inbound ctx is cancelled the moment this handler
		// returns its synchronous reply (session.go's handleRequest defers
		// cancel() right after reqHandler returns), so starting the task
		// from it would kill the work before it has a chance to run.
		task := s.taskMgr.Start(s.sess.BaseContext(), func(taskCtx context.Context) (any, *protocol.ProtocolError) {
			result, perr := reg.Handler(taskCtx, params.Arguments)
			s.recordTaskOutcome(s.sess.BaseContext(), params.Name, result, perr)
			return result, perr
		})
		logger.Debug("tool call dispatched as task", params.Name, task.TaskID)
		return encode(&task)
	}

	result, perr := reg.Handler(ctx, params.Arguments)
	if perr != nil {
		return nil, perr
	}
	return encode(result)
}
