package server

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/mcp/pkg/protocol"
)

func (s *Server) handleTasksList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	return encode(&protocol.ListTasksResult{Tasks: s.taskMgr.List()})
}

func (s *Server) handleTasksGet(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.GetTaskParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	task, ok := s.taskMgr.Get(params.TaskID)
	if !ok {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unknown task: "+params.TaskID)
	}
	return encode(&task)
}

func (s *Server) handleTasksCancel(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.CancelTaskParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	if !s.taskMgr.Cancel(params.TaskID) {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unknown task: "+params.TaskID)
	}
	task, _ := s.taskMgr.Get(params.TaskID)
	return encode(&task)
}

func (s *Server) handleTasksResult(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.GetTaskResultParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	result, perr, ok := s.taskMgr.Result(params.TaskID)
	if !ok {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "task not completed: "+params.TaskID)
	}
	if perr != nil {
		return nil, perr
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to encode task result: "+err.Error())
	}
	return encode(&protocol.TaskResult{Result: data})
}
