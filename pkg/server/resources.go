package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

func (s *Server) handleResourcesList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	return encode(&protocol.ListResourcesResult{Resources: s.resources.List()})
}

func (s *Server) handleResourceTemplatesList(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	return encode(&protocol.ListResourceTemplatesResult{ResourceTemplates: s.resources.Templates()})
}

func (s *Server) handleResourcesRead(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.ReadResourceParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	result, err := s.resources.Read(params.URI)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.CodeResourceNotFound, "resource not found: "+params.URI)
	}
	return encode(result)
}

func (s *Server) handleResourcesSubscribe(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.SubscribeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	if !s.resources.Exists(params.URI) {
		return nil, protocol.NewProtocolError(protocol.CodeResourceNotFound, "resource not found: "+params.URI)
	}
	if err := s.subs.Subscribe(s.sess.SessionID(), params.URI); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to subscribe: "+err.Error())
	}
	logger.Debug("subscribed to resource", params.URI)
	return encode(struct{}{})
}

func (s *Server) handleResourcesUnsubscribe(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.UnsubscribeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	if err := s.subs.Unsubscribe(s.sess.SessionID(), params.URI); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to unsubscribe: "+err.Error())
	}
	return encode(struct{}{})
}

// taskResourceURI names the one mutable default resource: the outcome of
// the most recently finished Taskable tool call. It exists so
// resources/subscribe has a real write path to exercise, instead of the
// capability being advertised with nothing able to trigger it.
const taskResourceURI = "mcp://tasks/last_result"

// recordTaskOutcome updates the last_task_result resource's content and
// calls notifyResourceUpdated for it. Called by handleToolsCall's Taskable wrapper once a task's Run
// returns, whether it succeeded, failed, or was cancelled.
func (s *Server) recordTaskOutcome(ctx context.Context, toolName string, result any, protoErr *protocol.ProtocolError) {
	var text string
	switch {
	case protoErr != nil:
		text = fmt.Sprintf("tool %q failed: %s", toolName, protoErr.Msg)
	default:
		data, err := json.Marshal(result)
		if err != nil {
			text = fmt.Sprintf("tool %q completed (result not serializable: %s)", toolName, err)
		} else {
			text = fmt.Sprintf("tool %q completed: %s", toolName, data)
		}
	}

	s.taskResourceMu.Lock()
	s.taskResource = text
	s.taskResourceMu.Unlock()

	s.notifyResourceUpdated(ctx, taskResourceURI)
}

// notifyResourceUpdated pushes notifications/resources/updated on this
// Server's own session when that session is subscribed to uri. Sessions
// served by other Server values are not notified from here.
func (s *Server) notifyResourceUpdated(ctx context.Context, uri string) {
	self := s.sess.SessionID()
	for _, id := range s.subs.Subscribers(uri) {
		if id != self {
			continue
		}
		if err := s.sess.Notify(ctx, protocol.NotificationResourcesUpdated, &protocol.ResourceUpdatedParams{URI: uri}); err != nil {
			logger.Warn("failed to notify resource update", uri, err)
		}
	}
}
