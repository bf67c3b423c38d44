package server

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// logLevelMap translates the RFC 5424 levels MCP uses into the internal
// logger's own scale, so logging/setLevel can drive the same logger every
// other package already writes through.
var logLevelMap = map[protocol.LogLevel]logger.LogLevel{
	protocol.LogDebug:     logger.DEBUG,
	protocol.LogInfo:      logger.INFO,
	protocol.LogNotice:    logger.INFO,
	protocol.LogWarning:   logger.WARN,
	protocol.LogError:     logger.ERROR,
	protocol.LogCritical:  logger.ERROR,
	protocol.LogAlert:     logger.ERROR,
	protocol.LogEmergency: logger.ERROR,
}

func (s *Server) handleLoggingSetLevel(ctx context.Context, raw json.RawMessage) (json.RawMessage, *protocol.ProtocolError) {
	var params protocol.SetLevelParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid params: "+err.Error())
	}
	level, known := logLevelMap[params.Level]
	if !known {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "unknown log level: "+string(params.Level))
	}

	s.mu.Lock()
	s.logLevel = params.Level
	s.mu.Unlock()
	logger.SetLevel(level)

	return encode(struct{}{})
}

// LogMessage forwards a notifications/message to the client if msgLevel
// meets the level most recently set via logging/setLevel.
func (s *Server) LogMessage(ctx context.Context, msgLevel protocol.LogLevel, loggerName string, data any) error {
	s.mu.RLock()
	threshold := s.logLevel
	s.mu.RUnlock()
	if !msgLevel.AtLeast(threshold) {
		return nil
	}
	return s.sess.Notify(ctx, protocol.NotificationMessage, &protocol.LogMessageParams{
		Level: msgLevel, Logger: loggerName, Data: data,
	})
}
