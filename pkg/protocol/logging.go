package protocol

// LogLevel mirrors the RFC 5424 syslog severities MCP's logging/setLevel
// and notifications/message use.
type LogLevel string

const (
	LogDebug     LogLevel = "debug"
	LogInfo      LogLevel = "info"
	LogNotice    LogLevel = "notice"
	LogWarning   LogLevel = "warning"
	LogError     LogLevel = "error"
	LogCritical  LogLevel = "critical"
	LogAlert     LogLevel = "alert"
	LogEmergency LogLevel = "emergency"
)

// logLevelOrder ranks severities so a session can compare an incoming
// message's level against the level most recently set via setLevel.
var logLevelOrder = map[LogLevel]int{
	LogDebug: 0, LogInfo: 1, LogNotice: 2, LogWarning: 3,
	LogError: 4, LogCritical: 5, LogAlert: 6, LogEmergency: 7,
}

// AtLeast reports whether l is at least as severe as min.
func (l LogLevel) AtLeast(min LogLevel) bool {
	return logLevelOrder[l] >= logLevelOrder[min]
}

type SetLevelParams struct {
	Level LogLevel `json:"level"`
	Meta  *Meta    `json:"_meta,omitempty"`
}

func (p *SetLevelParams) GetMeta() *Meta { return p.Meta }

// LogMessageParams is the payload of notifications/message.
type LogMessageParams struct {
	Level  LogLevel    `json:"level"`
	Logger string      `json:"logger,omitempty"`
	Data   interface{} `json:"data"`
	Meta   *Meta       `json:"_meta,omitempty"`
}

func (p *LogMessageParams) GetMeta() *Meta { return p.Meta }
