package protocol

// Method names for every request and notification this runtime dispatches,
// per the inventory in spec §4.5.
const (
	MethodInitialize = "initialize"

	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"

	MethodPromptsList = "prompts/list"
	MethodPromptsGet  = "prompts/get"

	MethodResourcesList          = "resources/list"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesRead          = "resources/read"
	MethodResourcesSubscribe     = "resources/subscribe"
	MethodResourcesUnsubscribe   = "resources/unsubscribe"

	MethodCompletionComplete = "completion/complete"

	MethodLoggingSetLevel = "logging/setLevel"

	MethodSamplingCreateMessage = "sampling/createMessage"

	MethodElicitationCreate = "elicitation/create"

	MethodRootsList = "roots/list"

	MethodTasksList   = "tasks/list"
	MethodTasksGet    = "tasks/get"
	MethodTasksCancel = "tasks/cancel"
	MethodTasksResult = "tasks/result"

	MethodPing = "ping"

	NotificationInitialized         = "notifications/initialized"
	NotificationCancelled           = "notifications/cancelled"
	NotificationProgress            = "notifications/progress"
	NotificationMessage             = "notifications/message"
	NotificationToolsListChanged    = "notifications/tools/list_changed"
	NotificationPromptsListChanged  = "notifications/prompts/list_changed"
	NotificationResourcesListChanged = "notifications/resources/list_changed"
	NotificationResourcesUpdated    = "notifications/resources/updated"
	NotificationRootsListChanged    = "notifications/roots/list_changed"
	NotificationTasksStatus         = "notifications/tasks/status"
)

// serverCapabilityGates and clientCapabilityGates name, for each
// capability-gated method, which side must advertise which capability
// before the method is callable. Calling a gated method against a peer that
// never advertised it fails with ErrMethodNotFound (-32601, JSON-RPC's own
// "method not found", since an unadvertised method simply doesn't exist
// from the caller's perspective)
// rather than a generic internal error.
var serverCapabilityGates = map[string]func(*ServerCapabilities) bool{
	MethodToolsList:              (*ServerCapabilities).HasTools,
	MethodToolsCall:              (*ServerCapabilities).HasTools,
	MethodPromptsList:            (*ServerCapabilities).HasPrompts,
	MethodPromptsGet:             (*ServerCapabilities).HasPrompts,
	MethodResourcesList:          (*ServerCapabilities).HasResources,
	MethodResourcesTemplatesList: (*ServerCapabilities).HasResources,
	MethodResourcesRead:          (*ServerCapabilities).HasResources,
	MethodResourcesSubscribe:     (*ServerCapabilities).ResourcesSubscribable,
	MethodResourcesUnsubscribe:   (*ServerCapabilities).ResourcesSubscribable,
	MethodCompletionComplete:     (*ServerCapabilities).HasCompletions,
	MethodLoggingSetLevel:        (*ServerCapabilities).HasLogging,
	MethodTasksList:              (*ServerCapabilities).HasTasks,
	MethodTasksGet:               (*ServerCapabilities).HasTasks,
	MethodTasksCancel:            (*ServerCapabilities).HasTasks,
	MethodTasksResult:            (*ServerCapabilities).HasTasks,
}

var clientCapabilityGates = map[string]func(*ClientCapabilities) bool{
	MethodSamplingCreateMessage: (*ClientCapabilities).HasSampling,
	MethodElicitationCreate:     (*ClientCapabilities).HasElicitation,
	MethodRootsList:             (*ClientCapabilities).HasRoots,
}

// ServerMethodGated reports whether method is gated on a server capability,
// and if so whether caps satisfies it.
func ServerMethodGated(method string, caps *ServerCapabilities) (gated, ok bool) {
	gate, gated := serverCapabilityGates[method]
	if !gated {
		return false, true
	}
	return true, gate(caps)
}

// ClientMethodGated reports whether method is gated on a client capability,
// and if so whether caps satisfies it.
func ClientMethodGated(method string, caps *ClientCapabilities) (gated, ok bool) {
	gate, gated := clientCapabilityGates[method]
	if !gated {
		return false, true
	}
	return true, gate(caps)
}
