package protocol

// ClientCapabilities is advertised by the client during initialize.
// Presence of a sub-capability struct (even empty) signals support; its
// absence (nil) means the client does not implement that area at all, as
// opposed to implementing it with no sub-features, which is represented by
// a zero-value non-nil struct.
type ClientCapabilities struct {
	Roots        *RootsCapability        `json:"roots,omitempty"`
	Sampling     *SamplingCapability     `json:"sampling,omitempty"`
	Elicitation  *ElicitationCapability  `json:"elicitation,omitempty"`
	Tasks        *TasksCapability        `json:"tasks,omitempty"`
	Experimental map[string]any          `json:"experimental,omitempty"`
}

type RootsCapability struct {
	// ListChanged indicates the client will emit notifications/roots/list_changed.
	ListChanged bool `json:"listChanged,omitempty"`
}

type SamplingCapability struct{}

// ElicitationCapability sub-gates which elicitation front-ends the client
// supports: a plain form-based UI, a URL-based out-of-band flow, or both.
type ElicitationCapability struct {
	Form bool `json:"form,omitempty"`
	URL  bool `json:"url,omitempty"`
}

type TasksCapability struct {
	List   bool `json:"list,omitempty"`
	Cancel bool `json:"cancel,omitempty"`
}

// ServerCapabilities is advertised by the server during initialize.
type ServerCapabilities struct {
	Logging      *LoggingCapability     `json:"logging,omitempty"`
	Prompts      *PromptsCapability     `json:"prompts,omitempty"`
	Resources    *ResourcesCapability   `json:"resources,omitempty"`
	Tools        *ToolsCapability       `json:"tools,omitempty"`
	Completions  *CompletionsCapability `json:"completions,omitempty"`
	Tasks        *TasksCapability       `json:"tasks,omitempty"`
	Experimental map[string]any         `json:"experimental,omitempty"`
}

type LoggingCapability struct{}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type CompletionsCapability struct{}

// HasRoots reports whether the client advertised the roots capability, the
// single place gating logic should ask this question rather than
// dereferencing ClientCapabilities.Roots directly.
func (c *ClientCapabilities) HasRoots() bool       { return c != nil && c.Roots != nil }
func (c *ClientCapabilities) HasSampling() bool    { return c != nil && c.Sampling != nil }
func (c *ClientCapabilities) HasElicitation() bool { return c != nil && c.Elicitation != nil }
func (c *ClientCapabilities) HasTasks() bool       { return c != nil && c.Tasks != nil }

// ElicitationSupports reports whether the client's elicitation
// sub-capability covers the given front-end ("form" or "url"). A blank
// elicitation capability (neither Form nor URL set) defaults to form-only,
// for backward compatibility with protocol revisions that predate the url
// mode and only ever advertised a bare "elicitation": {} (spec §4.4).
func (c *ClientCapabilities) ElicitationSupports(form, url bool) bool {
	if !c.HasElicitation() {
		return false
	}
	blank := !c.Elicitation.Form && !c.Elicitation.URL
	effectiveForm := c.Elicitation.Form || blank
	effectiveURL := c.Elicitation.URL
	if form && !effectiveForm {
		return false
	}
	if url && !effectiveURL {
		return false
	}
	return true
}

func (c *ServerCapabilities) HasLogging() bool     { return c != nil && c.Logging != nil }
func (c *ServerCapabilities) HasPrompts() bool      { return c != nil && c.Prompts != nil }
func (c *ServerCapabilities) HasResources() bool    { return c != nil && c.Resources != nil }
func (c *ServerCapabilities) HasTools() bool        { return c != nil && c.Tools != nil }
func (c *ServerCapabilities) HasCompletions() bool  { return c != nil && c.Completions != nil }
func (c *ServerCapabilities) HasTasks() bool        { return c != nil && c.Tasks != nil }
func (c *ServerCapabilities) ResourcesSubscribable() bool {
	return c.HasResources() && c.Resources.Subscribe
}
