package protocol

import "encoding/json"

// CreateMessageParams is a server->client request asking the client's LLM
// to sample a completion. Messages carry the ContentBlock union, so the
// type needs custom (un)marshaling the same as CallToolResult.
type CreateMessageParams struct {
	Messages         []SamplingMessage `json:"-"`
	ModelPreferences *ModelPreferences `json:"modelPreferences,omitempty"`
	SystemPrompt     string            `json:"systemPrompt,omitempty"`
	IncludeContext   string            `json:"includeContext,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	MaxTokens        int               `json:"maxTokens"`
	StopSequences    []string          `json:"stopSequences,omitempty"`
	Metadata         json.RawMessage   `json:"metadata,omitempty"`
	Meta             *Meta             `json:"_meta,omitempty"`
}

func (p *CreateMessageParams) GetMeta() *Meta { return p.Meta }

type SamplingMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"-"`
}

type samplingMessageWire struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (m *SamplingMessage) MarshalJSON() ([]byte, error) {
	raw, err := EncodeContentBlock(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(samplingMessageWire{Role: m.Role, Content: raw})
}

func (m *SamplingMessage) UnmarshalJSON(data []byte) error {
	var wire samplingMessageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	cb, err := DecodeContentBlock(wire.Content)
	if err != nil {
		return err
	}
	m.Role = wire.Role
	m.Content = cb
	return nil
}

type createMessageParamsWire struct {
	Messages         []SamplingMessage `json:"messages"`
	ModelPreferences *ModelPreferences `json:"modelPreferences,omitempty"`
	SystemPrompt     string            `json:"systemPrompt,omitempty"`
	IncludeContext   string            `json:"includeContext,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	MaxTokens        int               `json:"maxTokens"`
	StopSequences    []string          `json:"stopSequences,omitempty"`
	Metadata         json.RawMessage   `json:"metadata,omitempty"`
	Meta             *Meta             `json:"_meta,omitempty"`
}

func (p *CreateMessageParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(createMessageParamsWire{
		Messages: p.Messages, ModelPreferences: p.ModelPreferences, SystemPrompt: p.SystemPrompt,
		IncludeContext: p.IncludeContext, Temperature: p.Temperature, MaxTokens: p.MaxTokens,
		StopSequences: p.StopSequences, Metadata: p.Metadata, Meta: p.Meta,
	})
}

func (p *CreateMessageParams) UnmarshalJSON(data []byte) error {
	var wire createMessageParamsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.Messages = wire.Messages
	p.ModelPreferences = wire.ModelPreferences
	p.SystemPrompt = wire.SystemPrompt
	p.IncludeContext = wire.IncludeContext
	p.Temperature = wire.Temperature
	p.MaxTokens = wire.MaxTokens
	p.StopSequences = wire.StopSequences
	p.Metadata = wire.Metadata
	p.Meta = wire.Meta
	return nil
}

// ModelPreferences is a set of hints for model selection; none are binding.
type ModelPreferences struct {
	Hints                []ModelHint `json:"hints,omitempty"`
	CostPriority         *float64    `json:"costPriority,omitempty"`
	SpeedPriority        *float64    `json:"speedPriority,omitempty"`
	IntelligencePriority *float64    `json:"intelligencePriority,omitempty"`
}

type ModelHint struct {
	Name string `json:"name,omitempty"`
}

type CreateMessageResult struct {
	Role       string       `json:"role"`
	Content    ContentBlock `json:"-"`
	Model      string       `json:"model"`
	StopReason string       `json:"stopReason,omitempty"`
	Meta       *Meta        `json:"_meta,omitempty"`
}

func (r *CreateMessageResult) GetMeta() *Meta { return r.Meta }

type createMessageResultWire struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stopReason,omitempty"`
	Meta       *Meta           `json:"_meta,omitempty"`
}

func (r *CreateMessageResult) MarshalJSON() ([]byte, error) {
	raw, err := EncodeContentBlock(r.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(createMessageResultWire{Role: r.Role, Content: raw, Model: r.Model, StopReason: r.StopReason, Meta: r.Meta})
}

func (r *CreateMessageResult) UnmarshalJSON(data []byte) error {
	var wire createMessageResultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	cb, err := DecodeContentBlock(wire.Content)
	if err != nil {
		return err
	}
	r.Role = wire.Role
	r.Content = cb
	r.Model = wire.Model
	r.StopReason = wire.StopReason
	r.Meta = wire.Meta
	return nil
}
