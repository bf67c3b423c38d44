package protocol

import "encoding/json"

// Prompt describes a reusable prompt template exposed by prompts/list.
type Prompt struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
	Meta        *Meta            `json:"_meta,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type ListPromptsParams struct {
	Cursor string `json:"cursor,omitempty"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *ListPromptsParams) GetMeta() *Meta { return p.Meta }

type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
	Meta       *Meta    `json:"_meta,omitempty"`
}

func (r *ListPromptsResult) GetMeta() *Meta { return r.Meta }

type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Meta      *Meta             `json:"_meta,omitempty"`
}

func (p *GetPromptParams) GetMeta() *Meta { return p.Meta }

// PromptMessage pairs a role with a single ContentBlock, mirroring how a
// sampled conversation turn is represented in sampling/createMessage.
type PromptMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"-"`
}

type promptMessageWire struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (m *PromptMessage) MarshalJSON() ([]byte, error) {
	raw, err := EncodeContentBlock(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(promptMessageWire{Role: m.Role, Content: raw})
}

func (m *PromptMessage) UnmarshalJSON(data []byte) error {
	var wire promptMessageWire
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

type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
	Meta        *Meta           `json:"_meta,omitempty"`
}

func (r *GetPromptResult) GetMeta() *Meta { return r.Meta }
