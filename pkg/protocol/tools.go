package protocol

import "encoding/json"

// Tool describes a single callable tool as returned by tools/list.
type Tool struct {
	Name         string          `json:"name"`
	Title        string          `json:"title,omitempty"`
	Description  string          `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"inputSchema"`
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
	Annotations  *ToolAnnotations `json:"annotations,omitempty"`
	Meta         *Meta           `json:"_meta,omitempty"`
}

// ToolAnnotations are advisory hints about a tool's behavior; hosts may use
// them to decide whether to prompt the user before invoking it.
type ToolAnnotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitempty"`
	DestructiveHint bool   `json:"destructiveHint,omitempty"`
	IdempotentHint  bool   `json:"idempotentHint,omitempty"`
	OpenWorldHint   bool   `json:"openWorldHint,omitempty"`
}

// ListToolsParams supports pagination via an opaque cursor.
type ListToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *ListToolsParams) GetMeta() *Meta { return p.Meta }

type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
	Meta       *Meta  `json:"_meta,omitempty"`
}

func (r *ListToolsResult) GetMeta() *Meta { return r.Meta }

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Meta      *Meta           `json:"_meta,omitempty"`
}

func (p *CallToolParams) GetMeta() *Meta { return p.Meta }

// CallToolResult's Content carries the tagged ContentBlock union; decoding
// and re-encoding it goes through DecodeContentBlock/EncodeContentBlock
// rather than relying on encoding/json directly, since ContentBlock is an
// interface.
type CallToolResult struct {
	Content           []ContentBlock  `json:"-"`
	StructuredContent json.RawMessage `json:"structuredContent,omitempty"`
	IsError           bool            `json:"isError,omitempty"`
	Meta              *Meta           `json:"_meta,omitempty"`
}

func (r *CallToolResult) GetMeta() *Meta { return r.Meta }

type callToolResultWire struct {
	Content           []json.RawMessage `json:"content"`
	StructuredContent json.RawMessage   `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
	Meta              *Meta             `json:"_meta,omitempty"`
}

func (r *CallToolResult) MarshalJSON() ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(r.Content))
	for _, c := range r.Content {
		raw, err := EncodeContentBlock(c)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, raw)
	}
	return json.Marshal(callToolResultWire{
		Content: encoded, StructuredContent: r.StructuredContent, IsError: r.IsError, Meta: r.Meta,
	})
}

func (r *CallToolResult) UnmarshalJSON(data []byte) error {
	var wire callToolResultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	blocks := make([]ContentBlock, 0, len(wire.Content))
	for _, raw := range wire.Content {
		cb, err := DecodeContentBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, cb)
	}
	r.Content = blocks
	r.StructuredContent = wire.StructuredContent
	r.IsError = wire.IsError
	r.Meta = wire.Meta
	return nil
}

// ToolListChangedParams carries no params beyond _meta.
type ToolListChangedParams struct {
	Meta *Meta `json:"_meta,omitempty"`
}

func (p *ToolListChangedParams) GetMeta() *Meta { return p.Meta }
