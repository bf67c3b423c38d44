package protocol

import (
	"encoding/json"
	"fmt"
)

// ContentBlockKind discriminates the ContentBlock tagged union (spec §3).
type ContentBlockKind string

const (
	ContentText             ContentBlockKind = "text"
	ContentImage            ContentBlockKind = "image"
	ContentAudio            ContentBlockKind = "audio"
	ContentResourceLink     ContentBlockKind = "resource_link"
	ContentEmbeddedResource ContentBlockKind = "embedded_resource"
	ContentToolUse          ContentBlockKind = "tool_use"
	ContentToolResult       ContentBlockKind = "tool_result"
)

// ContentBlock is a tagged union over {text, image, audio, resource_link,
// embedded_resource, tool_use, tool_result}. Unknown nested properties are
// dropped silently on decode to preserve forward compatibility; an unknown
// top-level type is preserved as an OpaqueContent rather than rejected,
// since content blocks are user-visible and forward compatibility matters
// more than strictness here (contrast with Reference, §4.1).
type ContentBlock interface {
	Kind() ContentBlockKind
}

type TextContent struct {
	Text string `json:"text"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (*TextContent) Kind() ContentBlockKind { return ContentText }

type ImageContent struct {
	// Data is base64-encoded image bytes.
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Meta     *Meta  `json:"_meta,omitempty"`
}

func (*ImageContent) Kind() ContentBlockKind { return ContentImage }

type AudioContent struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Meta     *Meta  `json:"_meta,omitempty"`
}

func (*AudioContent) Kind() ContentBlockKind { return ContentAudio }

// ResourceLinkContent points at a resource by URI without inlining its
// contents.
type ResourceLinkContent struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Meta        *Meta  `json:"_meta,omitempty"`
}

func (*ResourceLinkContent) Kind() ContentBlockKind { return ContentResourceLink }

// EmbeddedResourceContent inlines a resource's contents directly into a
// message, as opposed to ResourceLinkContent's by-reference form.
type EmbeddedResourceContent struct {
	Resource ResourceContents `json:"resource"`
	Meta     *Meta            `json:"_meta,omitempty"`
}

func (*EmbeddedResourceContent) Kind() ContentBlockKind { return ContentEmbeddedResource }

// ToolUseContent records a model-issued tool invocation embedded in a
// sampled message.
type ToolUseContent struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
	Meta  *Meta           `json:"_meta,omitempty"`
}

func (*ToolUseContent) Kind() ContentBlockKind { return ContentToolUse }

// ToolResultContent records the outcome of a tool_use block.
type ToolResultContent struct {
	ToolUseID string         `json:"toolUseId"`
	Content   []ContentBlock `json:"content,omitempty"`
	IsError   bool           `json:"isError,omitempty"`
	Meta      *Meta          `json:"_meta,omitempty"`
}

func (*ToolResultContent) Kind() ContentBlockKind { return ContentToolResult }

// OpaqueContent preserves a content block whose type this codec does not
// recognize, so that older/newer peers round-trip values they don't
// understand instead of losing them.
type OpaqueContent struct {
	Type json.RawMessage
	Raw  json.RawMessage
}

func (*OpaqueContent) Kind() ContentBlockKind { return "" }

type contentEnvelope struct {
	Type string `json:"type"`
}

// DecodeContentBlock selects the ContentBlock variant by the "type"
// discriminator. A missing discriminator on a well-formed block fails with
// a targeted message; an unrecognized but present discriminator is kept as
// an OpaqueContent rather than rejected.
func DecodeContentBlock(data []byte) (ContentBlock, error) {
	var env contentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding content block: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("content block is missing required 'type' field")
	}

	switch ContentBlockKind(env.Type) {
	case ContentText:
		var v TextContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case ContentImage:
		var v ImageContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case ContentAudio:
		var v AudioContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case ContentResourceLink:
		var v ResourceLinkContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if v.Name == "" {
			return nil, fmt.Errorf("Name must be provided for 'resource_link' type")
		}
		return &v, nil
	case ContentEmbeddedResource:
		var raw struct {
			Resource json.RawMessage `json:"resource"`
			Meta     *Meta           `json:"_meta,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		rc, err := DecodeResourceContents(raw.Resource)
		if err != nil {
			return nil, fmt.Errorf("decoding embedded_resource: %w", err)
		}
		return &EmbeddedResourceContent{Resource: rc, Meta: raw.Meta}, nil
	case ContentToolUse:
		var v ToolUseContent
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case ContentToolResult:
		var raw struct {
			ToolUseID string            `json:"toolUseId"`
			Content   []json.RawMessage `json:"content,omitempty"`
			IsError   bool              `json:"isError,omitempty"`
			Meta      *Meta             `json:"_meta,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		blocks := make([]ContentBlock, 0, len(raw.Content))
		for _, b := range raw.Content {
			cb, err := DecodeContentBlock(b)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, cb)
		}
		return &ToolResultContent{ToolUseID: raw.ToolUseID, Content: blocks, IsError: raw.IsError, Meta: raw.Meta}, nil
	default:
		return &OpaqueContent{Type: json.RawMessage(fmt.Sprintf("%q", env.Type)), Raw: data}, nil
	}
}

// EncodeContentBlock serializes a ContentBlock back to its wire form,
// injecting the "type" discriminator the variant types themselves omit
// (they carry it implicitly via Kind()).
func EncodeContentBlock(cb ContentBlock) (json.RawMessage, error) {
	if op, ok := cb.(*OpaqueContent); ok {
		return op.Raw, nil
	}

	var body json.RawMessage
	var err error

	switch v := cb.(type) {
	case *EmbeddedResourceContent:
		rc, encErr := EncodeResourceContents(v.Resource)
		if encErr != nil {
			return nil, encErr
		}
		body, err = json.Marshal(struct {
			Resource json.RawMessage `json:"resource"`
			Meta     *Meta           `json:"_meta,omitempty"`
		}{Resource: rc, Meta: v.Meta})
	case *ToolResultContent:
		encoded := make([]json.RawMessage, 0, len(v.Content))
		for _, c := range v.Content {
			raw, encErr := EncodeContentBlock(c)
			if encErr != nil {
				return nil, encErr
			}
			encoded = append(encoded, raw)
		}
		body, err = json.Marshal(struct {
			ToolUseID string            `json:"toolUseId"`
			Content   []json.RawMessage `json:"content,omitempty"`
			IsError   bool              `json:"isError,omitempty"`
			Meta      *Meta             `json:"_meta,omitempty"`
		}{ToolUseID: v.ToolUseID, Content: encoded, IsError: v.IsError, Meta: v.Meta})
	default:
		body, err = json.Marshal(cb)
	}
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(string(cb.Kind()))
	m["type"] = typeJSON
	return json.Marshal(m)
}
