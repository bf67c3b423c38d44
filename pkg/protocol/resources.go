package protocol

import "encoding/json"

// Resource describes a single addressable resource exposed by resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Size        *int64 `json:"size,omitempty"`
	Meta        *Meta  `json:"_meta,omitempty"`
}

// ResourceTemplate describes a parameterized family of resources, matched
// by RFC 6570 URI template against concrete resource URIs.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Meta        *Meta  `json:"_meta,omitempty"`
}

type ListResourcesParams struct {
	Cursor string `json:"cursor,omitempty"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *ListResourcesParams) GetMeta() *Meta { return p.Meta }

type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
	Meta       *Meta      `json:"_meta,omitempty"`
}

func (r *ListResourcesResult) GetMeta() *Meta { return r.Meta }

type ListResourceTemplatesParams struct {
	Cursor string `json:"cursor,omitempty"`
	Meta   *Meta  `json:"_meta,omitempty"`
}

func (p *ListResourceTemplatesParams) GetMeta() *Meta { return p.Meta }

type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string             `json:"nextCursor,omitempty"`
	Meta              *Meta              `json:"_meta,omitempty"`
}

func (r *ListResourceTemplatesResult) GetMeta() *Meta { return r.Meta }

type ReadResourceParams struct {
	URI  string `json:"uri"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (p *ReadResourceParams) GetMeta() *Meta { return p.Meta }

// ReadResourceResult's Contents carries the structurally-discriminated
// ResourceContents union (text/blob/absent); decode and re-encode through
// DecodeResourceContents/EncodeResourceContents.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"-"`
	Meta     *Meta              `json:"_meta,omitempty"`
}

func (r *ReadResourceResult) GetMeta() *Meta { return r.Meta }

type readResourceResultWire struct {
	Contents []json.RawMessage `json:"contents"`
	Meta     *Meta             `json:"_meta,omitempty"`
}

func (r *ReadResourceResult) MarshalJSON() ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(r.Contents))
	for _, c := range r.Contents {
		raw, err := EncodeResourceContents(c)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, raw)
	}
	return json.Marshal(readResourceResultWire{Contents: encoded, Meta: r.Meta})
}

func (r *ReadResourceResult) UnmarshalJSON(data []byte) error {
	var wire readResourceResultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	contents := make([]ResourceContents, 0, len(wire.Contents))
	for _, raw := range wire.Contents {
		rc, err := DecodeResourceContents(raw)
		if err != nil {
			return err
		}
		contents = append(contents, rc)
	}
	r.Contents = contents
	r.Meta = wire.Meta
	return nil
}

type SubscribeParams struct {
	URI  string `json:"uri"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (p *SubscribeParams) GetMeta() *Meta { return p.Meta }

type UnsubscribeParams struct {
	URI  string `json:"uri"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (p *UnsubscribeParams) GetMeta() *Meta { return p.Meta }

// ResourceUpdatedParams is the payload of notifications/resources/updated,
// sent to subscribers when a subscribed resource's contents change.
type ResourceUpdatedParams struct {
	URI  string `json:"uri"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (p *ResourceUpdatedParams) GetMeta() *Meta { return p.Meta }
