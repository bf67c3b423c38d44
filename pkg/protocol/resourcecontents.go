package protocol

import "encoding/json"

// ResourceContentsKind discriminates the ResourceContents tagged union.
type ResourceContentsKind string

const (
	ResourceContentsText   ResourceContentsKind = "text"
	ResourceContentsBlob   ResourceContentsKind = "blob"
	ResourceContentsAbsent ResourceContentsKind = ""
)

// ResourceContents is a tagged union over { text, blob } discriminated
// structurally (spec §3): if "blob" is present it is a blob variant;
// otherwise if "text" is present it is a text variant; if neither is
// present, decode yields the absent value rather than an error, since a
// resource may legitimately have no materialized contents yet.
type ResourceContents interface {
	Kind() ResourceContentsKind
	resourceURI() string
}

type TextResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
	Meta     *Meta  `json:"_meta,omitempty"`
}

func (r *TextResourceContents) Kind() ResourceContentsKind { return ResourceContentsText }
func (r *TextResourceContents) resourceURI() string        { return r.URI }

type BlobResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	// Blob is base64-encoded binary data.
	Blob string `json:"blob"`
	Meta *Meta  `json:"_meta,omitempty"`
}

func (r *BlobResourceContents) Kind() ResourceContentsKind { return ResourceContentsBlob }
func (r *BlobResourceContents) resourceURI() string        { return r.URI }

// AbsentResourceContents is returned when neither "text" nor "blob" is
// present on the wire.
type AbsentResourceContents struct {
	URI string `json:"uri"`
}

func (r *AbsentResourceContents) Kind() ResourceContentsKind { return ResourceContentsAbsent }
func (r *AbsentResourceContents) resourceURI() string        { return r.URI }

type resourceContentsEnvelope struct {
	URI  string          `json:"uri"`
	Blob json.RawMessage `json:"blob"`
	Text json.RawMessage `json:"text"`
}

// DecodeResourceContents applies the structural discrimination rule: blob
// wins if present, then text, then the absent variant.
func DecodeResourceContents(data []byte) (ResourceContents, error) {
	var env resourceContentsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch {
	case env.Blob != nil:
		var v BlobResourceContents
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case env.Text != nil:
		var v TextResourceContents
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return &AbsentResourceContents{URI: env.URI}, nil
	}
}

// EncodeResourceContents serializes a ResourceContents value verbatim; no
// discriminator injection is needed since the variant is structural, not
// tag-based.
func EncodeResourceContents(rc ResourceContents) (json.RawMessage, error) {
	if _, ok := rc.(*AbsentResourceContents); ok {
		return json.Marshal(struct {
			URI string `json:"uri"`
		}{URI: rc.resourceURI()})
	}
	return json.Marshal(rc)
}
