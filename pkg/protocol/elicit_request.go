package protocol

import "encoding/json"

// ElicitParams is a server->client request asking either for a small
// form (RequestedSchema set, a flat map of named PrimitiveSchemaDefinition
// fields) or for consent to navigate to a URL (URL set, RequestedSchema
// absent) -- spec §4.1 / elicitation.go and the glossary's definition of
// elicitation as covering both front-ends.
type ElicitParams struct {
	Message         string                               `json:"message"`
	RequestedSchema map[string]PrimitiveSchemaDefinition `json:"-"`
	URL             string                               `json:"-"`
	Meta            *Meta                                `json:"_meta,omitempty"`
}

func (p *ElicitParams) GetMeta() *Meta { return p.Meta }

// IsURLMode reports whether this request is the URL-consent front-end
// rather than a structured form.
func (p *ElicitParams) IsURLMode() bool { return p.RequestedSchema == nil && p.URL != "" }

type elicitParamsWire struct {
	Message         string                     `json:"message"`
	RequestedSchema map[string]json.RawMessage `json:"requestedSchema,omitempty"`
	URL             string                     `json:"url,omitempty"`
	Meta            *Meta                      `json:"_meta,omitempty"`
}

func (p *ElicitParams) MarshalJSON() ([]byte, error) {
	var fields map[string]json.RawMessage
	if p.RequestedSchema != nil {
		fields = make(map[string]json.RawMessage, len(p.RequestedSchema))
		for name, s := range p.RequestedSchema {
			raw, err := EncodeSchema(s)
			if err != nil {
				return nil, err
			}
			fields[name] = raw
		}
	}
	return json.Marshal(elicitParamsWire{Message: p.Message, RequestedSchema: fields, URL: p.URL, Meta: p.Meta})
}

func (p *ElicitParams) UnmarshalJSON(data []byte) error {
	var wire elicitParamsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var fields map[string]PrimitiveSchemaDefinition
	if wire.RequestedSchema != nil {
		fields = make(map[string]PrimitiveSchemaDefinition, len(wire.RequestedSchema))
		for name, raw := range wire.RequestedSchema {
			s, err := DecodeSchema(raw)
			if err != nil {
				return err
			}
			fields[name] = s
		}
	}
	p.Message = wire.Message
	p.RequestedSchema = fields
	p.URL = wire.URL
	p.Meta = wire.Meta
	return nil
}

// ElicitResult carries the user's decision plus their submitted values
// when accepted. Action is one of "accept", "decline", "cancel".
type ElicitResult struct {
	Action  string                     `json:"action"`
	Content map[string]json.RawMessage `json:"content,omitempty"`
	Meta    *Meta                      `json:"_meta,omitempty"`
}

func (r *ElicitResult) GetMeta() *Meta { return r.Meta }

const (
	ElicitAccept  = "accept"
	ElicitDecline = "decline"
	ElicitCancel  = "cancel"
)
