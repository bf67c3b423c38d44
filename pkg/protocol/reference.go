package protocol

import (
	"encoding/json"
	"fmt"
)

// ReferenceKind discriminates the Reference tagged union.
type ReferenceKind string

const (
	RefPrompt   ReferenceKind = "ref/prompt"
	RefResource ReferenceKind = "ref/resource"
)

// Reference is a tagged union over { ref/prompt (with name), ref/resource
// (with uri template) }, used by completion/complete to say what is being
// completed.
type Reference interface {
	Kind() ReferenceKind
}

type PromptReference struct {
	Name string `json:"name"`
}

func (*PromptReference) Kind() ReferenceKind { return RefPrompt }

type ResourceReference struct {
	URI string `json:"uri"`
}

func (*ResourceReference) Kind() ReferenceKind { return RefResource }

type referenceEnvelope struct {
	Type string `json:"type"`
}

// DecodeReference requires the discriminator to be present and recognized:
// unlike ContentBlock, references are an internal protocol detail rather
// than user-visible content, so an unrecognized type fails decoding instead
// of passing through opaquely (spec §4.1).
func DecodeReference(data []byte) (Reference, error) {
	var env referenceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding reference: %w", err)
	}
	switch ReferenceKind(env.Type) {
	case RefPrompt:
		var v PromptReference
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if v.Name == "" {
			return nil, fmt.Errorf("Name must be provided for 'ref/prompt' type")
		}
		return &v, nil
	case RefResource:
		var v ResourceReference
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		if v.URI == "" {
			return nil, fmt.Errorf("URI must be provided for 'ref/resource' type")
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("unknown reference type %q", env.Type)
	}
}

// EncodeReference serializes a Reference with its "type" discriminator.
func EncodeReference(r Reference) (json.RawMessage, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(string(r.Kind()))
	m["type"] = typeJSON
	return json.Marshal(m)
}
